package monitoring

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"turf-booking/models"
)

var (
	slotsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slots_by_status_total",
			Help: "Current number of slots per status",
		},
		[]string{"status"},
	)

	bookingsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookings_by_status_total",
			Help: "Current number of bookings per status",
		},
		[]string{"status"},
	)

	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Total booking state transitions",
		},
		[]string{"operation", "result"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total payment webhook deliveries",
		},
		[]string{"kind", "result"},
	)

	sweeperReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_released_holds_total",
			Help: "Total stale holds released by the sweeper",
		},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of active goroutines",
		},
	)

	checkoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_session_duration_seconds",
			Help:    "Duration of gateway checkout session creation",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)

// StatusCounter supplies current status counts from the store.
type StatusCounter interface {
	CountSlotsByStatus(ctx context.Context) (map[models.SlotStatus]int64, error)
	CountBookingsByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}

type Monitor struct {
	counts StatusCounter
}

func NewMonitor(counts StatusCounter) *Monitor {
	monitor := &Monitor{counts: counts}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()

		m.collectStatusMetrics(ctx)

		goroutineCount.Set(float64(runtime.NumGoroutine()))
	}
}

func (m *Monitor) collectStatusMetrics(ctx context.Context) {
	if slots, err := m.counts.CountSlotsByStatus(ctx); err == nil {
		for status, n := range slots {
			slotsByStatus.WithLabelValues(string(status)).Set(float64(n))
		}
	}
	if bookings, err := m.counts.CountBookingsByStatus(ctx); err == nil {
		for status, n := range bookings {
			bookingsByStatus.WithLabelValues(string(status)).Set(float64(n))
		}
	}
}

// TrackBookingOperation records a booking transition attempt.
func TrackBookingOperation(operation, result string) {
	bookingOperations.WithLabelValues(operation, result).Inc()
}

// TrackWebhookEvent records a processed webhook delivery.
func TrackWebhookEvent(kind, result string) {
	webhookEvents.WithLabelValues(kind, result).Inc()
}

// TrackSweptHolds records holds released by the sweeper.
func TrackSweptHolds(n int) {
	sweeperReleased.Add(float64(n))
}

// TrackCheckoutDuration records how long a gateway session creation took.
func TrackCheckoutDuration(d time.Duration) {
	checkoutDuration.Observe(d.Seconds())
}
