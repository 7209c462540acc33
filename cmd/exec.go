package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"turf-booking/config"
	"turf-booking/handlers"
	"turf-booking/internal/services"
	"turf-booking/internal/services/gateway"
	"turf-booking/internal/services/gateway/hostpay"
	"turf-booking/internal/status"
	"turf-booking/internal/store"
	"turf-booking/models"
	"turf-booking/monitoring"
	"turf-booking/security"
	"turf-booking/utils"

	_ "turf-booking/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the payment gateway
	registry := gateway.NewRegistry(gateway.NewFactory())
	switch gateway.Provider(cfg.GatewayProvider) {
	case gateway.ProviderHostpay:
		err := registry.Register(ctx, gateway.ProviderHostpay, &hostpay.Config{
			ClientConfig: hostpay.ClientConfig{
				BaseURL:    cfg.GatewayBaseURL,
				MerchantID: cfg.GatewayMerchantID,
				ClientID:   cfg.GatewayClientID,
				ClientKey:  cfg.GatewayClientKey,
				HMACKey:    cfg.GatewayHMACKey,
			},
			WebhookSecret:  cfg.WebhookSecret,
			PNSubscribeKey: cfg.GatewayPNSubscribeKey,
			PNUserID:       cfg.GatewayPNUserID,
			PNChannel:      cfg.GatewayPNChannel,
		})
		if err != nil {
			return err
		}

	default:
		err := registry.Register(ctx, gateway.ProviderSandbox, &gateway.SandboxConfig{
			WebhookSecret: cfg.WebhookSecret,
		})
		if err != nil {
			return err
		}
	}
	defer registry.Close(ctx)

	gw, err := registry.GetPrimary()
	if err != nil {
		return err
	}

	// Initialize PubNub for app-side notifications
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.UUID = cfg.PubNubUserID

		notifier = services.NewPubNubNotifier(pubnub.NewPubNub(pnConfig))
	}

	// Initialize store and services
	st := store.NewPocketBaseStore(app)

	reservationService := services.NewReservationService(st, gw, notifier, services.ReservationConfig{
		Currency:      cfg.Currency,
		SuccessURL:    cfg.AppURL + "/booking/success",
		CancelURL:     cfg.AppURL + "/booking/cancelled",
		ExpiryMinutes: cfg.CheckoutExpiryMinutes,
	})
	webhookService := services.NewWebhookService(gw, reservationService, redisClient)
	verifyService := services.NewVerifyService(st)
	turfService := services.NewTurfService(st)
	reviewService := services.NewReviewService(st)

	// Realtime settlement pushes share the webhook's idempotent path
	txChannel := make(chan *status.Transaction, 16)
	gw.SetTransactionChannel(txChannel)
	go webhookService.ProcessTransactions(ctx, txChannel)

	// Hold sweeper frees slots behind abandoned checkouts
	sweeper := services.NewHoldSweeper(st, reservationService, cfg.HoldSweepInterval, cfg.HoldSweepAge)
	go sweeper.Run(ctx)

	if cfg.EnableMetrics {
		monitoring.NewMonitor(st)
	}

	rateLimiter := security.NewRateLimiter(redisClient)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(app, reservationService)
	webhookHandler := handlers.NewWebhookHandler(app, webhookService)
	verifyHandler := handlers.NewVerifyHandler(app, verifyService)
	slotHandler := handlers.NewSlotHandler(app, turfService)
	reviewHandler := handlers.NewReviewHandler(app, reviewService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	setupRecordHooks(app)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Public catalog
		e.Router.GET("/api/v1/turfs/{slug}", slotHandler.GetTurf)
		e.Router.GET("/api/v1/slots/{id}", slotHandler.GetSlot)

		// Checkout
		e.Router.POST("/api/v1/checkout", bookingHandler.StartCheckout).
			BindFunc(rateLimiter.AntiBotMiddleware()).
			BindFunc(rateLimiter.CheckoutRateLimit(cfg.CheckoutRateLimit))
		e.Router.GET("/api/v1/bookings/session/{sessionId}", bookingHandler.GetBookingBySession)
		e.Router.POST("/api/v1/bookings/{bookingId}/cancel", bookingHandler.CancelBooking)

		// Payment webhook
		e.Router.POST("/api/v1/webhooks/payment", webhookHandler.HandlePaymentWebhook)

		// Entry proof verification
		e.Router.GET("/api/v1/verify/{secret}", verifyHandler.VerifyProofToken)

		// Owner slot administration
		e.Router.PATCH("/api/v1/admin/slots", slotHandler.ToggleSlot)

		// Reviews
		e.Router.POST("/api/v1/bookings/{bookingId}/review", reviewHandler.SubmitReview)
		e.Router.GET("/api/v1/bookings/{bookingId}/review", reviewHandler.GetReview)

		// Metrics
		if cfg.EnableMetrics {
			e.Router.GET("/metrics", func(e *core.RequestEvent) error {
				promhttp.Handler().ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := st.Ping(e.Request.Context()); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				slog.Warn("health: redis degraded", "error", err)
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// setupRecordHooks keeps admin-created records consistent with the state
// machine's expectations.
func setupRecordHooks(app *pocketbase.PocketBase) {
	// A freshly created slot always enters the market as available.
	app.OnRecordCreateRequest("slots").BindFunc(func(e *core.RecordRequestEvent) error {
		if e.Record.GetString("status") == "" {
			e.Record.Set("status", string(models.SlotAvailable))
		}
		return e.Next()
	})
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")
	cancel()
}
