package models

import (
	"time"
)

// Turf is a sports facility whose owner publishes bookable slots.
type Turf struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	BasePrice   int64     `json:"base_price"` // paise
	Amenities   []string  `json:"amenities"`
	Created     time.Time `json:"created"`
}
