package types

import (
	"time"

	"github.com/google/uuid"
)

// PredefinedLocation is an operator-curated venue with exact coordinates.
// The assignment pipeline prefers these over live geocoding.
type PredefinedLocation struct {
	ID           uuid.UUID `json:"id"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	LocationName string    `json:"location_name"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// UpsertPredefinedLocationParams creates or updates a curated venue.
type UpsertPredefinedLocationParams struct {
	Country      string  `json:"country"`
	City         string  `json:"city"`
	LocationName string  `json:"location_name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}
