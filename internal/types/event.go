package types

import (
	"time"

	"github.com/google/uuid"
)

// Event matches the events table structure.
type Event struct {
	ID             uuid.UUID `json:"id"`
	AdminID        uuid.UUID `json:"admin_id"`
	Title          string    `json:"title"`
	PhotoPath      *string   `json:"photo_path,omitempty"`
	EventOrganizer string    `json:"event_organizer"`
	Location       string    `json:"location"`
	Country        *string   `json:"country,omitempty"`
	City           string    `json:"city"`
	StartDate      string    `json:"start_date"`
	StartTime      string    `json:"start_time"`
	EndDate        string    `json:"end_date"`
	EndTime        string    `json:"end_time"`
	Description    *string   `json:"description,omitempty"`
	FacebookURL    *string   `json:"facebook_url,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Lon            *float64  `json:"lon,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateEventParams carries the fields for a new event. PhotoPath is filled
// by the handler after a successful upload.
type CreateEventParams struct {
	Title          string   `json:"title"`
	EventOrganizer string   `json:"event_organizer"`
	Location       string   `json:"location"`
	City           string   `json:"city"`
	Country        *string  `json:"country,omitempty"`
	StartDate      string   `json:"start_date"`
	StartTime      string   `json:"start_time"`
	EndDate        string   `json:"end_date"`
	EndTime        string   `json:"end_time"`
	Description    *string  `json:"description,omitempty"`
	FacebookURL    *string  `json:"facebook_url,omitempty"`
	PhotoPath      *string  `json:"-"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
}

// UpdateEventParams carries partial updates; nil fields stay untouched.
type UpdateEventParams struct {
	Title          *string  `json:"title,omitempty"`
	EventOrganizer *string  `json:"event_organizer,omitempty"`
	Location       *string  `json:"location,omitempty"`
	City           *string  `json:"city,omitempty"`
	Country        *string  `json:"country,omitempty"`
	StartDate      *string  `json:"start_date,omitempty"`
	StartTime      *string  `json:"start_time,omitempty"`
	EndDate        *string  `json:"end_date,omitempty"`
	EndTime        *string  `json:"end_time,omitempty"`
	Description    *string  `json:"description,omitempty"`
	FacebookURL    *string  `json:"facebook_url,omitempty"`
	PhotoPath      *string  `json:"-"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
}
