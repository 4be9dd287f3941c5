package types

import (
	"time"

	"github.com/google/uuid"
)

// Workshop matches the workshops table structure. Lat/Lon are nil when no
// coordinates could be resolved; that is a valid persisted state.
type Workshop struct {
	ID               uuid.UUID `json:"id"`
	AdminID          uuid.UUID `json:"admin_id"`
	Title            *string   `json:"title,omitempty"`
	City             string    `json:"city"`
	Location         string    `json:"location"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	EndTime          *string   `json:"end_time,omitempty"`
	Style            string    `json:"style"`
	Difficulty       string    `json:"difficulty"`
	InstructorName   *string   `json:"instructor_name,omitempty"`
	Description      *string   `json:"description,omitempty"`
	MaxParticipants  int       `json:"max_participants"`
	Lat              *float64  `json:"lat,omitempty"`
	Lon              *float64  `json:"lon,omitempty"`
	FacebookURL      *string   `json:"facebook_url,omitempty"`
	Recurrence       string    `json:"recurrence"`
	CreatedAt        time.Time `json:"created_at"`
	ParticipantCount int       `json:"participant_count"`
}

// WorkshopFilter narrows workshop listings.
type WorkshopFilter struct {
	Style      string
	City       string
	Difficulty string
	DateFrom   string
	DateTo     string
}

// CreateWorkshopParams carries the admin-supplied fields for a new workshop.
// Lat/Lon are optional explicit coordinates that take precedence over every
// resolution strategy.
type CreateWorkshopParams struct {
	Title           *string  `json:"title,omitempty"`
	City            string   `json:"city"`
	Location        string   `json:"location"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	EndTime         *string  `json:"end_time,omitempty"`
	Style           string   `json:"style"`
	Difficulty      string   `json:"difficulty,omitempty"`
	InstructorName  *string  `json:"instructor_name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	MaxParticipants int      `json:"max_participants,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lon             *float64 `json:"lon,omitempty"`
	FacebookURL     *string  `json:"facebook_url,omitempty"`
	Recurrence      string   `json:"recurrence,omitempty"`
}

// UpdateWorkshopParams carries partial updates; nil fields stay untouched.
type UpdateWorkshopParams struct {
	Title          *string  `json:"title,omitempty"`
	City           *string  `json:"city,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Date           *string  `json:"date,omitempty"`
	StartTime      *string  `json:"start_time,omitempty"`
	EndTime        *string  `json:"end_time,omitempty"`
	Style          *string  `json:"style,omitempty"`
	Difficulty     *string  `json:"difficulty,omitempty"`
	InstructorName *string  `json:"instructor_name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
}

// NearbyWorkshop is a workshop annotated with the distance from the caller.
type NearbyWorkshop struct {
	Workshop
	DistanceKm float64 `json:"distance_km"`
}

// Participant is one registered user of a workshop.
type Participant struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
	Attended     bool      `json:"attended"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	TotalWorkshops     int            `json:"total_workshops"`
	TotalRegistrations int            `json:"total_registrations"`
	TotalUsers         int            `json:"total_users"`
	WorkshopsByStyle   map[string]int `json:"workshops_by_style"`
}
