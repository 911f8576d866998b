package event

import "time"

// Event is a touring event. Cities is the ordered route the tourists follow.
type Event struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" validate:"required"`
	Cities      []string   `json:"cities" validate:"dive,required"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"created_by" validate:"required"`
	CreatedAt   time.Time  `json:"created_at"`
}
