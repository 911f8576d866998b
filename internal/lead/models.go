package lead

import "time"

// Lead is a sales inquiry. Cities records which stops of the event route the
// customer asked for.
type Lead struct {
	ID                string    `json:"id"`
	EventID           string    `json:"event_id" validate:"required"`
	Name              string    `json:"name" validate:"required"`
	Phone             string    `json:"phone"`
	Status            string    `json:"status" validate:"lead_status"`
	TourCost          float64   `json:"tour_cost" validate:"gte=0"`
	TourCostCurrency  string    `json:"tour_cost_currency" validate:"omitempty,len=3"`
	Advance           float64   `json:"advance" validate:"gte=0"`
	AdvanceCurrency   string    `json:"advance_currency" validate:"omitempty,len=3"`
	Remaining         float64   `json:"remaining"`
	RemainingCurrency string    `json:"remaining_currency" validate:"omitempty,len=3"`
	Cities            []string  `json:"cities,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Patch carries optional changes; nil fields are left alone.
type Patch struct {
	Name              *string   `json:"name"`
	Phone             *string   `json:"phone"`
	Status            *string   `json:"status" validate:"omitempty,lead_status"`
	TourCost          *float64  `json:"tour_cost" validate:"omitempty,gte=0"`
	TourCostCurrency  *string   `json:"tour_cost_currency" validate:"omitempty,len=3"`
	Advance           *float64  `json:"advance" validate:"omitempty,gte=0"`
	AdvanceCurrency   *string   `json:"advance_currency" validate:"omitempty,len=3"`
	Remaining         *float64  `json:"remaining"`
	RemainingCurrency *string   `json:"remaining_currency" validate:"omitempty,len=3"`
	Cities            *[]string `json:"cities"`
}
