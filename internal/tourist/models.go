package tourist

import "time"

// Tourist is one traveller on an event. Group membership is owned by the
// group package and is read-only here.
type Tourist struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id" validate:"required"`
	DealID         string    `json:"deal_id"`
	LeadID         *string   `json:"lead_id,omitempty"`
	FirstName      string    `json:"first_name" validate:"required"`
	LastName       string    `json:"last_name"`
	MiddleName     string    `json:"middle_name"`
	Class          string    `json:"class" validate:"tourist_class"`
	IsPrimary      bool      `json:"is_primary"`
	GroupID        *string   `json:"group_id,omitempty"`
	IsGroupPrimary bool      `json:"is_group_primary"`
	CreatedAt      time.Time `json:"created_at"`
}

type Patch struct {
	DealID     *string `json:"deal_id"`
	LeadID     *string `json:"lead_id"`
	FirstName  *string `json:"first_name" validate:"omitempty,min=1"`
	LastName   *string `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	Class      *string `json:"class" validate:"omitempty,tourist_class"`
}
