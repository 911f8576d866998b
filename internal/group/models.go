package group

import "time"

type TourGroup struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is listed in join order; the first joiner is primary unless a
// promotion happened since.
type Member struct {
	TouristID      string     `json:"tourist_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	IsGroupPrimary bool       `json:"is_group_primary"`
	JoinedAt       *time.Time `json:"joined_at,omitempty"`
}

type CreateRequest struct {
	EventID   string   `json:"event_id" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Type      string   `json:"type" validate:"required,group_type"`
	MemberIDs []string `json:"member_ids" validate:"min=1,unique,dive,required"`
}

type AddMemberRequest struct {
	TouristID string `json:"tourist_id" validate:"required"`
}
