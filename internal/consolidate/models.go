// Package consolidate decides which tourists of an event share itinerary data,
// plans the fan-out of shared edits and computes merged-cell layouts for the
// roster table and the spreadsheet export. Everything here is a pure function
// over a roster snapshot; callers execute the planned writes.
package consolidate

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
)

type TouristClass string

const (
	ClassAdult  TouristClass = "adult"
	ClassChild  TouristClass = "child"
	ClassInfant TouristClass = "infant"
)

type GroupType string

const (
	GroupFamily    GroupType = "family"
	GroupMiniGroup GroupType = "mini_group"
)

// Lead is the part of a sales inquiry the engine looks at.
type Lead struct {
	ID     string     `json:"id"`
	Status LeadStatus `json:"status"`
}

type Profile struct {
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	MiddleName string       `json:"middle_name,omitempty"`
	Class      TouristClass `json:"class,omitempty"`
	IsPrimary  bool         `json:"is_primary"`
}

type Group struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type GroupType `json:"type"`
}

// Participant is one tourist registered on an event. LeadID and GroupID are
// the raw references; Lead is nil when the reference could not be loaded.
type Participant struct {
	ID             string      `json:"id"`
	DealID         string      `json:"deal_id"`
	LeadID         string      `json:"lead_id,omitempty"`
	Lead           *Lead       `json:"lead,omitempty"`
	Profile        *Profile    `json:"profile,omitempty"`
	GroupID        string      `json:"group_id,omitempty"`
	IsGroupPrimary bool        `json:"is_group_primary"`
	Visits         []CityVisit `json:"visits"`
}

// Visit returns the participant's visit for city.
func (p Participant) Visit(city string) (CityVisit, bool) {
	for _, v := range p.Visits {
		if v.City == city {
			return v, true
		}
	}
	return CityVisit{}, false
}

// CityVisit is one participant's stay in one city. Empty strings mean the
// field was never filled in.
type CityVisit struct {
	City string `json:"city"`

	ArrivalDate      string `json:"arrival_date,omitempty"`
	ArrivalTime      string `json:"arrival_time,omitempty"`
	ArrivalTransport string `json:"arrival_transport_type,omitempty"`
	ArrivalFlight    string `json:"arrival_flight_number,omitempty"`
	ArrivalTerminal  string `json:"arrival_terminal,omitempty"`
	ArrivalTransfer  string `json:"arrival_transfer,omitempty"`

	HotelName string `json:"hotel_name,omitempty"`
	RoomType  string `json:"room_type,omitempty"`

	DepartureDate      string `json:"departure_date,omitempty"`
	DepartureTime      string `json:"departure_time,omitempty"`
	DepartureTransport string `json:"departure_transport_type,omitempty"`
	DepartureFlight    string `json:"departure_flight_number,omitempty"`
	DepartureTerminal  string `json:"departure_terminal,omitempty"`
	DepartureTransfer  string `json:"departure_transfer,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Route is the ordered list of cities an event visits.
type Route []string

// Next returns the city that follows city on the route.
func (r Route) Next(city string) (string, bool) {
	for i, c := range r {
		if c == city {
			if i+1 < len(r) {
				return r[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

func (r Route) Contains(city string) bool {
	for _, c := range r {
		if c == city {
			return true
		}
	}
	return false
}
