package consolidate

import "fmt"

// Field names a single CityVisit column. The string values double as the
// wire names used by the API.
type Field string

const (
	ArrivalDate      Field = "arrival_date"
	ArrivalTime      Field = "arrival_time"
	ArrivalTransport Field = "arrival_transport_type"
	ArrivalFlight    Field = "arrival_flight_number"
	ArrivalTerminal  Field = "arrival_terminal"
	ArrivalTransfer  Field = "arrival_transfer"

	HotelName Field = "hotel_name"
	RoomType  Field = "room_type"

	DepartureDate      Field = "departure_date"
	DepartureTime      Field = "departure_time"
	DepartureTransport Field = "departure_transport_type"
	DepartureFlight    Field = "departure_flight_number"
	DepartureTerminal  Field = "departure_terminal"
	DepartureTransfer  Field = "departure_transfer"

	Notes Field = "notes"
)

// FieldGroup is the unit of sharing: a unit either shares every field of a
// group or none of them.
type FieldGroup int

const (
	Unclassified FieldGroup = iota
	ArrivalGroup
	HotelGroup
	DepartureGroup
)

// SharedGroups lists the field groups that can be shared, in column order.
var SharedGroups = []FieldGroup{ArrivalGroup, HotelGroup, DepartureGroup}

func (g FieldGroup) String() string {
	switch g {
	case ArrivalGroup:
		return "arrival"
	case HotelGroup:
		return "hotel"
	case DepartureGroup:
		return "departure"
	default:
		return "unclassified"
	}
}

func (g FieldGroup) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *FieldGroup) UnmarshalText(text []byte) error {
	for _, candidate := range []FieldGroup{Unclassified, ArrivalGroup, HotelGroup, DepartureGroup} {
		if candidate.String() == string(text) {
			*g = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown field group %q", text)
}

var fieldGroups = map[Field]FieldGroup{
	ArrivalDate:      ArrivalGroup,
	ArrivalTime:      ArrivalGroup,
	ArrivalTransport: ArrivalGroup,
	ArrivalFlight:    ArrivalGroup,
	ArrivalTerminal:  ArrivalGroup,
	ArrivalTransfer:  ArrivalGroup,

	HotelName: HotelGroup,
	RoomType:  HotelGroup,

	DepartureDate:      DepartureGroup,
	DepartureTime:      DepartureGroup,
	DepartureTransport: DepartureGroup,
	DepartureFlight:    DepartureGroup,
	DepartureTerminal:  DepartureGroup,
	DepartureTransfer:  DepartureGroup,

	Notes: Unclassified,
}

// GroupFields lists the fields of every shareable group in display order.
var GroupFields = map[FieldGroup][]Field{
	ArrivalGroup:   {ArrivalDate, ArrivalTime, ArrivalTransport, ArrivalFlight, ArrivalTerminal, ArrivalTransfer},
	HotelGroup:     {HotelName, RoomType},
	DepartureGroup: {DepartureDate, DepartureTime, DepartureTransport, DepartureFlight, DepartureTerminal, DepartureTransfer},
}

// AllFields lists every visit field in column order.
var AllFields = []Field{
	ArrivalDate, ArrivalTime, ArrivalTransport, ArrivalFlight, ArrivalTerminal, ArrivalTransfer,
	HotelName, RoomType,
	DepartureDate, DepartureTime, DepartureTransport, DepartureFlight, DepartureTerminal, DepartureTransfer,
	Notes,
}

var departureToArrival = map[Field]Field{
	DepartureDate:      ArrivalDate,
	DepartureTime:      ArrivalTime,
	DepartureTransport: ArrivalTransport,
	DepartureFlight:    ArrivalFlight,
	DepartureTerminal:  ArrivalTerminal,
	DepartureTransfer:  ArrivalTransfer,
}

// ParseField validates a wire field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldGroups[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Group classifies the field. Unknown fields are unclassified.
func (f Field) Group() FieldGroup {
	return fieldGroups[f]
}

// ArrivalCounterpart maps a departure field onto the arrival field of the
// next leg.
func (f Field) ArrivalCounterpart() (Field, bool) {
	a, ok := departureToArrival[f]
	return a, ok
}

// Get reads a field from the visit.
func (v CityVisit) Get(f Field) string {
	if p := v.field(f); p != nil {
		return *p
	}
	return ""
}

// Set writes a field on the visit.
func (v *CityVisit) Set(f Field, value string) {
	if p := v.field(f); p != nil {
		*p = value
	}
}

func (v *CityVisit) field(f Field) *string {
	switch f {
	case ArrivalDate:
		return &v.ArrivalDate
	case ArrivalTime:
		return &v.ArrivalTime
	case ArrivalTransport:
		return &v.ArrivalTransport
	case ArrivalFlight:
		return &v.ArrivalFlight
	case ArrivalTerminal:
		return &v.ArrivalTerminal
	case ArrivalTransfer:
		return &v.ArrivalTransfer
	case HotelName:
		return &v.HotelName
	case RoomType:
		return &v.RoomType
	case DepartureDate:
		return &v.DepartureDate
	case DepartureTime:
		return &v.DepartureTime
	case DepartureTransport:
		return &v.DepartureTransport
	case DepartureFlight:
		return &v.DepartureFlight
	case DepartureTerminal:
		return &v.DepartureTerminal
	case DepartureTransfer:
		return &v.DepartureTransfer
	case Notes:
		return &v.Notes
	}
	return nil
}
