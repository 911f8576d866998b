package consolidate

type UnitKind string

const (
	UnitFamily    UnitKind = "family"
	UnitMiniGroup UnitKind = "mini_group"
	UnitNone      UnitKind = "none"
)

// Sharing says which field groups a unit keeps identical across members.
type Sharing struct {
	Arrival   bool `json:"arrival"`
	Hotel     bool `json:"hotel"`
	Departure bool `json:"departure"`
}

func (s Sharing) Shares(g FieldGroup) bool {
	switch g {
	case ArrivalGroup:
		return s.Arrival
	case HotelGroup:
		return s.Hotel
	case DepartureGroup:
		return s.Departure
	default:
		return false
	}
}

// sharingPolicy is the single source of what each unit kind shares. Families
// travel together; mini-groups only lodge together.
var sharingPolicy = map[UnitKind]Sharing{
	UnitFamily:    {Arrival: true, Hotel: true, Departure: true},
	UnitMiniGroup: {Hotel: true},
	UnitNone:      {},
}

// SharingFor returns the policy for a unit kind; unknown kinds share nothing.
func SharingFor(kind UnitKind) Sharing {
	return sharingPolicy[kind]
}

// SharingUnit is the resolved grouping of a participant. Members are in
// roster order, so Members[0] is the anchor.
type SharingUnit struct {
	Kind    UnitKind `json:"kind"`
	Key     string   `json:"key"`
	Members []string `json:"members"`
	Sharing Sharing  `json:"sharing"`
}

// Anchor is the member whose stored values are canonical for shared fields.
func (u SharingUnit) Anchor() string {
	if len(u.Members) == 0 {
		return ""
	}
	return u.Members[0]
}

func (u SharingUnit) Shares(g FieldGroup) bool {
	return u.Sharing.Shares(g)
}

func (u SharingUnit) Has(participantID string) bool {
	for _, m := range u.Members {
		if m == participantID {
			return true
		}
	}
	return false
}

// Targets returns who receives an edit to a field of group g made by editor.
func (u SharingUnit) Targets(editor string, g FieldGroup) []string {
	if u.Shares(g) && u.Has(editor) {
		return append([]string(nil), u.Members...)
	}
	return []string{editor}
}
