package consolidate

import "fmt"

type OpKind string

const (
	// OpCreate means no visit existed in the snapshot for (participant, city).
	OpCreate OpKind = "create"
	OpPatch  OpKind = "patch"
)

type OpSource string

const (
	SourceEdit     OpSource = "edit"
	SourceAutoFill OpSource = "autofill"
)

// UpsertOp writes one field of one (participant, city) visit. Ops are
// idempotent and independent of each other; the sink creates the visit when
// it is missing and patches it otherwise.
type UpsertOp struct {
	ParticipantID string   `json:"participant_id"`
	City          string   `json:"city"`
	Field         Field    `json:"field"`
	Value         string   `json:"value"`
	Kind          OpKind   `json:"kind"`
	Source        OpSource `json:"source"`
	// FillEmptyOnly asks the sink to keep a value that is already present.
	FillEmptyOnly bool `json:"fill_empty_only,omitempty"`
}

// OpResult is the outcome of executing one op. A nil Err means the write
// was acknowledged.
type OpResult struct {
	Op  UpsertOp `json:"op"`
	Err error    `json:"-"`
}

func (r OpResult) OK() bool { return r.Err == nil }

// Edit is a single user change to one itinerary field.
type Edit struct {
	ParticipantID string `json:"participant_id"`
	City          string `json:"city"`
	Field         Field  `json:"field"`
	Value         string `json:"value"`
}

type visitKey struct {
	participantID string
	city          string
}

// Session is the planning state of one request. It remembers what earlier
// edits of the same request have planned so a visit is created at most once
// and auto-fill sees values written moments before.
type Session struct {
	res     *Resolution
	route   Route
	planned map[visitKey]CityVisit
}

func NewSession(res *Resolution, route Route) *Session {
	return &Session{
		res:     res,
		route:   route,
		planned: map[visitKey]CityVisit{},
	}
}

// PlanEdit plans an edit against a fresh session.
func PlanEdit(res *Resolution, route Route, e Edit) ([]UpsertOp, error) {
	return NewSession(res, route).PlanEdit(e)
}

// PlanEdit fans an edit out to every member of the editor's unit that shares
// the field's group, or to the editor alone.
func (s *Session) PlanEdit(e Edit) ([]UpsertOp, error) {
	if _, ok := s.res.Participant(e.ParticipantID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, e.ParticipantID)
	}
	if !s.route.Contains(e.City) {
		return nil, fmt.Errorf("%w: %s", ErrCityNotOnRoute, e.City)
	}
	if _, err := ParseField(string(e.Field)); err != nil {
		return nil, err
	}

	unit, _ := s.res.Unit(e.ParticipantID)
	targets := unit.Targets(e.ParticipantID, e.Field.Group())

	ops := make([]UpsertOp, 0, len(targets))
	for _, id := range targets {
		_, exists := s.visit(id, e.City)
		op := UpsertOp{
			ParticipantID: id,
			City:          e.City,
			Field:         e.Field,
			Value:         e.Value,
			Kind:          kindFor(exists),
			Source:        SourceEdit,
		}
		s.record(op)
		ops = append(ops, op)
	}
	return ops, nil
}

// PropagateToNextCity carries a departure value into the matching arrival
// field of the next city on the route. Targets follow the unit's arrival
// sharing, so a mini-group member only fills their own next leg. Values that
// are already present are never replaced.
func (s *Session) PropagateToNextCity(unit SharingUnit, editor, city string, departure Field, value string) []UpsertOp {
	if value == "" {
		return nil
	}
	arrival, ok := departure.ArrivalCounterpart()
	if !ok {
		return nil
	}
	next, ok := s.route.Next(city)
	if !ok {
		return nil
	}

	var ops []UpsertOp
	for _, id := range unit.Targets(editor, ArrivalGroup) {
		visit, exists := s.visit(id, next)
		if visit.Get(arrival) != "" {
			continue
		}
		op := UpsertOp{
			ParticipantID: id,
			City:          next,
			Field:         arrival,
			Value:         value,
			Kind:          kindFor(exists),
			Source:        SourceAutoFill,
			FillEmptyOnly: true,
		}
		s.record(op)
		ops = append(ops, op)
	}
	return ops
}

// AutoFill plans the next-city follow-up of an edit that was applied. Edits
// of non-departure fields produce nothing.
func (s *Session) AutoFill(e Edit) []UpsertOp {
	if e.Field.Group() != DepartureGroup {
		return nil
	}
	unit, ok := s.res.Unit(e.ParticipantID)
	if !ok {
		return nil
	}
	return s.PropagateToNextCity(unit, e.ParticipantID, e.City, e.Field, e.Value)
}

type fieldKey struct {
	visit visitKey
	field Field
}

// Settle folds executed results back into the session. A field whose last
// write failed falls back to the last acknowledged value of the batch, or to
// the snapshot value when nothing was acknowledged. Results of one key must
// be in execution order.
func (s *Session) Settle(results []OpResult) {
	acked := map[fieldKey]string{}
	failedLast := map[fieldKey]bool{}
	var keys []fieldKey
	for _, r := range results {
		k := fieldKey{visitKey{r.Op.ParticipantID, r.Op.City}, r.Op.Field}
		if _, seen := failedLast[k]; !seen {
			keys = append(keys, k)
		}
		failedLast[k] = !r.OK()
		if r.OK() {
			acked[k] = r.Op.Value
		}
	}

	for _, k := range keys {
		if !failedLast[k] {
			continue
		}
		v, ok := s.planned[k.visit]
		if !ok {
			continue
		}
		value, ok := acked[k]
		if !ok {
			value = s.stored(k.visit, k.field)
		}
		v.Set(k.field, value)
		s.planned[k.visit] = v
	}
}

// stored reads a field from the snapshot, ignoring anything planned.
func (s *Session) stored(key visitKey, f Field) string {
	p, ok := s.res.Participant(key.participantID)
	if !ok {
		return ""
	}
	v, _ := p.Visit(key.city)
	return v.Get(f)
}

func (s *Session) visit(participantID, city string) (CityVisit, bool) {
	if v, ok := s.planned[visitKey{participantID, city}]; ok {
		return v, true
	}
	p, ok := s.res.Participant(participantID)
	if !ok {
		return CityVisit{City: city}, false
	}
	return p.Visit(city)
}

func (s *Session) record(op UpsertOp) {
	v, _ := s.visit(op.ParticipantID, op.City)
	v.City = op.City
	v.Set(op.Field, op.Value)
	s.planned[visitKey{op.ParticipantID, op.City}] = v
}

func kindFor(exists bool) OpKind {
	if exists {
		return OpPatch
	}
	return OpCreate
}
