package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"backend-tourdesk/internal/consolidate"
	"backend-tourdesk/internal/export"

	"golang.org/x/sync/errgroup"
)

// Store is the persistence the service needs. *Repository implements it.
type Store interface {
	Roster(ctx context.Context, eventID string) ([]consolidate.Participant, []consolidate.Group, error)
	UpsertCityVisit(ctx context.Context, op consolidate.UpsertOp) error
	CreateCityVisit(ctx context.Context, op consolidate.UpsertOp) error
}

type RouteSource interface {
	Route(ctx context.Context, eventID string) (consolidate.Route, error)
}

type Broadcaster interface {
	Broadcast(ctx context.Context, eventID string, payload []byte)
}

type Service struct {
	store       Store
	routes      RouteSource
	hub         Broadcaster
	concurrency int
	log         *slog.Logger
}

// NewService wires the itinerary service. hub may be nil when nobody listens
// for roster updates.
func NewService(store Store, routes RouteSource, hub Broadcaster, concurrency int, log *slog.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, routes: routes, hub: hub, concurrency: concurrency, log: log}
}

// snapshot resolves the current roster. Reference problems are logged and
// never fail the request.
func (s *Service) snapshot(ctx context.Context, eventID string) (*consolidate.Resolution, consolidate.Route, error) {
	route, err := s.routes.Route(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	participants, groups, err := s.store.Roster(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("load roster: %w", err)
	}
	res := consolidate.ResolveRoster(participants, groups)
	for _, a := range res.Anomalies {
		s.log.Warn("roster anomaly",
			"event_id", eventID,
			"kind", a.Kind,
			"participant_id", a.ParticipantID,
			"unit", a.UnitKey,
			"detail", a.Message,
		)
	}
	return res, route, nil
}

func (s *Service) Roster(ctx context.Context, eventID string) (Roster, error) {
	res, route, err := s.snapshot(ctx, eventID)
	if err != nil {
		return Roster{}, err
	}

	meta := consolidate.BuildTableMeta(res.Rows)
	out := Roster{
		EventID:   eventID,
		Cities:    route,
		Rows:      make([]Row, len(res.Rows)),
		Anomalies: res.Anomalies,
	}
	if out.Anomalies == nil {
		out.Anomalies = []consolidate.Anomaly{}
	}
	for i, row := range res.Rows {
		visits := make([]consolidate.CityVisit, len(route))
		for c, city := range route {
			visits[c] = res.Canonical(row.Participant.ID, city)
		}
		out.Rows[i] = Row{
			Participant: row.Participant,
			UnitKey:     row.Unit.Key,
			UnitKind:    row.Unit.Kind,
			Visits:      visits,
			Meta:        meta[i],
		}
	}
	return out, nil
}

// ApplyEdits plans every edit against one snapshot and executes the planned
// ops independently. An edit that cannot be planned yields a single failed
// result. Ops writing the same field of the same visit run in plan order, so
// the later edit of a batch wins. A departure edit whose write is the one
// storage ends up holding is followed by an auto-fill of the next city's
// arrival.
func (s *Service) ApplyEdits(ctx context.Context, eventID string, edits []consolidate.Edit) ([]consolidate.OpResult, error) {
	res, route, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	session := consolidate.NewSession(res, route)

	var (
		results []consolidate.OpResult
		pending []consolidate.UpsertOp
		// index into pending of each edit's own op, -1 when it was not planned
		own = make([]int, len(edits))
	)
	for i, e := range edits {
		own[i] = -1
		ops, err := session.PlanEdit(e)
		if err != nil {
			results = append(results, consolidate.OpResult{Op: editOp(e), Err: err})
			continue
		}
		for _, op := range ops {
			if op.ParticipantID == e.ParticipantID {
				own[i] = len(pending)
			}
			pending = append(pending, op)
		}
	}

	executed := s.execute(ctx, pending)
	session.Settle(executed)

	// last acknowledged write per cell, which is what storage now holds
	last := make(map[writeKey]int, len(pending))
	for i, r := range executed {
		if r.OK() {
			last[keyOf(r.Op)] = i
		}
	}

	var followUps []consolidate.UpsertOp
	for i, e := range edits {
		if own[i] < 0 || !executed[own[i]].OK() {
			continue
		}
		if last[keyOf(executed[own[i]].Op)] != own[i] {
			continue
		}
		followUps = append(followUps, session.AutoFill(e)...)
	}
	executed = append(executed, s.execute(ctx, followUps)...)
	results = append(results, executed...)

	applied := 0
	for _, r := range results {
		if r.OK() {
			applied++
			continue
		}
		s.log.Warn("itinerary write failed",
			"event_id", eventID,
			"participant_id", r.Op.ParticipantID,
			"city", r.Op.City,
			"field", r.Op.Field,
			"source", r.Op.Source,
			"error", r.Err,
		)
	}
	if applied > 0 {
		s.publish(ctx, eventID, applied)
	}
	return results, nil
}

// CreateVisit adds an empty visit, or one with a single field set, for a
// participant. Existing visits are left alone and reported.
func (s *Service) CreateVisit(ctx context.Context, eventID string, e consolidate.Edit) (consolidate.OpResult, error) {
	res, route, err := s.snapshot(ctx, eventID)
	if err != nil {
		return consolidate.OpResult{}, err
	}
	op := editOp(e)
	op.Kind = consolidate.OpCreate

	if _, ok := res.Participant(e.ParticipantID); !ok {
		return consolidate.OpResult{Op: op, Err: fmt.Errorf("%w: %s", consolidate.ErrUnknownParticipant, e.ParticipantID)}, nil
	}
	if !route.Contains(e.City) {
		return consolidate.OpResult{Op: op, Err: fmt.Errorf("%w: %s", consolidate.ErrCityNotOnRoute, e.City)}, nil
	}
	if e.Field != "" {
		if _, err := consolidate.ParseField(string(e.Field)); err != nil {
			return consolidate.OpResult{Op: op, Err: err}, nil
		}
	}

	result := consolidate.OpResult{Op: op, Err: s.store.CreateCityVisit(ctx, op)}
	if result.OK() {
		s.publish(ctx, eventID, 1)
	}
	return result, nil
}

// Export writes the roster workbook to w.
func (s *Service) Export(ctx context.Context, eventID string, w io.Writer) error {
	res, route, err := s.snapshot(ctx, eventID)
	if err != nil {
		return err
	}
	return export.Write(w, res, route)
}

// writeKey identifies one stored cell.
type writeKey struct {
	participantID string
	city          string
	field         consolidate.Field
}

func keyOf(op consolidate.UpsertOp) writeKey {
	return writeKey{op.ParticipantID, op.City, op.Field}
}

// execute runs ops with bounded concurrency. Ops on the same cell share a
// lane and run one after another in slice order; lanes run in parallel.
// Each op gets its own result and one failure never cancels the others.
func (s *Service) execute(ctx context.Context, ops []consolidate.UpsertOp) []consolidate.OpResult {
	results := make([]consolidate.OpResult, len(ops))

	lanes := make(map[writeKey][]int)
	var order []writeKey
	for i, op := range ops {
		k := keyOf(op)
		if _, ok := lanes[k]; !ok {
			order = append(order, k)
		}
		lanes[k] = append(lanes[k], i)
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, k := range order {
		lane := lanes[k]
		g.Go(func() error {
			for _, i := range lane {
				results[i] = consolidate.OpResult{Op: ops[i], Err: s.store.UpsertCityVisit(ctx, ops[i])}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) publish(ctx context.Context, eventID string, applied int) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(Update{Kind: "roster_updated", EventID: eventID, Applied: applied})
	if err != nil {
		s.log.Error("encode roster update", "event_id", eventID, "error", err)
		return
	}
	s.hub.Broadcast(ctx, eventID, payload)
}

func editOp(e consolidate.Edit) consolidate.UpsertOp {
	return consolidate.UpsertOp{
		ParticipantID: e.ParticipantID,
		City:          e.City,
		Field:         e.Field,
		Value:         e.Value,
		Source:        consolidate.SourceEdit,
	}
}
