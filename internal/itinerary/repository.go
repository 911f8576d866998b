package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend-tourdesk/internal/consolidate"
	"backend-tourdesk/internal/db"
)

var ErrVisitExists = errors.New("city visit already exists")

// Repository reads roster snapshots and writes single-field visit changes.
type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

var visitColumns = func() string {
	cols := make([]string, len(consolidate.AllFields))
	for i, f := range consolidate.AllFields {
		cols[i] = fmt.Sprintf("COALESCE(v.%s, '')", f)
	}
	return strings.Join(cols, ", ")
}()

// Roster loads every tourist of the event with its lead status, group
// membership and city visits, plus the event's groups.
func (r *Repository) Roster(ctx context.Context, eventID string) ([]consolidate.Participant, []consolidate.Group, error) {
	participants, err := r.participants(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	groups, err := r.groups(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if err := r.attachVisits(ctx, eventID, participants); err != nil {
		return nil, nil, err
	}
	return participants, groups, nil
}

func (r *Repository) participants(ctx context.Context, eventID string) ([]consolidate.Participant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.deal_id, t.lead_id, l.status, t.first_name, t.last_name, t.middle_name, t.class,
			t.is_primary, t.group_id, t.is_group_primary
		FROM tourists t
		LEFT JOIN leads l ON l.id = t.lead_id
		WHERE t.event_id=$1
		ORDER BY t.created_at, t.id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []consolidate.Participant{}
	for rows.Next() {
		var (
			p          consolidate.Participant
			profile    consolidate.Profile
			leadID     *string
			leadStatus *string
			groupID    *string
			class      string
		)
		if err := rows.Scan(&p.ID, &p.DealID, &leadID, &leadStatus, &profile.FirstName, &profile.LastName,
			&profile.MiddleName, &class, &profile.IsPrimary, &groupID, &p.IsGroupPrimary); err != nil {
			return nil, err
		}
		profile.Class = consolidate.TouristClass(class)
		p.Profile = &profile
		if leadID != nil {
			p.LeadID = *leadID
			// A missing status means the lead row is gone; the engine reports it.
			if leadStatus != nil {
				p.Lead = &consolidate.Lead{ID: *leadID, Status: consolidate.LeadStatus(*leadStatus)}
			}
		}
		if groupID != nil {
			p.GroupID = *groupID
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) groups(ctx context.Context, eventID string) ([]consolidate.Group, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, type FROM tour_groups WHERE event_id=$1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []consolidate.Group
	for rows.Next() {
		var g consolidate.Group
		var kind string
		if err := rows.Scan(&g.ID, &g.Name, &kind); err != nil {
			return nil, err
		}
		g.Type = consolidate.GroupType(kind)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) attachVisits(ctx context.Context, eventID string, participants []consolidate.Participant) error {
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		index[p.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT v.tourist_id, v.city, `+visitColumns+`
		FROM city_visits v
		JOIN tourists t ON t.id = v.tourist_id
		WHERE t.event_id=$1
		ORDER BY v.tourist_id, v.city
	`, eventID)
	if err != nil {
		return err
	}
	defer rows.Close()

	values := make([]string, len(consolidate.AllFields))
	for rows.Next() {
		var touristID string
		var visit consolidate.CityVisit
		dest := make([]any, 0, len(values)+2)
		dest = append(dest, &touristID, &visit.City)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		for i, f := range consolidate.AllFields {
			visit.Set(f, values[i])
		}
		if i, ok := index[touristID]; ok {
			participants[i].Visits = append(participants[i].Visits, visit)
		}
	}
	return rows.Err()
}

// UpsertCityVisit writes one field, creating the visit row when needed. A
// fill-empty-only op keeps a value that is already stored.
func (r *Repository) UpsertCityVisit(ctx context.Context, op consolidate.UpsertOp) error {
	col, err := column(op.Field)
	if err != nil {
		return err
	}
	set := "EXCLUDED." + col
	if op.FillEmptyOnly {
		set = fmt.Sprintf("COALESCE(NULLIF(city_visits.%[1]s, ''), EXCLUDED.%[1]s)", col)
	}
	_, err = r.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO city_visits (tourist_id, city, %[1]s)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (tourist_id, city) DO UPDATE SET %[1]s = %[2]s, updated_at = now()
	`, col, set), op.ParticipantID, op.City, op.Value)
	return err
}

// CreateCityVisit inserts a new visit row, optionally with one field set. It
// never touches an existing row.
func (r *Repository) CreateCityVisit(ctx context.Context, op consolidate.UpsertOp) error {
	var (
		query string
		args  = []any{op.ParticipantID, op.City}
	)
	if op.Field == "" {
		query = `INSERT INTO city_visits (tourist_id, city) VALUES ($1, $2) ON CONFLICT (tourist_id, city) DO NOTHING`
	} else {
		col, err := column(op.Field)
		if err != nil {
			return err
		}
		query = fmt.Sprintf(`
			INSERT INTO city_visits (tourist_id, city, %s) VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (tourist_id, city) DO NOTHING
		`, col)
		args = append(args, op.Value)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVisitExists
	}
	return nil
}

// column maps a field onto its city_visits column. Only known fields reach
// the SQL text.
func column(f consolidate.Field) (string, error) {
	parsed, err := consolidate.ParseField(string(f))
	if err != nil {
		return "", err
	}
	return string(parsed), nil
}
