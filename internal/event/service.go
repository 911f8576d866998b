package event

import (
	"context"
	"errors"
	"fmt"

	"backend-tourdesk/internal/consolidate"
	"backend-tourdesk/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("event not found")
	ErrDuplicateCity = errors.New("city listed twice on route")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateEvent(ctx context.Context, input Event) (Event, error) {
	if err := checkRoute(input.Cities); err != nil {
		return Event{}, err
	}
	if input.Cities == nil {
		input.Cities = []string{}
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO events (id, name, cities, start_date, end_date, description, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, input.ID, input.Name, input.Cities, input.StartDate, input.EndDate, input.Description, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Event{}, err
	}
	return input, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, patch Event) (Event, error) {
	ev, err := s.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if patch.Name != "" {
		ev.Name = patch.Name
	}
	if patch.Cities != nil {
		if err := checkRoute(patch.Cities); err != nil {
			return Event{}, err
		}
		ev.Cities = patch.Cities
	}
	if patch.StartDate != nil {
		ev.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		ev.EndDate = patch.EndDate
	}
	if patch.Description != "" {
		ev.Description = patch.Description
	}

	_, err = s.db.Exec(ctx, `
		UPDATE events
		SET name=$2, cities=$3, start_date=$4, end_date=$5, description=$6
		WHERE id=$1
	`, ev.ID, ev.Name, ev.Cities, ev.StartDate, ev.EndDate, ev.Description)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, cities, start_date, end_date, description, created_by, created_at
		FROM events WHERE id=$1
	`, id)
	var ev Event
	if err := row.Scan(&ev.ID, &ev.Name, &ev.Cities, &ev.StartDate, &ev.EndDate, &ev.Description, &ev.CreatedBy, &ev.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return ev, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Route returns the ordered cities of an event.
func (s *Service) Route(ctx context.Context, id string) (consolidate.Route, error) {
	var cities []string
	if err := s.db.QueryRow(ctx, `SELECT cities FROM events WHERE id=$1`, id).Scan(&cities); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return consolidate.Route(cities), nil
}

func checkRoute(cities []string) error {
	seen := make(map[string]bool, len(cities))
	for _, c := range cities {
		if seen[c] {
			return fmt.Errorf("%w: %s", ErrDuplicateCity, c)
		}
		seen[c] = true
	}
	return nil
}
