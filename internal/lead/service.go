package lead

import (
	"context"
	"errors"

	"backend-tourdesk/internal/consolidate"
	"backend-tourdesk/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, event_id, name, phone, status, tour_cost, tour_cost_currency, advance, advance_currency,
		remaining, remaining_currency, cities, created_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateLead(ctx context.Context, input Lead) (Lead, error) {
	input.ID = uuid.NewString()
	if input.Status == "" {
		input.Status = string(consolidate.LeadNew)
	}
	if input.Remaining == 0 && input.RemainingCurrency == "" {
		input.Remaining, input.RemainingCurrency = outstanding(input)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO leads (id, event_id, name, phone, status, tour_cost, tour_cost_currency, advance, advance_currency,
			remaining, remaining_currency, cities)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`, input.ID, input.EventID, input.Name, input.Phone, input.Status, input.TourCost, input.TourCostCurrency,
		input.Advance, input.AdvanceCurrency, input.Remaining, input.RemainingCurrency, input.Cities)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Lead{}, err
	}
	return input, nil
}

func (s *Service) GetLead(ctx context.Context, id string) (Lead, error) {
	row := s.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=$1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Lead, error) {
	rows, err := s.db.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE event_id=$1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *Service) UpdateLead(ctx context.Context, id string, patch Patch) (Lead, error) {
	l, err := s.GetLead(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Phone != nil {
		l.Phone = *patch.Phone
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	if patch.TourCost != nil {
		l.TourCost = *patch.TourCost
	}
	if patch.TourCostCurrency != nil {
		l.TourCostCurrency = *patch.TourCostCurrency
	}
	if patch.Advance != nil {
		l.Advance = *patch.Advance
	}
	if patch.AdvanceCurrency != nil {
		l.AdvanceCurrency = *patch.AdvanceCurrency
	}
	if patch.Remaining != nil {
		l.Remaining = *patch.Remaining
	}
	if patch.RemainingCurrency != nil {
		l.RemainingCurrency = *patch.RemainingCurrency
	}
	if patch.Cities != nil {
		l.Cities = *patch.Cities
	}

	_, err = s.db.Exec(ctx, `
		UPDATE leads
		SET name=$2, phone=$3, status=$4, tour_cost=$5, tour_cost_currency=$6, advance=$7, advance_currency=$8,
			remaining=$9, remaining_currency=$10, cities=$11
		WHERE id=$1
	`, l.ID, l.Name, l.Phone, l.Status, l.TourCost, l.TourCostCurrency, l.Advance, l.AdvanceCurrency,
		l.Remaining, l.RemainingCurrency, l.Cities)
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}

func (s *Service) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// outstanding derives the unpaid balance when cost and advance share a
// currency. Mixed currencies are left for the operator to fill in.
func outstanding(l Lead) (float64, string) {
	if l.AdvanceCurrency != "" && l.AdvanceCurrency != l.TourCostCurrency {
		return 0, ""
	}
	return l.TourCost - l.Advance, l.TourCostCurrency
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.EventID, &l.Name, &l.Phone, &l.Status, &l.TourCost, &l.TourCostCurrency,
		&l.Advance, &l.AdvanceCurrency, &l.Remaining, &l.RemainingCurrency, &l.Cities, &l.CreatedAt)
	return l, err
}
