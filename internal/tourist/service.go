package tourist

import (
	"context"
	"errors"

	"backend-tourdesk/internal/consolidate"
	"backend-tourdesk/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("tourist not found")
	ErrNoLead   = errors.New("tourist has no lead")
)

const touristColumns = `id, event_id, deal_id, lead_id, first_name, last_name, middle_name, class,
		is_primary, group_id, is_group_primary, created_at`

type Service struct {
	db db.TxQuerier
}

func NewService(db db.TxQuerier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateTourist(ctx context.Context, input Tourist) (Tourist, error) {
	input.ID = uuid.NewString()
	if input.Class == "" {
		input.Class = string(consolidate.ClassAdult)
	}
	input.GroupID = nil
	input.IsGroupPrimary = false

	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if input.IsPrimary && input.LeadID != nil {
			if _, err := tx.Exec(ctx, `UPDATE tourists SET is_primary=false WHERE lead_id=$1`, *input.LeadID); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `
			INSERT INTO tourists (id, event_id, deal_id, lead_id, first_name, last_name, middle_name, class, is_primary)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING created_at
		`, input.ID, input.EventID, input.DealID, input.LeadID, input.FirstName, input.LastName, input.MiddleName,
			input.Class, input.IsPrimary).Scan(&input.CreatedAt)
	})
	if err != nil {
		return Tourist{}, err
	}
	return input, nil
}

func (s *Service) GetTourist(ctx context.Context, id string) (Tourist, error) {
	t, err := scanTourist(s.db.QueryRow(ctx, `SELECT `+touristColumns+` FROM tourists WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Tourist{}, ErrNotFound
	}
	return t, err
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Tourist, error) {
	rows, err := s.db.Query(ctx, `SELECT `+touristColumns+` FROM tourists WHERE event_id=$1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tourists := []Tourist{}
	for rows.Next() {
		t, err := scanTourist(rows)
		if err != nil {
			return nil, err
		}
		tourists = append(tourists, t)
	}
	return tourists, rows.Err()
}

func (s *Service) UpdateTourist(ctx context.Context, id string, patch Patch) (Tourist, error) {
	t, err := s.GetTourist(ctx, id)
	if err != nil {
		return Tourist{}, err
	}
	if patch.DealID != nil {
		t.DealID = *patch.DealID
	}
	if patch.LeadID != nil {
		// An empty id detaches the tourist from its lead.
		if *patch.LeadID == "" {
			t.LeadID = nil
			t.IsPrimary = false
		} else {
			t.LeadID = patch.LeadID
		}
	}
	if patch.FirstName != nil {
		t.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		t.LastName = *patch.LastName
	}
	if patch.MiddleName != nil {
		t.MiddleName = *patch.MiddleName
	}
	if patch.Class != nil {
		t.Class = *patch.Class
	}

	_, err = s.db.Exec(ctx, `
		UPDATE tourists
		SET deal_id=$2, lead_id=$3, first_name=$4, last_name=$5, middle_name=$6, class=$7, is_primary=$8
		WHERE id=$1
	`, t.ID, t.DealID, t.LeadID, t.FirstName, t.LastName, t.MiddleName, t.Class, t.IsPrimary)
	if err != nil {
		return Tourist{}, err
	}
	return t, nil
}

func (s *Service) DeleteTourist(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tourists WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPrimary makes id the primary tourist of its lead, clearing the flag on
// every other tourist of that lead.
func (s *Service) SetPrimary(ctx context.Context, id string) (Tourist, error) {
	t, err := s.GetTourist(ctx, id)
	if err != nil {
		return Tourist{}, err
	}
	if t.LeadID == nil {
		return Tourist{}, ErrNoLead
	}

	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE tourists SET is_primary=false WHERE lead_id=$1 AND id<>$2`, *t.LeadID, t.ID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE tourists SET is_primary=true WHERE id=$1`, t.ID)
		return err
	})
	if err != nil {
		return Tourist{}, err
	}
	t.IsPrimary = true
	return t, nil
}

func scanTourist(row pgx.Row) (Tourist, error) {
	var t Tourist
	err := row.Scan(&t.ID, &t.EventID, &t.DealID, &t.LeadID, &t.FirstName, &t.LastName, &t.MiddleName, &t.Class,
		&t.IsPrimary, &t.GroupID, &t.IsGroupPrimary, &t.CreatedAt)
	return t, err
}
