package group

import (
	"context"
	"errors"
	"time"

	"backend-tourdesk/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound        = errors.New("group not found")
	ErrTouristNotFound = errors.New("tourist not found on this event")
	ErrNotMember       = errors.New("tourist is not a member of this group")
)

type Service struct {
	db db.TxQuerier
}

func NewService(db db.TxQuerier) *Service {
	return &Service{db: db}
}

// CreateGroup inserts the group and moves every listed tourist into it. The
// first member becomes primary. Tourists leave whatever group they were in.
func (s *Service) CreateGroup(ctx context.Context, req CreateRequest) (TourGroup, error) {
	g := TourGroup{ID: uuid.NewString(), EventID: req.EventID, Name: req.Name, Type: req.Type}
	base := time.Now().UTC()

	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO tour_groups (id, event_id, name, type)
			VALUES ($1,$2,$3,$4)
			RETURNING created_at
		`, g.ID, g.EventID, g.Name, g.Type).Scan(&g.CreatedAt)
		if err != nil {
			return err
		}
		for i, touristID := range req.MemberIDs {
			current, wasPrimary, err := membership(ctx, tx, touristID, g.EventID)
			if err != nil {
				return err
			}
			if current != nil {
				if err := leave(ctx, tx, touristID, *current, wasPrimary); err != nil {
					return err
				}
			}
			// Join times are spaced so the original order survives a sort.
			joinedAt := base.Add(time.Duration(i) * time.Microsecond)
			if err := join(ctx, tx, touristID, g.ID, i == 0, joinedAt); err != nil {
				return err
			}
			g.Members = append(g.Members, Member{TouristID: touristID, IsGroupPrimary: i == 0, JoinedAt: &joinedAt})
		}
		return nil
	})
	if err != nil {
		return TourGroup{}, err
	}
	return g, nil
}

func (s *Service) GetGroup(ctx context.Context, id string) (TourGroup, error) {
	var g TourGroup
	err := s.db.QueryRow(ctx, `SELECT id, event_id, name, type, created_at FROM tour_groups WHERE id=$1`, id).
		Scan(&g.ID, &g.EventID, &g.Name, &g.Type, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return TourGroup{}, ErrNotFound
	}
	if err != nil {
		return TourGroup{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, first_name, last_name, is_group_primary, group_joined_at
		FROM tourists
		WHERE group_id=$1
		ORDER BY group_joined_at, id
	`, id)
	if err != nil {
		return TourGroup{}, err
	}
	defer rows.Close()

	g.Members = []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.TouristID, &m.FirstName, &m.LastName, &m.IsGroupPrimary, &m.JoinedAt); err != nil {
			return TourGroup{}, err
		}
		g.Members = append(g.Members, m)
	}
	return g, rows.Err()
}

// AddMember moves a tourist into the group. Adding a current member is a no-op.
func (s *Service) AddMember(ctx context.Context, groupID, touristID string) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var eventID string
		err := tx.QueryRow(ctx, `SELECT event_id FROM tour_groups WHERE id=$1 FOR UPDATE`, groupID).Scan(&eventID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		current, wasPrimary, err := membership(ctx, tx, touristID, eventID)
		if err != nil {
			return err
		}
		if current != nil && *current == groupID {
			return nil
		}
		if current != nil {
			if err := leave(ctx, tx, touristID, *current, wasPrimary); err != nil {
				return err
			}
		}

		var hasPrimary bool
		err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tourists WHERE group_id=$1 AND is_group_primary)`, groupID).
			Scan(&hasPrimary)
		if err != nil {
			return err
		}
		return join(ctx, tx, touristID, groupID, !hasPrimary, time.Now().UTC())
	})
}

// RemoveMember takes a tourist out of the group. It reports whether the group
// was dissolved because nobody was left.
func (s *Service) RemoveMember(ctx context.Context, groupID, touristID string) (bool, error) {
	var dissolved bool
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var current *string
		var wasPrimary bool
		err := tx.QueryRow(ctx, `SELECT group_id, is_group_primary FROM tourists WHERE id=$1`, touristID).
			Scan(&current, &wasPrimary)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTouristNotFound
		}
		if err != nil {
			return err
		}
		if current == nil || *current != groupID {
			return ErrNotMember
		}
		if err := detach(ctx, tx, touristID); err != nil {
			return err
		}
		dissolved, err = settle(ctx, tx, groupID, wasPrimary)
		return err
	})
	return dissolved, err
}

// DeleteGroup releases every member and removes the group.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE tourists SET group_id=NULL, is_group_primary=false, group_joined_at=NULL WHERE group_id=$1
		`, id)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tour_groups WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func membership(ctx context.Context, q db.Querier, touristID, eventID string) (*string, bool, error) {
	var current *string
	var primary bool
	err := q.QueryRow(ctx, `SELECT group_id, is_group_primary FROM tourists WHERE id=$1 AND event_id=$2`, touristID, eventID).
		Scan(&current, &primary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrTouristNotFound
	}
	return current, primary, err
}

func join(ctx context.Context, q db.Querier, touristID, groupID string, primary bool, joinedAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE tourists SET group_id=$2, is_group_primary=$3, group_joined_at=$4 WHERE id=$1
	`, touristID, groupID, primary, joinedAt)
	return err
}

func leave(ctx context.Context, q db.Querier, touristID, groupID string, wasPrimary bool) error {
	if err := detach(ctx, q, touristID); err != nil {
		return err
	}
	_, err := settle(ctx, q, groupID, wasPrimary)
	return err
}

func detach(ctx context.Context, q db.Querier, touristID string) error {
	_, err := q.Exec(ctx, `
		UPDATE tourists SET group_id=NULL, is_group_primary=false, group_joined_at=NULL WHERE id=$1
	`, touristID)
	return err
}

// settle restores the group invariants after a departure: an empty group is
// deleted, and a group that lost its primary promotes the earliest joiner.
func settle(ctx context.Context, q db.Querier, groupID string, lostPrimary bool) (bool, error) {
	var next string
	err := q.QueryRow(ctx, `
		SELECT id FROM tourists WHERE group_id=$1 ORDER BY group_joined_at, id LIMIT 1
	`, groupID).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err := q.Exec(ctx, `DELETE FROM tour_groups WHERE id=$1`, groupID)
		return err == nil, err
	}
	if err != nil {
		return false, err
	}
	if lostPrimary {
		_, err = q.Exec(ctx, `UPDATE tourists SET is_group_primary=true WHERE id=$1`, next)
	}
	return false, err
}
