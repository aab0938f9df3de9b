package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const boutColumns = `id, event_id, fighter_left_id, fighter_right_id, created_at, updated_at`

type boutRepo struct{}

// NewBoutRepository returns a pgx-backed BoutRepository.
func NewBoutRepository() BoutRepository {
	return &boutRepo{}
}

func (r *boutRepo) Create(ctx context.Context, db DBTX, bout *domain.Bout) error {
	if bout.ID == uuid.Nil {
		bout.ID = uuid.New()
	}
	err := db.QueryRow(ctx, `
		INSERT INTO bouts (id, event_id, fighter_left_id, fighter_right_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		bout.ID, bout.EventID, bout.FighterLeftID, bout.FighterRightID,
	).Scan(&bout.CreatedAt, &bout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert bout: %w", err)
	}
	return nil
}

// FindOrCreate looks the pairing up first, then inserts with ON CONFLICT DO NOTHING on
// uq_bouts_pairing and re-reads when a concurrent writer won the insert.
func (r *boutRepo) FindOrCreate(ctx context.Context, db DBTX, eventID, leftID, rightID uuid.UUID) (*domain.Bout, error) {
	b, err := r.findPairing(ctx, db, eventID, leftID, rightID)
	if err != nil || b != nil {
		return b, err
	}

	row := db.QueryRow(ctx, `
		INSERT INTO bouts (id, event_id, fighter_left_id, fighter_right_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING `+boutColumns,
		uuid.New(), eventID, leftID, rightID)
	b, err = scanBout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.findPairing(ctx, db, eventID, leftID, rightID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert bout: %w", err)
	}
	return b, nil
}

func (r *boutRepo) findPairing(ctx context.Context, db DBTX, eventID, a, b uuid.UUID) (*domain.Bout, error) {
	row := db.QueryRow(ctx, `
		SELECT `+boutColumns+`
		FROM bouts
		WHERE event_id = $1
		  AND ((fighter_left_id = $2 AND fighter_right_id = $3)
		    OR (fighter_left_id = $3 AND fighter_right_id = $2))`,
		eventID, a, b)
	bout, err := scanBout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bout pairing: %w", err)
	}
	return bout, nil
}

func (r *boutRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bout, error) {
	row := db.QueryRow(ctx, `SELECT `+boutColumns+` FROM bouts WHERE id = $1`, id)
	b, err := scanBout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bout: %w", err)
	}
	return b, nil
}

func (r *boutRepo) ListDetailsByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.BoutDetail, error) {
	rows, err := db.Query(ctx, `
		SELECT b.id, b.event_id, b.fighter_left_id, b.fighter_right_id, b.created_at, b.updated_at,
		       fl.name, fl.wins, fl.losses, fl.draws,
		       fr.name, fr.wins, fr.losses, fr.draws
		FROM bouts b
		JOIN fighters fl ON fl.id = b.fighter_left_id
		JOIN fighters fr ON fr.id = b.fighter_right_id
		WHERE b.event_id = $1
		ORDER BY b.created_at ASC, b.id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list bouts: %w", err)
	}
	defer rows.Close()

	bouts := []domain.BoutDetail{}
	for rows.Next() {
		var d domain.BoutDetail
		err := rows.Scan(&d.ID, &d.EventID, &d.FighterLeftID, &d.FighterRightID, &d.CreatedAt, &d.UpdatedAt,
			&d.LeftName, &d.LeftTally.Wins, &d.LeftTally.Losses, &d.LeftTally.Draws,
			&d.RightName, &d.RightTally.Wins, &d.RightTally.Losses, &d.RightTally.Draws)
		if err != nil {
			return nil, fmt.Errorf("scan bout: %w", err)
		}
		bouts = append(bouts, d)
	}
	return bouts, rows.Err()
}

func (r *boutRepo) DeleteByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) error {
	if _, err := db.Exec(ctx, `DELETE FROM bouts WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete bouts: %w", err)
	}
	return nil
}

func scanBout(row pgx.Row) (*domain.Bout, error) {
	b := &domain.Bout{}
	err := row.Scan(&b.ID, &b.EventID, &b.FighterLeftID, &b.FighterRightID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
