package repository

import (
	"context"
	"fmt"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
)

type boutResultRepo struct{}

// NewBoutResultRepository returns a pgx-backed BoutResultRepository.
func NewBoutResultRepository() BoutResultRepository {
	return &boutResultRepo{}
}

func (r *boutResultRepo) Insert(ctx context.Context, db DBTX, result *domain.BoutResult) error {
	err := db.QueryRow(ctx, `
		INSERT INTO bout_results (bout_id, winner_id, bet_type_id, round, "time", details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		result.BoutID, result.WinnerID, result.BetTypeID, result.Round, result.Time, result.Details,
	).Scan(&result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert bout result: %w", err)
	}
	return nil
}

func (r *boutResultRepo) ListDetailsByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.BoutResultDetail, error) {
	rows, err := db.Query(ctx, `
		SELECT br.bout_id, br.winner_id, br.bet_type_id, br.round, br."time", br.details,
		       br.created_at, br.updated_at,
		       COALESCE(w.name, ''), COALESCE(bt.name, '')
		FROM bout_results br
		JOIN bouts b ON b.id = br.bout_id
		LEFT JOIN fighters w ON w.id = br.winner_id
		LEFT JOIN bet_types bt ON bt.id = br.bet_type_id
		WHERE b.event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list bout results: %w", err)
	}
	defer rows.Close()

	results := []domain.BoutResultDetail{}
	for rows.Next() {
		var d domain.BoutResultDetail
		err := rows.Scan(&d.BoutID, &d.WinnerID, &d.BetTypeID, &d.Round, &d.Time, &d.Details,
			&d.CreatedAt, &d.UpdatedAt, &d.WinnerName, &d.BetTypeName)
		if err != nil {
			return nil, fmt.Errorf("scan bout result: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
