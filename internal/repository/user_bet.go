package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userBetColumns = `user_id, bout_id, bet_type_id, predicted_value, result, created_at`

type userBetRepo struct{}

// NewUserBetRepository returns a pgx-backed UserBetRepository.
func NewUserBetRepository() UserBetRepository {
	return &userBetRepo{}
}

func (r *userBetRepo) Upsert(ctx context.Context, db DBTX, bet *domain.UserBet) (*domain.UserBet, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO user_bets (user_id, bout_id, bet_type_id, predicted_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uq_user_bets
		DO UPDATE SET predicted_value = EXCLUDED.predicted_value
		RETURNING `+userBetColumns,
		bet.UserID, bet.BoutID, bet.BetTypeID, bet.PredictedValue)
	saved, err := scanUserBet(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user bet: %w", err)
	}
	return saved, nil
}

func (r *userBetRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserBet, error) {
	rows, err := db.Query(ctx, `
		SELECT `+userBetColumns+`
		FROM user_bets WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bets: %w", err)
	}
	return collectUserBets(rows)
}

func (r *userBetRepo) ListByBout(ctx context.Context, db DBTX, boutID uuid.UUID) ([]domain.UserBet, error) {
	rows, err := db.Query(ctx, `
		SELECT `+userBetColumns+`
		FROM user_bets WHERE bout_id = $1
		ORDER BY created_at DESC`, boutID)
	if err != nil {
		return nil, fmt.Errorf("list bout bets: %w", err)
	}
	return collectUserBets(rows)
}

func (r *userBetRepo) SetResult(ctx context.Context, db DBTX, userID, boutID uuid.UUID, betTypeID int, result string) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE user_bets SET result = $4
		WHERE user_id = $1 AND bout_id = $2 AND bet_type_id = $3`,
		userID, boutID, betTypeID, result)
	if err != nil {
		return false, fmt.Errorf("set bet result: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userBetRepo) FindSettlement(ctx context.Context, db DBTX, userID, boutID uuid.UUID, betTypeID int) (*domain.UnsettledBet, error) {
	var b domain.UnsettledBet
	err := db.QueryRow(ctx, `
		SELECT ub.user_id, ub.bout_id, ub.bet_type_id, ub.predicted_value, ub.result, ub.created_at,
		       bt.name, br.winner_id, br.bet_type_id
		FROM user_bets ub
		JOIN bet_types bt ON bt.id = ub.bet_type_id
		LEFT JOIN bout_results br ON br.bout_id = ub.bout_id
		WHERE ub.user_id = $1 AND ub.bout_id = $2 AND ub.bet_type_id = $3`,
		userID, boutID, betTypeID).Scan(&b.UserID, &b.BoutID, &b.BetTypeID, &b.PredictedValue, &b.Result, &b.CreatedAt,
		&b.BetTypeName, &b.WinnerID, &b.ResultBetTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bet settlement: %w", err)
	}
	return &b, nil
}

func (r *userBetRepo) Settle(ctx context.Context, db DBTX, userID, boutID uuid.UUID, betTypeID int, result string) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE user_bets SET result = $4
		WHERE user_id = $1 AND bout_id = $2 AND bet_type_id = $3 AND result IS NULL`,
		userID, boutID, betTypeID, result)
	if err != nil {
		return false, fmt.Errorf("settle bet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userBetRepo) ListUnsettled(ctx context.Context, db DBTX, boutID *uuid.UUID, limit int) ([]domain.UnsettledBet, error) {
	rows, err := db.Query(ctx, `
		SELECT ub.user_id, ub.bout_id, ub.bet_type_id, ub.predicted_value, ub.result, ub.created_at,
		       bt.name, br.winner_id, br.bet_type_id
		FROM user_bets ub
		JOIN bout_results br ON br.bout_id = ub.bout_id
		JOIN bet_types bt ON bt.id = ub.bet_type_id
		WHERE ub.result IS NULL
		  AND ($1::uuid IS NULL OR ub.bout_id = $1)
		ORDER BY ub.created_at ASC
		LIMIT $2`, boutID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsettled bets: %w", err)
	}
	defer rows.Close()

	bets := []domain.UnsettledBet{}
	for rows.Next() {
		var b domain.UnsettledBet
		err := rows.Scan(&b.UserID, &b.BoutID, &b.BetTypeID, &b.PredictedValue, &b.Result, &b.CreatedAt,
			&b.BetTypeName, &b.WinnerID, &b.ResultBetTypeID)
		if err != nil {
			return nil, fmt.Errorf("scan unsettled bet: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func collectUserBets(rows pgx.Rows) ([]domain.UserBet, error) {
	defer rows.Close()

	bets := []domain.UserBet{}
	for rows.Next() {
		b, err := scanUserBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user bet: %w", err)
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

func scanUserBet(row pgx.Row) (*domain.UserBet, error) {
	b := &domain.UserBet{}
	err := row.Scan(&b.UserID, &b.BoutID, &b.BetTypeID, &b.PredictedValue, &b.Result, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
