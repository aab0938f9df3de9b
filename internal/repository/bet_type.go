package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fightcard/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

const betTypeColumns = `id, name, description, created_at`

type betTypeRepo struct{}

// NewBetTypeRepository returns a pgx-backed BetTypeRepository.
func NewBetTypeRepository() BetTypeRepository {
	return &betTypeRepo{}
}

func (r *betTypeRepo) Create(ctx context.Context, db DBTX, name, description string) (*domain.BetType, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO bet_types (name, description)
		VALUES ($1, $2)
		RETURNING `+betTypeColumns, name, description)
	bt, err := scanBetType(row)
	if err != nil {
		return nil, fmt.Errorf("insert bet type: %w", err)
	}
	return bt, nil
}

func (r *betTypeRepo) FindOrCreate(ctx context.Context, db DBTX, name string) (*domain.BetType, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO bet_types (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = bet_types.name
		RETURNING `+betTypeColumns, name)
	bt, err := scanBetType(row)
	if err != nil {
		return nil, fmt.Errorf("find or create bet type %q: %w", name, err)
	}
	return bt, nil
}

func (r *betTypeRepo) FindByID(ctx context.Context, db DBTX, id int) (*domain.BetType, error) {
	row := db.QueryRow(ctx, `SELECT `+betTypeColumns+` FROM bet_types WHERE id = $1`, id)
	bt, err := scanBetType(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bet type: %w", err)
	}
	return bt, nil
}

func (r *betTypeRepo) List(ctx context.Context, db DBTX) ([]domain.BetType, error) {
	rows, err := db.Query(ctx, `SELECT `+betTypeColumns+` FROM bet_types ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bet types: %w", err)
	}
	defer rows.Close()

	types := []domain.BetType{}
	for rows.Next() {
		bt, err := scanBetType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet type: %w", err)
		}
		types = append(types, *bt)
	}
	return types, rows.Err()
}

func scanBetType(row pgx.Row) (*domain.BetType, error) {
	bt := &domain.BetType{}
	if err := row.Scan(&bt.ID, &bt.Name, &bt.Description, &bt.CreatedAt); err != nil {
		return nil, err
	}
	return bt, nil
}
