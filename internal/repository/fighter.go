package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const fighterColumns = `id, name, wins, losses, draws, created_at, updated_at`

type fighterRepo struct{}

// NewFighterRepository returns a pgx-backed FighterRepository.
func NewFighterRepository() FighterRepository {
	return &fighterRepo{}
}

func (r *fighterRepo) Upsert(ctx context.Context, db DBTX, name, searchName string, tally domain.Tally) (*domain.Fighter, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO fighters (id, name, search_name, wins, losses, draws)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET wins = EXCLUDED.wins,
		    losses = EXCLUDED.losses,
		    draws = EXCLUDED.draws,
		    search_name = EXCLUDED.search_name,
		    updated_at = now()
		RETURNING `+fighterColumns,
		uuid.New(), name, searchName, tally.Wins, tally.Losses, tally.Draws)

	f, err := scanFighter(row)
	if err != nil {
		return nil, fmt.Errorf("upsert fighter %q: %w", name, err)
	}
	return f, nil
}

// Ensure relies on a no-op DO UPDATE so RETURNING yields the existing row on conflict.
func (r *fighterRepo) Ensure(ctx context.Context, db DBTX, name, searchName string) (*domain.Fighter, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO fighters (id, name, search_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = fighters.name
		RETURNING `+fighterColumns,
		uuid.New(), name, searchName)

	f, err := scanFighter(row)
	if err != nil {
		return nil, fmt.Errorf("ensure fighter %q: %w", name, err)
	}
	return f, nil
}

func (r *fighterRepo) FindByName(ctx context.Context, db DBTX, name string) (*domain.Fighter, error) {
	row := db.QueryRow(ctx, `SELECT `+fighterColumns+` FROM fighters WHERE name = $1`, name)
	f, err := scanFighter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find fighter by name: %w", err)
	}
	return f, nil
}

func (r *fighterRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Fighter, error) {
	row := db.QueryRow(ctx, `SELECT `+fighterColumns+` FROM fighters WHERE id = $1`, id)
	f, err := scanFighter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find fighter: %w", err)
	}
	return f, nil
}

func (r *fighterRepo) List(ctx context.Context, db DBTX) ([]domain.Fighter, error) {
	rows, err := db.Query(ctx, `SELECT `+fighterColumns+` FROM fighters ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list fighters: %w", err)
	}
	return collectFighters(rows)
}

func (r *fighterRepo) Search(ctx context.Context, db DBTX, term, foldedTerm string) ([]domain.Fighter, error) {
	rows, err := db.Query(ctx, `
		SELECT `+fighterColumns+`
		FROM fighters
		WHERE name ILIKE $1 OR search_name LIKE $2
		ORDER BY name ASC`,
		containsPattern(term), containsPattern(foldedTerm))
	if err != nil {
		return nil, fmt.Errorf("search fighters: %w", err)
	}
	return collectFighters(rows)
}

func collectFighters(rows pgx.Rows) ([]domain.Fighter, error) {
	defer rows.Close()

	fighters := []domain.Fighter{}
	for rows.Next() {
		f, err := scanFighter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fighter: %w", err)
		}
		fighters = append(fighters, *f)
	}
	return fighters, rows.Err()
}

func scanFighter(row pgx.Row) (*domain.Fighter, error) {
	f := &domain.Fighter{}
	err := row.Scan(&f.ID, &f.Name, &f.Wins, &f.Losses, &f.Draws, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term anywhere, with wildcards in term escaped.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
