package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, name, "date", location, event_date, created_at, updated_at`

type eventRepo struct{}

// NewEventRepository returns a pgx-backed EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepo{}
}

func (r *eventRepo) Create(ctx context.Context, db DBTX, event *domain.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := db.QueryRow(ctx, `
		INSERT INTO events (id, name, "date", location, event_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		event.ID, event.Name, event.Date, event.Location, event.EventDate,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error) {
	row := db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (r *eventRepo) FindByName(ctx context.Context, db DBTX, name string) (*domain.Event, error) {
	row := db.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM events WHERE name = $1
		ORDER BY created_at DESC
		LIMIT 1`, name)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event by name: %w", err)
	}
	return e, nil
}

func (r *eventRepo) List(ctx context.Context, db DBTX) ([]domain.Event, error) {
	rows, err := db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY event_date DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) Update(ctx context.Context, db DBTX, event *domain.Event) (*domain.Event, error) {
	row := db.QueryRow(ctx, `
		UPDATE events
		SET name = $2, "date" = $3, location = $4, event_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns,
		event.ID, event.Name, event.Date, event.Location, event.EventDate)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *eventRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.EventDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}
