package repository

import (
	"context"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// TxBeginner is a DBTX that can also open transactions (pgxpool.Pool).
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FighterRepository provides access to fighters.
type FighterRepository interface {
	// Upsert inserts the fighter or overwrites the tally of the row with the same name.
	Upsert(ctx context.Context, db DBTX, name, searchName string, tally domain.Tally) (*domain.Fighter, error)

	// Ensure inserts a 0-0-0 fighter when the name is unknown and returns the stored row
	// either way. An existing tally is left untouched.
	Ensure(ctx context.Context, db DBTX, name, searchName string) (*domain.Fighter, error)

	// FindByName returns the fighter with exactly this name, or nil.
	FindByName(ctx context.Context, db DBTX, name string) (*domain.Fighter, error)

	// FindByID returns a fighter by ID, or nil.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Fighter, error)

	// List returns all fighters ordered by name.
	List(ctx context.Context, db DBTX) ([]domain.Fighter, error)

	// Search matches term case-insensitively against the name, and foldedTerm against
	// the accent-folded search name. Ordered by name.
	Search(ctx context.Context, db DBTX, term, foldedTerm string) ([]domain.Fighter, error)
}

// EventRepository provides access to events.
type EventRepository interface {
	Create(ctx context.Context, db DBTX, event *domain.Event) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error)

	// FindByName returns the most recently created event with exactly this name, or nil.
	FindByName(ctx context.Context, db DBTX, name string) (*domain.Event, error)

	// List returns all events, most recent calendar date first.
	List(ctx context.Context, db DBTX) ([]domain.Event, error)

	// Update writes name, date, location and event_date. Returns nil when no row matches.
	Update(ctx context.Context, db DBTX, event *domain.Event) (*domain.Event, error)

	// Delete removes the event and reports whether a row was deleted.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) (bool, error)
}

// BoutRepository provides access to bouts.
type BoutRepository interface {
	Create(ctx context.Context, db DBTX, bout *domain.Bout) error

	// FindOrCreate returns the bout pairing both fighters in the event, in either
	// orientation, inserting it with left/right as given when absent.
	FindOrCreate(ctx context.Context, db DBTX, eventID, leftID, rightID uuid.UUID) (*domain.Bout, error)

	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bout, error)

	// ListDetailsByEvent returns the event's bouts joined with both fighters' current tallies.
	ListDetailsByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.BoutDetail, error)

	DeleteByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) error
}

// BetTypeRepository provides access to bet_types.
type BetTypeRepository interface {
	Create(ctx context.Context, db DBTX, name, description string) (*domain.BetType, error)

	// FindOrCreate returns the bet type with this name, creating it when absent.
	FindOrCreate(ctx context.Context, db DBTX, name string) (*domain.BetType, error)

	FindByID(ctx context.Context, db DBTX, id int) (*domain.BetType, error)
	List(ctx context.Context, db DBTX) ([]domain.BetType, error)
}

// BoutResultRepository provides access to bout_results.
type BoutResultRepository interface {
	// Insert fails with a unique violation when the bout already has a result.
	Insert(ctx context.Context, db DBTX, result *domain.BoutResult) error

	// ListDetailsByEvent returns results for the event's bouts with winner and bet type names.
	ListDetailsByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.BoutResultDetail, error)
}

// UserBetRepository provides access to user_bets.
type UserBetRepository interface {
	// Upsert inserts the bet or overwrites predicted_value on the existing (user, bout, bet type) row.
	Upsert(ctx context.Context, db DBTX, bet *domain.UserBet) (*domain.UserBet, error)

	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserBet, error)
	ListByBout(ctx context.Context, db DBTX, boutID uuid.UUID) ([]domain.UserBet, error)

	// SetResult writes the result of one bet and reports whether the bet exists.
	SetResult(ctx context.Context, db DBTX, userID, boutID uuid.UUID, betTypeID int, result string) (bool, error)

	// FindSettlement returns one bet joined with its bout's recorded outcome, if any.
	// Returns nil when the bet does not exist.
	FindSettlement(ctx context.Context, db DBTX, userID, boutID uuid.UUID, betTypeID int) (*domain.UnsettledBet, error)

	// Settle writes the result only when none is set yet.
	Settle(ctx context.Context, db DBTX, userID, boutID uuid.UUID, betTypeID int, result string) (bool, error)

	// ListUnsettled returns bets without a result on bouts that have one. A nil boutID
	// covers all bouts.
	ListUnsettled(ctx context.Context, db DBTX, boutID *uuid.UUID, limit int) ([]domain.UnsettledBet, error)
}

// UserRepository provides access to users.
type UserRepository interface {
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)
	Create(ctx context.Context, db DBTX, user *domain.User) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the change it announces).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events, oldest first.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps published_at on the given rows.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
