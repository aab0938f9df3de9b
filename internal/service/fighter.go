package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/infra"
	"github.com/fightcard/platform/internal/parse"
	"github.com/fightcard/platform/internal/repository"
	"github.com/google/uuid"
)

// FighterRegistry resolves fighter names to stored identities and keeps their tallies.
type FighterRegistry struct {
	db       repository.DBTX
	fighters repository.FighterRepository
	metrics  *infra.Metrics
	logger   *slog.Logger
}

// NewFighterRegistry creates a FighterRegistry.
func NewFighterRegistry(db repository.DBTX, fighters repository.FighterRepository, metrics *infra.Metrics, logger *slog.Logger) *FighterRegistry {
	return &FighterRegistry{db: db, fighters: fighters, metrics: metrics, logger: logger}
}

// Resolve returns the fighter stored under name, creating it when absent.
//
// A non-empty record overwrites the stored tally. An empty record only resolves the
// identity: a new fighter starts at 0-0-0 and an existing tally is kept.
//
// When the write fails the fighter already stored under name is returned instead.
// An error means neither the write nor the lookup produced a fighter.
func (r *FighterRegistry) Resolve(ctx context.Context, name, record string) (*domain.Fighter, error) {
	name = parse.NormalizeName(name)
	if name == "" {
		return nil, domain.ErrValidation("fighter name is required")
	}
	key := parse.SearchKey(name)

	var (
		f      *domain.Fighter
		err    error
		action string
	)
	if strings.TrimSpace(record) != "" {
		f, err = r.fighters.Upsert(ctx, r.db, name, key, parse.ParseRecord(record))
		action = "upserted"
	} else {
		f, err = r.fighters.Ensure(ctx, r.db, name, key)
		action = "ensured"
	}
	if err == nil {
		r.metrics.RecordFighterResolution(action)
		return f, nil
	}

	r.logger.Warn("fighter write failed, falling back to lookup", "name", name, "error", err)
	existing, lookupErr := r.fighters.FindByName(ctx, r.db, name)
	if lookupErr != nil {
		return nil, domain.ErrInternal("resolve fighter", lookupErr)
	}
	if existing == nil {
		return nil, domain.ErrInternal("resolve fighter", err)
	}
	r.metrics.RecordFighterResolution("fallback")
	return existing, nil
}

// List returns all fighters ordered by name.
func (r *FighterRegistry) List(ctx context.Context) ([]domain.Fighter, error) {
	fighters, err := r.fighters.List(ctx, r.db)
	if err != nil {
		return nil, domain.ErrInternal("list fighters", err)
	}
	return fighters, nil
}

// Get returns a fighter by ID.
func (r *FighterRegistry) Get(ctx context.Context, id uuid.UUID) (*domain.Fighter, error) {
	f, err := r.fighters.FindByID(ctx, r.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find fighter", err)
	}
	if f == nil {
		return nil, domain.ErrNotFound("fighter", id.String())
	}
	return f, nil
}

// Search returns fighters whose name contains term, ignoring case and accents.
func (r *FighterRegistry) Search(ctx context.Context, term string) ([]domain.Fighter, error) {
	term = parse.NormalizeName(term)
	if term == "" {
		return nil, domain.ErrValidation("name query parameter is required")
	}
	fighters, err := r.fighters.Search(ctx, r.db, term, parse.SearchKey(term))
	if err != nil {
		return nil, domain.ErrInternal("search fighters", err)
	}
	return fighters, nil
}
