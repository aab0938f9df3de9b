package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/parse"
	"github.com/fightcard/platform/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentResolutions bounds fighter lookups in flight for one event creation.
const maxConcurrentResolutions = 8

// EventService manages events and the bouts on their cards.
type EventService struct {
	pool     repository.TxBeginner
	events   repository.EventRepository
	bouts    repository.BoutRepository
	results  repository.BoutResultRepository
	registry *FighterRegistry
	logger   *slog.Logger
	now      func() time.Time
}

// NewEventService creates an EventService.
func NewEventService(
	pool repository.TxBeginner,
	events repository.EventRepository,
	bouts repository.BoutRepository,
	results repository.BoutResultRepository,
	registry *FighterRegistry,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		pool:     pool,
		events:   events,
		bouts:    bouts,
		results:  results,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// BoutInput is one bout on a scheduled card with free-text "W-L-D" records.
type BoutInput struct {
	FighterLeft  string `json:"fighter_left"`
	LeftRecord   string `json:"left_record"`
	FighterRight string `json:"fighter_right"`
	RightRecord  string `json:"right_record"`
}

// CreateEventInput holds the event creation request.
type CreateEventInput struct {
	Name     string      `json:"name"`
	Date     string      `json:"date"`
	Location string      `json:"location"`
	Bouts    []BoutInput `json:"bouts"`
}

// UpdateEventInput holds a partial event update. Nil fields are left unchanged.
type UpdateEventInput struct {
	Name     *string `json:"name"`
	Date     *string `json:"date"`
	Location *string `json:"location"`
}

// BoutResultView is the outcome attached to a bout of a concluded event.
type BoutResultView struct {
	WinnerID   *uuid.UUID `json:"winner_id"`
	WinnerName string     `json:"winner_name"`
	BetType    string     `json:"bet_type"`
	Round      int        `json:"round"`
	Time       string     `json:"time"`
	Details    string     `json:"details"`
}

// BoutView is a display-ready bout with both fighters' current records.
type BoutView struct {
	ID             uuid.UUID       `json:"id"`
	FighterLeftID  uuid.UUID       `json:"fighter_left_id"`
	FighterRightID uuid.UUID       `json:"fighter_right_id"`
	LeftName       string          `json:"left_name"`
	RightName      string          `json:"right_name"`
	LeftRecord     string          `json:"left_record"`
	RightRecord    string          `json:"right_record"`
	Result         *BoutResultView `json:"result,omitempty"`
}

// EventDetail is an event with its card.
type EventDetail struct {
	domain.Event
	Concluded bool       `json:"concluded"`
	Bouts     []BoutView `json:"bouts"`
}

type resolvedPair struct {
	left, right       *domain.Fighter
	leftErr, rightErr error
}

// Create stores the event and then one bout per pair whose fighters both resolve.
// Pairs that fail to resolve or insert are dropped; the event is kept either way.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*EventDetail, error) {
	if err := domain.ValidateRequired("name", input.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	event := &domain.Event{
		Name:      strings.TrimSpace(input.Name),
		Date:      strings.TrimSpace(input.Date),
		Location:  strings.TrimSpace(input.Location),
		EventDate: parse.ParseEventDate(input.Date, s.now()),
	}
	if err := s.events.Create(ctx, s.pool, event); err != nil {
		return nil, domain.ErrInternal("create event", err)
	}

	pairs := s.resolvePairs(ctx, input.Bouts)
	inserted := 0
	for i, p := range pairs {
		in := input.Bouts[i]
		if p.leftErr != nil || p.rightErr != nil {
			s.logger.Warn("dropping bout: fighter resolution failed",
				"event_id", event.ID, "left", in.FighterLeft, "right", in.FighterRight,
				"left_error", p.leftErr, "right_error", p.rightErr)
			continue
		}
		if p.left.ID == p.right.ID {
			s.logger.Warn("dropping bout: fighter paired with itself", "event_id", event.ID, "fighter", p.left.Name)
			continue
		}
		bout := &domain.Bout{EventID: event.ID, FighterLeftID: p.left.ID, FighterRightID: p.right.ID}
		if err := s.bouts.Create(ctx, s.pool, bout); err != nil {
			s.logger.Warn("dropping bout: insert failed",
				"event_id", event.ID, "left", p.left.Name, "right", p.right.Name, "error", err)
			continue
		}
		inserted++
	}

	s.logger.Info("event created", "event_id", event.ID, "name", event.Name,
		"bouts", inserted, "dropped", len(input.Bouts)-inserted)
	return s.Get(ctx, event.ID)
}

// resolvePairs resolves both sides of every bout concurrently. Results keep input order.
func (s *EventService) resolvePairs(ctx context.Context, bouts []BoutInput) []resolvedPair {
	pairs := make([]resolvedPair, len(bouts))

	var g errgroup.Group
	g.SetLimit(maxConcurrentResolutions)
	for i, b := range bouts {
		g.Go(func() error {
			pairs[i].left, pairs[i].leftErr = s.registry.Resolve(ctx, b.FighterLeft, b.LeftRecord)
			return nil
		})
		g.Go(func() error {
			pairs[i].right, pairs[i].rightErr = s.registry.Resolve(ctx, b.FighterRight, b.RightRecord)
			return nil
		})
	}
	_ = g.Wait()

	return pairs
}

// FindOrCreate returns the most recent event with exactly this name, creating an event
// without bouts when none exists.
func (s *EventService) FindOrCreate(ctx context.Context, name, date, location string) (*domain.Event, error) {
	name = strings.TrimSpace(name)
	existing, err := s.events.FindByName(ctx, s.pool, name)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if existing != nil {
		return existing, nil
	}

	event := &domain.Event{
		Name:      name,
		Date:      strings.TrimSpace(date),
		Location:  strings.TrimSpace(location),
		EventDate: parse.ParseEventDate(date, s.now()),
	}
	if err := s.events.Create(ctx, s.pool, event); err != nil {
		return nil, domain.ErrInternal("create event", err)
	}
	s.logger.Info("event created from results", "event_id", event.ID, "name", event.Name)
	return event, nil
}

// List returns all events, most recent calendar date first.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	events, err := s.events.List(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list events", err)
	}
	return events, nil
}

// Get returns the event with its card. Records reflect each fighter's current tally.
// Results are attached only once the event is concluded.
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*EventDetail, error) {
	event, err := s.events.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}

	details, err := s.bouts.ListDetailsByEvent(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("list bouts", err)
	}

	detail := &EventDetail{
		Event:     *event,
		Concluded: event.ConcludedAt(s.now()),
		Bouts:     make([]BoutView, 0, len(details)),
	}

	var results map[uuid.UUID]domain.BoutResultDetail
	if detail.Concluded {
		rows, err := s.results.ListDetailsByEvent(ctx, s.pool, id)
		if err != nil {
			return nil, domain.ErrInternal("list bout results", err)
		}
		results = make(map[uuid.UUID]domain.BoutResultDetail, len(rows))
		for _, r := range rows {
			results[r.BoutID] = r
		}
	}

	for _, d := range details {
		view := BoutView{
			ID:             d.ID,
			FighterLeftID:  d.FighterLeftID,
			FighterRightID: d.FighterRightID,
			LeftName:       d.LeftName,
			RightName:      d.RightName,
			LeftRecord:     d.LeftTally.String(),
			RightRecord:    d.RightTally.String(),
		}
		if r, ok := results[d.ID]; ok {
			view.Result = &BoutResultView{
				WinnerID:   r.WinnerID,
				WinnerName: r.WinnerName,
				BetType:    r.BetTypeName,
				Round:      r.Round,
				Time:       r.Time,
				Details:    r.Details,
			}
		}
		detail.Bouts = append(detail.Bouts, view)
	}

	return detail, nil
}

// Update merges the supplied fields into the event. Changing the date recomputes the
// calendar date.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}

	if input.Name != nil {
		if err := domain.ValidateRequired("name", *input.Name); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		event.Name = strings.TrimSpace(*input.Name)
	}
	if input.Date != nil {
		event.Date = strings.TrimSpace(*input.Date)
		event.EventDate = parse.ParseEventDate(event.Date, s.now())
	}
	if input.Location != nil {
		event.Location = strings.TrimSpace(*input.Location)
	}

	updated, err := s.events.Update(ctx, s.pool, event)
	if err != nil {
		return nil, domain.ErrInternal("update event", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}
	return updated, nil
}

// Delete removes the event and its bouts in one transaction. Fighters are kept.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bouts.DeleteByEvent(ctx, tx, id); err != nil {
		return domain.ErrInternal("delete bouts", err)
	}
	deleted, err := s.events.Delete(ctx, tx, id)
	if err != nil {
		return domain.ErrInternal("delete event", err)
	}
	if !deleted {
		return domain.ErrNotFound("event", id.String())
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	s.logger.Info("event deleted", "event_id", id)
	return nil
}
