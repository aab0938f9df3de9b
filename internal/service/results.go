package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/infra"
	"github.com/fightcard/platform/internal/parse"
	"github.com/fightcard/platform/internal/repository"
	"github.com/google/uuid"
)

// Ingest item statuses.
const (
	ItemRecorded = "recorded"
	ItemFailed   = "failed"
)

// ResultsService merges a results feed into events, bouts and fighters.
type ResultsService struct {
	pool     repository.TxBeginner
	events   *EventService
	registry *FighterRegistry
	bouts    repository.BoutRepository
	betTypes repository.BetTypeRepository
	results  repository.BoutResultRepository
	outbox   repository.OutboxRepository
	metrics  *infra.Metrics
	logger   *slog.Logger
}

// NewResultsService creates a ResultsService.
func NewResultsService(
	pool repository.TxBeginner,
	events *EventService,
	registry *FighterRegistry,
	bouts repository.BoutRepository,
	betTypes repository.BetTypeRepository,
	results repository.BoutResultRepository,
	outbox repository.OutboxRepository,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *ResultsService {
	return &ResultsService{
		pool:     pool,
		events:   events,
		registry: registry,
		bouts:    bouts,
		betTypes: betTypes,
		results:  results,
		outbox:   outbox,
		metrics:  metrics,
		logger:   logger,
	}
}

// ResultInput is one line of a results feed.
type ResultInput struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Result string `json:"result"`
}

// AddResultsInput holds a results feed for one event.
type AddResultsInput struct {
	Name        string        `json:"name"`
	Date        string        `json:"date"`
	Location    string        `json:"location"`
	BoutResults []ResultInput `json:"bout_results"`
}

// IngestItem reports what happened to one feed line.
type IngestItem struct {
	Winner string     `json:"winner"`
	Loser  string     `json:"loser"`
	BoutID *uuid.UUID `json:"bout_id,omitempty"`
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// IngestReport is the per-item outcome of a results feed. Failed items can be
// resubmitted on their own.
type IngestReport struct {
	EventID  uuid.UUID    `json:"event_id"`
	Success  bool         `json:"success"`
	Recorded int          `json:"recorded"`
	Failed   int          `json:"failed"`
	Items    []IngestItem `json:"items"`
}

// AddResults records every feed line independently. An error is returned only when the
// event itself cannot be found or created.
func (s *ResultsService) AddResults(ctx context.Context, input AddResultsInput) (*IngestReport, error) {
	if err := domain.ValidateRequired("name", input.Name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	event, err := s.events.FindOrCreate(ctx, input.Name, input.Date, input.Location)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{
		EventID: event.ID,
		Success: true,
		Items:   make([]IngestItem, 0, len(input.BoutResults)),
	}
	for _, in := range input.BoutResults {
		item := IngestItem{Winner: in.Winner, Loser: in.Loser}
		boutID, err := s.recordOne(ctx, event, in)
		if err != nil {
			item.Status = ItemFailed
			item.Error = errorMessage(err)
			report.Failed++
			s.logger.Warn("bout result not recorded",
				"event_id", event.ID, "winner", in.Winner, "loser", in.Loser, "error", err)
		} else {
			item.Status = ItemRecorded
			item.BoutID = &boutID
			report.Recorded++
		}
		s.metrics.RecordIngestion(item.Status)
		report.Items = append(report.Items, item)
	}

	s.logger.Info("results ingested",
		"event_id", event.ID, "recorded", report.Recorded, "failed", report.Failed)
	return report, nil
}

func (s *ResultsService) recordOne(ctx context.Context, event *domain.Event, in ResultInput) (uuid.UUID, error) {
	winnerName := parse.NormalizeName(in.Winner)
	loserName := parse.NormalizeName(parse.StripLoserSuffix(in.Loser))
	if winnerName == "" || loserName == "" {
		return uuid.Nil, domain.ErrValidation("winner and loser are required")
	}
	if winnerName == loserName {
		return uuid.Nil, domain.ErrValidation("winner and loser must differ")
	}

	winner, err := s.registry.Resolve(ctx, winnerName, "")
	if err != nil {
		return uuid.Nil, err
	}
	loser, err := s.registry.Resolve(ctx, loserName, "")
	if err != nil {
		return uuid.Nil, err
	}

	bout, err := s.bouts.FindOrCreate(ctx, s.pool, event.ID, winner.ID, loser.ID)
	if err != nil {
		return uuid.Nil, domain.ErrInternal("find or create bout", err)
	}

	class := parse.ClassifyResult(in.Result)
	betType, err := s.betTypes.FindOrCreate(ctx, s.pool, class.BetType)
	if err != nil {
		return uuid.Nil, domain.ErrInternal("find or create bet type", err)
	}

	result := &domain.BoutResult{
		BoutID:    bout.ID,
		WinnerID:  &winner.ID,
		BetTypeID: &betType.ID,
		Round:     class.Round,
		Time:      class.Time,
		Details:   strings.TrimSpace(in.Result),
	}
	draft := domain.NewBoutResultRecordedEvent(domain.BoutResultRecordedPayload{
		EventID:   event.ID,
		EventName: event.Name,
		BoutID:    bout.ID,
		WinnerID:  result.WinnerID,
		BetType:   betType.Name,
		Round:     result.Round,
		Time:      result.Time,
		Details:   result.Details,
	})

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.results.Insert(ctx, tx, result); err != nil {
		if repository.IsUniqueViolation(err) {
			return uuid.Nil, domain.ErrConflict("result already recorded for bout " + bout.ID.String())
		}
		return uuid.Nil, domain.ErrInternal("insert bout result", err)
	}
	if err := s.outbox.Insert(ctx, tx, draft); err != nil {
		return uuid.Nil, domain.ErrInternal("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, domain.ErrInternal("commit tx", err)
	}
	return bout.ID, nil
}

// errorMessage returns the client-facing message of err. Internal causes are not exposed.
func errorMessage(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		return appErr.Message
	}
	return "internal error"
}
