package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/infra"
	"github.com/fightcard/platform/internal/repository"
	"github.com/google/uuid"
)

// reconcileBatchSize caps how many bets one reconciliation pass settles.
const reconcileBatchSize = 500

// BettingService records user predictions on bouts and settles them against results.
type BettingService struct {
	db       repository.DBTX
	bouts    repository.BoutRepository
	betTypes repository.BetTypeRepository
	bets     repository.UserBetRepository
	metrics  *infra.Metrics
	logger   *slog.Logger
}

// NewBettingService creates a BettingService.
func NewBettingService(
	db repository.DBTX,
	bouts repository.BoutRepository,
	betTypes repository.BetTypeRepository,
	bets repository.UserBetRepository,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *BettingService {
	return &BettingService{db: db, bouts: bouts, betTypes: betTypes, bets: bets, metrics: metrics, logger: logger}
}

// PlaceBetInput holds the bet placement request. PredictedValue is the id of the
// fighter the user picks.
type PlaceBetInput struct {
	BoutID         uuid.UUID `json:"bout_id"`
	BetTypeID      int       `json:"bet_type_id"`
	PredictedValue string    `json:"predicted_value"`
}

// RecordOutcomeInput sets the result of an existing bet.
type RecordOutcomeInput struct {
	UserID    uuid.UUID `json:"user_id"`
	BoutID    uuid.UUID `json:"bout_id"`
	BetTypeID int       `json:"bet_type_id"`
	Result    string    `json:"result"`
}

// ReconcileSummary counts bets settled by one reconciliation pass.
type ReconcileSummary struct {
	Won     int `json:"won"`
	Lost    int `json:"lost"`
	Skipped int `json:"skipped"`
}

// PlaceBet stores the user's prediction, replacing any earlier prediction on the same
// bout and bet type.
func (s *BettingService) PlaceBet(ctx context.Context, userID uuid.UUID, input PlaceBetInput) (*domain.UserBet, error) {
	if input.BoutID == uuid.Nil {
		return nil, domain.ErrValidation("bout_id is required")
	}
	if input.BetTypeID <= 0 {
		return nil, domain.ErrValidation("bet_type_id is required")
	}
	picked, err := uuid.Parse(strings.TrimSpace(input.PredictedValue))
	if err != nil {
		return nil, domain.ErrValidation("predicted_value must be a fighter id")
	}

	bout, err := s.bouts.FindByID(ctx, s.db, input.BoutID)
	if err != nil {
		return nil, domain.ErrInternal("find bout", err)
	}
	if bout == nil {
		return nil, domain.ErrNotFound("bout", input.BoutID.String())
	}
	if !bout.HasFighter(picked) {
		return nil, domain.ErrValidation("predicted_value must be one of the bout's fighters")
	}

	betType, err := s.betTypes.FindByID(ctx, s.db, input.BetTypeID)
	if err != nil {
		return nil, domain.ErrInternal("find bet type", err)
	}
	if betType == nil {
		return nil, domain.ErrNotFound("bet type", strconv.Itoa(input.BetTypeID))
	}

	bet, err := s.bets.Upsert(ctx, s.db, &domain.UserBet{
		UserID:         userID,
		BoutID:         bout.ID,
		BetTypeID:      betType.ID,
		PredictedValue: picked.String(),
	})
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, domain.ErrNotFound("user", userID.String())
		}
		return nil, domain.ErrInternal("place bet", err)
	}

	s.metrics.RecordBetPlaced()
	s.logger.Info("bet placed", "user_id", userID, "bout_id", bout.ID, "bet_type", betType.Name)
	return bet, nil
}

// ListForUser returns the user's bets, newest first.
func (s *BettingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.UserBet, error) {
	bets, err := s.bets.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, domain.ErrInternal("list user bets", err)
	}
	return bets, nil
}

// ListForBout returns all bets on a bout, newest first.
func (s *BettingService) ListForBout(ctx context.Context, boutID uuid.UUID) ([]domain.UserBet, error) {
	bets, err := s.bets.ListByBout(ctx, s.db, boutID)
	if err != nil {
		return nil, domain.ErrInternal("list bout bets", err)
	}
	return bets, nil
}

// RecordOutcome sets the result of a bet that was placed earlier. "won" and "lost" are
// only accepted when they agree with the bout's recorded outcome; other values such as
// "void" are annotations and are stored as given.
func (s *BettingService) RecordOutcome(ctx context.Context, input RecordOutcomeInput) error {
	result := strings.TrimSpace(input.Result)
	if err := domain.ValidateRequired("result", result); err != nil {
		return domain.ErrValidation(err.Error())
	}
	betKey := input.UserID.String() + "/" + input.BoutID.String() + "/" + strconv.Itoa(input.BetTypeID)

	if result == domain.BetResultWon || result == domain.BetResultLost {
		bet, err := s.bets.FindSettlement(ctx, s.db, input.UserID, input.BoutID, input.BetTypeID)
		if err != nil {
			return domain.ErrInternal("load bet", err)
		}
		if bet == nil {
			return domain.ErrNotFound("bet", betKey)
		}
		want, ok := domain.SettleBet(*bet)
		if !ok {
			return domain.ErrConflict("bout has no recorded winner yet")
		}
		if result != want {
			return domain.ErrConflict(fmt.Sprintf("bout outcome settles this bet as %q", want))
		}
	}

	found, err := s.bets.SetResult(ctx, s.db, input.UserID, input.BoutID, input.BetTypeID, result)
	if err != nil {
		return domain.ErrInternal("record bet outcome", err)
	}
	if !found {
		return domain.ErrNotFound("bet", betKey)
	}
	return nil
}

// ReconcileBout settles the open bets on one bout.
func (s *BettingService) ReconcileBout(ctx context.Context, boutID uuid.UUID) (*ReconcileSummary, error) {
	return s.reconcile(ctx, &boutID)
}

// ReconcilePending settles open bets on every bout that has a result.
func (s *BettingService) ReconcilePending(ctx context.Context) (*ReconcileSummary, error) {
	return s.reconcile(ctx, nil)
}

// HandleResultRecorded settles the bout named by a relayed bout_result.recorded event.
// Other event types are ignored.
func (s *BettingService) HandleResultRecorded(ctx context.Context, message []byte) error {
	var envelope domain.OutboxDraft
	if err := json.Unmarshal(message, &envelope); err != nil {
		return fmt.Errorf("decode outbox envelope: %w", err)
	}
	if envelope.AggregateType != domain.AggregateBoutResult || envelope.EventType != domain.EventBoutResultRecorded {
		return nil
	}

	var payload domain.BoutResultRecordedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("decode bout result payload: %w", err)
	}

	summary, err := s.ReconcileBout(ctx, payload.BoutID)
	if err != nil {
		return err
	}
	s.logger.Debug("bout settled from event", "bout_id", payload.BoutID, "event_id", envelope.EventID,
		"won", summary.Won, "lost", summary.Lost)
	return nil
}

func (s *BettingService) reconcile(ctx context.Context, boutID *uuid.UUID) (*ReconcileSummary, error) {
	pending, err := s.bets.ListUnsettled(ctx, s.db, boutID, reconcileBatchSize)
	if err != nil {
		return nil, domain.ErrInternal("list unsettled bets", err)
	}

	summary := &ReconcileSummary{}
	for _, bet := range pending {
		result, ok := domain.SettleBet(bet)
		if !ok {
			summary.Skipped++
			continue
		}
		settled, err := s.bets.Settle(ctx, s.db, bet.UserID, bet.BoutID, bet.BetTypeID, result)
		if err != nil {
			return summary, domain.ErrInternal("settle bet", err)
		}
		if !settled {
			summary.Skipped++
			continue
		}
		if result == domain.BetResultWon {
			summary.Won++
		} else {
			summary.Lost++
		}
		s.metrics.RecordBetSettled(result)
	}

	if summary.Won+summary.Lost > 0 {
		s.logger.Info("bets reconciled", "won", summary.Won, "lost", summary.Lost, "skipped", summary.Skipped)
	}
	return summary, nil
}
