package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fightcard/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedBout creates "UFC 316" with A vs B and returns the bout view.
func seedBout(t *testing.T, h *harness) BoutView {
	t.Helper()
	detail, err := h.events.Create(context.Background(), ufc316(BoutInput{
		FighterLeft: "A", LeftRecord: "19-4", FighterRight: "B", RightRecord: "18-2",
	}))
	require.NoError(t, err)
	require.Len(t, detail.Bouts, 1)
	return detail.Bouts[0]
}

func TestBettingService_PlaceBetOverwrites(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)
	userID := uuid.New()

	_, err := h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()})
	require.NoError(t, err)
	bet, err := h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterRightID.String()})
	require.NoError(t, err)

	assert.Equal(t, bout.FighterRightID.String(), bet.PredictedValue)

	bets, err := h.betting.ListForBout(ctx, bout.ID)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, bout.FighterRightID.String(), bets[0].PredictedValue)
}

func TestBettingService_PlaceBetValidation(t *testing.T) {
	h := newHarness()
	bout := seedBout(t, h)
	userID := uuid.New()

	tests := []struct {
		name       string
		input      PlaceBetInput
		wantStatus int
	}{
		{"missing bout", PlaceBetInput{BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()}, 400},
		{"missing bet type", PlaceBetInput{BoutID: bout.ID, PredictedValue: bout.FighterLeftID.String()}, 400},
		{"prediction not an id", PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: "A by KO"}, 400},
		{"fighter not on the bout", PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: uuid.NewString()}, 400},
		{"unknown bout", PlaceBetInput{BoutID: uuid.New(), BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()}, 404},
		{"unknown bet type", PlaceBetInput{BoutID: bout.ID, BetTypeID: 99, PredictedValue: bout.FighterLeftID.String()}, 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.betting.PlaceBet(context.Background(), userID, tt.input)
			requireStatus(t, err, tt.wantStatus)
		})
	}
}

func TestBettingService_ListForUserNewestFirst(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)
	userID := uuid.New()

	ko, err := h.betTypes.Create(ctx, CreateBetTypeInput{Name: "KO/TKO"})
	require.NoError(t, err)

	_, err = h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()})
	require.NoError(t, err)
	_, err = h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: ko.ID, PredictedValue: bout.FighterLeftID.String()})
	require.NoError(t, err)
	_, err = h.betting.PlaceBet(ctx, uuid.New(), PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterRightID.String()})
	require.NoError(t, err)

	bets, err := h.betting.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, ko.ID, bets[0].BetTypeID)
	assert.Equal(t, 1, bets[1].BetTypeID)
}

func TestBettingService_RecordOutcome(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)
	userID := uuid.New()

	_, err := h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()})
	require.NoError(t, err)

	require.NoError(t, h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: userID, BoutID: bout.ID, BetTypeID: 1, Result: "void"}))
	bet := h.store.bet(userID, bout.ID, 1)
	require.NotNil(t, bet.Result)
	assert.Equal(t, "void", *bet.Result)

	err = h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: uuid.New(), BoutID: bout.ID, BetTypeID: 1, Result: "void"})
	requireStatus(t, err, 404)

	err = h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: uuid.New(), BoutID: bout.ID, BetTypeID: 1, Result: domain.BetResultWon})
	requireStatus(t, err, 404)

	err = h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: userID, BoutID: bout.ID, BetTypeID: 1, Result: " "})
	requireStatus(t, err, 400)
}

func TestBettingService_RecordOutcomeMustAgreeWithResult(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)
	backer, doubter := uuid.New(), uuid.New()

	_, err := h.betting.PlaceBet(ctx, backer, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()})
	require.NoError(t, err)
	_, err = h.betting.PlaceBet(ctx, doubter, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterRightID.String()})
	require.NoError(t, err)

	// nothing to agree with before the result is in
	err = h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: doubter, BoutID: bout.ID, BetTypeID: 1, Result: domain.BetResultWon})
	requireStatus(t, err, 409)
	assert.Nil(t, h.store.bet(doubter, bout.ID, 1).Result)

	_, err = h.results.AddResults(ctx, AddResultsInput{
		Name:        "UFC 316",
		BoutResults: []ResultInput{{Winner: "A", Loser: "B", Result: "KO/TKO 0:51 R2"}},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		user   uuid.UUID
		result string
		status int
	}{
		{"loser claims a win", doubter, domain.BetResultWon, 409},
		{"winner claims a loss", backer, domain.BetResultLost, 409},
		{"loser recorded as lost", doubter, domain.BetResultLost, 0},
		{"winner recorded as won", backer, domain.BetResultWon, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: tt.user, BoutID: bout.ID, BetTypeID: 1, Result: tt.result})
			if tt.status != 0 {
				requireStatus(t, err, tt.status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.result, *h.store.bet(tt.user, bout.ID, 1).Result)
		})
	}
}

func TestBettingService_Reconcile(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)

	ko, err := h.betTypes.Create(ctx, CreateBetTypeInput{Name: "KO/TKO"})
	require.NoError(t, err)
	dec, err := h.betTypes.Create(ctx, CreateBetTypeInput{Name: "Decision"})
	require.NoError(t, err)

	winnerPick := bout.FighterLeftID.String()
	loserPick := bout.FighterRightID.String()

	type placed struct {
		user      uuid.UUID
		betTypeID int
		pick      string
		want      string
	}
	bets := []placed{
		{uuid.New(), 1, winnerPick, domain.BetResultWon},
		{uuid.New(), 1, loserPick, domain.BetResultLost},
		{uuid.New(), ko.ID, winnerPick, domain.BetResultWon},
		{uuid.New(), dec.ID, winnerPick, domain.BetResultLost},
		{uuid.New(), ko.ID, loserPick, domain.BetResultLost},
	}
	for _, b := range bets {
		_, err := h.betting.PlaceBet(ctx, b.user, PlaceBetInput{BoutID: bout.ID, BetTypeID: b.betTypeID, PredictedValue: b.pick})
		require.NoError(t, err)
	}

	summary, err := h.betting.ReconcileBout(ctx, bout.ID)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{}, *summary, "no result yet")

	_, err = h.results.AddResults(ctx, AddResultsInput{
		Name:        "UFC 316",
		BoutResults: []ResultInput{{Winner: "A", Loser: "B", Result: "KO/TKO, 0:51 R2"}},
	})
	require.NoError(t, err)

	summary, err = h.betting.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{Won: 2, Lost: 3}, *summary)

	for _, b := range bets {
		got := h.store.bet(b.user, bout.ID, b.betTypeID)
		require.NotNil(t, got.Result)
		assert.Equal(t, b.want, *got.Result)
	}

	summary, err = h.betting.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileSummary{}, *summary, "settled bets are not revisited")
}

func TestBettingService_ReconcileKeepsManualResults(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)
	userID := uuid.New()

	_, err := h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterRightID.String()})
	require.NoError(t, err)
	require.NoError(t, h.betting.RecordOutcome(ctx, RecordOutcomeInput{UserID: userID, BoutID: bout.ID, BetTypeID: 1, Result: "void"}))

	_, err = h.results.AddResults(ctx, AddResultsInput{
		Name:        "UFC 316",
		BoutResults: []ResultInput{{Winner: "A", Loser: "B", Result: "Unanimous Dec"}},
	})
	require.NoError(t, err)

	_, err = h.betting.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "void", *h.store.bet(userID, bout.ID, 1).Result)
}

func TestBettingService_HandleResultRecorded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	bout := seedBout(t, h)
	userID := uuid.New()

	_, err := h.betting.PlaceBet(ctx, userID, PlaceBetInput{BoutID: bout.ID, BetTypeID: 1, PredictedValue: bout.FighterLeftID.String()})
	require.NoError(t, err)

	_, err = h.results.AddResults(ctx, AddResultsInput{
		Name:        "UFC 316",
		BoutResults: []ResultInput{{Winner: "A", Loser: "B", Result: "Submission, 3:12 R1"}},
	})
	require.NoError(t, err)
	require.Len(t, h.store.outbox, 1)

	message, err := json.Marshal(h.store.outbox[0])
	require.NoError(t, err)
	require.NoError(t, h.betting.HandleResultRecorded(ctx, message))

	bet := h.store.bet(userID, bout.ID, 1)
	require.NotNil(t, bet.Result)
	assert.Equal(t, domain.BetResultWon, *bet.Result)
}

func TestBettingService_HandleResultRecordedIgnoresOtherEvents(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.betting.HandleResultRecorded(context.Background(),
		[]byte(`{"aggregate_type":"event","event_type":"deleted","payload":{}}`)))

	err := h.betting.HandleResultRecorded(context.Background(), []byte(`not json`))
	require.Error(t, err)
}

func TestBetTypeService(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	bt, err := h.betTypes.Create(ctx, CreateBetTypeInput{Name: " Submission ", Description: "Wins by tap or choke"})
	require.NoError(t, err)
	assert.Equal(t, "Submission", bt.Name)

	_, err = h.betTypes.Create(ctx, CreateBetTypeInput{Name: "Submission"})
	requireStatus(t, err, 409)

	_, err = h.betTypes.Create(ctx, CreateBetTypeInput{Name: ""})
	requireStatus(t, err, 400)

	got, err := h.betTypes.Get(ctx, bt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wins by tap or choke", got.Description)

	_, err = h.betTypes.Get(ctx, 404)
	requireStatus(t, err, 404)
}
