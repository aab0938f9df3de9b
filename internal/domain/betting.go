package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bet results written by reconciliation.
const (
	BetResultWon  = "won"
	BetResultLost = "lost"
)

// UserBet represents a user_bets row. (UserID, BoutID, BetTypeID) is unique.
// PredictedValue holds the id of the fighter the user picked.
type UserBet struct {
	UserID         uuid.UUID `json:"user_id"`
	BoutID         uuid.UUID `json:"bout_id"`
	BetTypeID      int       `json:"bet_type_id"`
	PredictedValue string    `json:"predicted_value"`
	Result         *string   `json:"result"`
	CreatedAt      time.Time `json:"created_at"`
}

// UnsettledBet is a bet without a result on a bout that has one.
type UnsettledBet struct {
	UserBet
	BetTypeName     string
	WinnerID        *uuid.UUID
	ResultBetTypeID *int
}

// SettleBet decides the outcome of a bet against its bout's result. ok is false when the
// result carries no winner and the bet cannot be settled yet.
func SettleBet(b UnsettledBet) (result string, ok bool) {
	if b.WinnerID == nil {
		return "", false
	}
	if b.PredictedValue != b.WinnerID.String() {
		return BetResultLost, true
	}
	if b.BetTypeName == BetTypeWinner {
		return BetResultWon, true
	}
	if b.ResultBetTypeID != nil && *b.ResultBetTypeID == b.BetTypeID {
		return BetResultWon, true
	}
	return BetResultLost, true
}
