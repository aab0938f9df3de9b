package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents an events row. Date is the free-text display form; EventDate is
// the calendar date derived from it, nil when Date could not be parsed.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Date      string     `json:"date"`
	Location  string     `json:"location"`
	EventDate *time.Time `json:"event_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ConcludedAt reports whether the event took place strictly before the day containing now.
func (e *Event) ConcludedAt(now time.Time) bool {
	if e.EventDate == nil {
		return false
	}
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	d := e.EventDate.UTC()
	eventDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return eventDay.Before(startOfDay)
}

// Bout represents a bouts row. Left and right are display positions only.
type Bout struct {
	ID             uuid.UUID `json:"id"`
	EventID        uuid.UUID `json:"event_id"`
	FighterLeftID  uuid.UUID `json:"fighter_left_id"`
	FighterRightID uuid.UUID `json:"fighter_right_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasFighter reports whether id is one of the bout's two fighters.
func (b *Bout) HasFighter(id uuid.UUID) bool {
	return b.FighterLeftID == id || b.FighterRightID == id
}

// BoutDetail is a bout joined with both fighter identities and current tallies.
type BoutDetail struct {
	Bout
	LeftName   string `json:"left_name"`
	LeftTally  Tally  `json:"-"`
	RightName  string `json:"right_name"`
	RightTally Tally  `json:"-"`
}

// BetType is a category of outcome classification, e.g. "KO/TKO".
type BetType struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// BetTypeWinner is the seeded bet type that settles on the winner alone.
const BetTypeWinner = "Winner"

// BoutResult represents a bout_results row.
type BoutResult struct {
	BoutID    uuid.UUID  `json:"bout_id"`
	WinnerID  *uuid.UUID `json:"winner_id"`
	BetTypeID *int       `json:"bet_type_id"`
	Round     int        `json:"round"`
	Time      string     `json:"time"`
	Details   string     `json:"details"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BoutResultDetail is a bout result joined with winner name and bet type name.
type BoutResultDetail struct {
	BoutResult
	WinnerName  string
	BetTypeName string
}
