package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tally is a fighter's win/loss/draw record.
type Tally struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// String renders the tally as "W-L-D".
func (t Tally) String() string {
	return fmt.Sprintf("%d-%d-%d", t.Wins, t.Losses, t.Draws)
}

// Fighter represents a fighters row. Name is the natural key.
type Fighter struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Tally
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record returns the fighter's current tally as "W-L-D".
func (f *Fighter) Record() string {
	return f.Tally.String()
}
