package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AggregateType names the entity an outbox event belongs to.
type AggregateType string

// EventType names what happened to the aggregate.
type EventType string

const (
	AggregateBoutResult AggregateType = "bout_result"

	EventBoutResultRecorded EventType = "recorded"
)

// OutboxDraft is an event written to event_outbox in the same transaction as its change.
type OutboxDraft struct {
	ID            int64           `json:"-"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// BoutResultRecordedPayload is the payload of a bout_result.recorded event.
type BoutResultRecordedPayload struct {
	EventID   uuid.UUID  `json:"event_id"`
	EventName string     `json:"event_name"`
	BoutID    uuid.UUID  `json:"bout_id"`
	WinnerID  *uuid.UUID `json:"winner_id"`
	BetType   string     `json:"bet_type"`
	Round     int        `json:"round"`
	Time      string     `json:"time"`
	Details   string     `json:"details"`
}

// NewBoutResultRecordedEvent builds the outbox draft announcing a recorded bout result.
func NewBoutResultRecordedEvent(p BoutResultRecordedPayload) OutboxDraft {
	payload, _ := json.Marshal(p)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBoutResult,
		AggregateID:   p.BoutID.String(),
		EventType:     EventBoutResultRecorded,
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// Topic returns the broker topic for the event under the given prefix.
func (d OutboxDraft) Topic(prefix string) string {
	return prefix + "." + string(d.AggregateType) + "." + string(d.EventType)
}
