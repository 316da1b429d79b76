// Package events defines the draft event envelope and payloads broadcast to
// session observers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies a draft event.
type Type string

const (
	TypeParticipantOnline  Type = "ParticipantOnline"
	TypeParticipantOffline Type = "ParticipantOffline"
	TypeOnlineList         Type = "OnlineList"
	TypeDraftStarted       Type = "DraftStarted"
	TypeTurnChanged        Type = "TurnChanged"
	TypeTimerTick          Type = "TimerTick"
	TypePlayerDrafted      Type = "PlayerDrafted"
	TypeDraftCompleted     Type = "DraftCompleted"
	TypeDraftPaused        Type = "DraftPaused"
	TypeDraftResumed       Type = "DraftResumed"
	TypeDraftReset         Type = "DraftReset"
	TypeCurrentState       Type = "CurrentState"
	TypePickError          Type = "PickError"
)

// Event is the envelope every observer receives.
type Event struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New builds an event envelope around the marshalled payload, stamped with
// the caller's clock so envelope times stay consistent with the rest of the
// transition they describe.
func New(sessionID uuid.UUID, t Type, payload any, at time.Time) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      t,
		Timestamp: at.UTC(),
		Data:      data,
	}, nil
}

// Broadcaster fans an event out to a session's observers. Broadcast is
// at-most-once: failures are logged by implementations, never retried, and
// never roll back committed state.
type Broadcaster interface {
	Broadcast(sessionID uuid.UUID, event *Event)
}

// MultiBroadcaster forwards each event to every broadcaster in order.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) Broadcast(sessionID uuid.UUID, event *Event) {
	for _, b := range m {
		b.Broadcast(sessionID, event)
	}
}
