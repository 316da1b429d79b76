package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick is a single committed selection in a draft session. Picks are
// immutable and append-only; OverallPick numbers are dense from 1 with no
// gaps or duplicates per session, and a player id appears at most once.
type Pick struct {
	ID            uuid.UUID     `json:"id"`
	SessionID     uuid.UUID     `json:"session_id"`
	ParticipantID uuid.UUID     `json:"participant_id"`
	Player        PlayerSummary `json:"player"`
	OverallPick   int           `json:"overall_pick"` // 1-based across the session
	Round         int           `json:"round"`        // 1-based
	Slot          int           `json:"slot"`         // 1-based pick number within the round
	AutoPick      bool          `json:"auto_pick"`
	PickedAt      time.Time     `json:"picked_at"`
}
