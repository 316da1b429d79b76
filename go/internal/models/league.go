package models

import (
	"time"

	"github.com/google/uuid"
)

// LeagueMember is a league roster entry. The draft engine reads membership
// only to regenerate a session's draft order on reset.
type LeagueMember struct {
	LeagueID      uuid.UUID `json:"league_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	JoinedAt      time.Time `json:"joined_at"`
}
