package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle state of a draft session.
type DraftStatus string

const (
	DraftStatusNotStarted DraftStatus = "NOT_STARTED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// DraftSession is one league's draft event: its order, pick budget and
// lifecycle flags. The current round and turn are never stored here; they
// are projections of the committed pick count over DraftOrder.
type DraftSession struct {
	ID             uuid.UUID   `json:"id"`
	LeagueID       uuid.UUID   `json:"league_id"`
	DraftOrder     []uuid.UUID `json:"draft_order"`
	PickLimit      int         `json:"pick_limit"`
	TimePerPickSec int         `json:"time_per_pick_sec"`
	Status         DraftStatus `json:"status"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Active reports whether picks may currently be committed.
func (s *DraftSession) Active() bool {
	return s.Status == DraftStatusInProgress
}

// Completed reports whether the session has drafted its full pick budget.
func (s *DraftSession) Completed() bool {
	return s.Status == DraftStatusCompleted
}

// TimePerPick returns the per-turn countdown duration.
func (s *DraftSession) TimePerPick() time.Duration {
	return time.Duration(s.TimePerPickSec) * time.Second
}
