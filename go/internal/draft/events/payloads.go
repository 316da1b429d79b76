package events

import (
	"time"

	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// OnlineParticipant is one entry of the online list.
type OnlineParticipant struct {
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	ConnectedAt   time.Time `json:"connected_at"`
}

// ParticipantOnlinePayload announces a participant joining the session.
type ParticipantOnlinePayload struct {
	ParticipantID string    `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	ConnectedAt   time.Time `json:"connected_at"`
}

// ParticipantOfflinePayload announces a participant leaving the session.
type ParticipantOfflinePayload struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

// OnlineListPayload is the reply to joinSession and the periodic roster sync.
type OnlineListPayload struct {
	Participants []OnlineParticipant `json:"participants"`
}

// DraftStartedPayload announces the draft going live.
type DraftStartedPayload struct {
	Order              []string  `json:"order"`
	CurrentParticipant string    `json:"current_participant"`
	TimeLimitSec       int       `json:"time_limit_sec"`
	StartedAt          time.Time `json:"started_at"`
}

// TurnChangedPayload announces the next turn.
type TurnChangedPayload struct {
	CurrentParticipant string `json:"current_participant"`
	Round              int    `json:"round"`
	Slot               int    `json:"slot"`
	TimeLimitSec       int    `json:"time_limit_sec"`
}

// TimerTickPayload carries the server countdown once per second.
type TimerTickPayload struct {
	RemainingSec int `json:"remaining_sec"`
	TotalSec     int `json:"total_sec"`
}

// PlayerDraftedPayload announces a committed pick.
type PlayerDraftedPayload struct {
	ParticipantID string               `json:"participant_id"`
	Player        models.PlayerSummary `json:"player"`
	Round         int                  `json:"round"`
	Slot          int                  `json:"slot"`
	OverallPick   int                  `json:"overall_pick"`
	AutoPick      bool                 `json:"auto_pick"`
	PickedAt      time.Time            `json:"picked_at"`
}

// DraftCompletedPayload announces the final pick has been committed.
type DraftCompletedPayload struct {
	SessionID   string    `json:"session_id"`
	TotalPicks  int       `json:"total_picks"`
	CompletedAt time.Time `json:"completed_at"`
}

// DraftPausedPayload announces a pause.
type DraftPausedPayload struct {
	By       string    `json:"by"`
	PausedAt time.Time `json:"paused_at"`
}

// DraftResumedPayload announces a resume with the re-derived current turn.
type DraftResumedPayload struct {
	By                 string    `json:"by"`
	CurrentParticipant string    `json:"current_participant"`
	ResumedAt          time.Time `json:"resumed_at"`
}

// DraftResetPayload announces a reset and the regenerated order.
type DraftResetPayload struct {
	By      string    `json:"by"`
	Order   []string  `json:"order"`
	ResetAt time.Time `json:"reset_at"`
}

// CurrentStatePayload is the reply to getCurrentState.
type CurrentStatePayload struct {
	SessionID          string   `json:"session_id"`
	Status             string   `json:"status"`
	Order              []string `json:"order"`
	CurrentParticipant string   `json:"current_participant,omitempty"`
	Round              int      `json:"round,omitempty"`
	Slot               int      `json:"slot,omitempty"`
	PickCount          int      `json:"pick_count"`
	PickLimit          int      `json:"pick_limit"`
	TimeRemainingSec   int      `json:"time_remaining_sec"`
	TimeLimitSec       int      `json:"time_limit_sec"`
}

// PickErrorPayload is sent only to the connection whose action failed.
type PickErrorPayload struct {
	Code               string `json:"code"`
	Message            string `json:"message"`
	CurrentParticipant string `json:"current_participant,omitempty"`
}
