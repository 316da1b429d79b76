package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Client command actions.
const (
	ActionJoinSession     = "joinSession"
	ActionLeaveSession    = "leaveSession"
	ActionGetCurrentState = "getCurrentState"
	ActionStartDraft      = "startDraft"
	ActionMakePick        = "makePick"
	ActionPauseDraft      = "pauseDraft"
	ActionResumeDraft     = "resumeDraft"
	ActionResetDraft      = "resetDraft"
)

// Command is the envelope every client message arrives in.
type Command struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type joinSessionData struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
}

type sessionData struct {
	SessionID string `json:"sessionId"`
}

type makePickData struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	Position      string `json:"position"`
	Team          string `json:"team"`
	SubLeague     string `json:"subLeague"`
}

func parseCommand(raw []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	if cmd.Action == "" {
		return nil, fmt.Errorf("command has no action")
	}
	return &cmd, nil
}

func parseData[T any](cmd *Command) (*T, error) {
	var data T
	if err := json.Unmarshal(cmd.Data, &data); err != nil {
		return nil, fmt.Errorf("parse %s data: %w", cmd.Action, err)
	}
	return &data, nil
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return id, nil
}
