// Package draft holds the domain error taxonomy shared by the coordinator,
// store and gateway layers.
package draft

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound indicates the referenced draft session does not exist.
	ErrSessionNotFound = errors.New("draft session not found")

	// ErrNoActiveDraft indicates an operation that requires an in-progress
	// session was attempted against one that is not started, paused or done.
	ErrNoActiveDraft = errors.New("no active draft")

	// ErrPlayerAlreadyDrafted indicates the player id is already referenced
	// by a committed pick in the session.
	ErrPlayerAlreadyDrafted = errors.New("player already drafted")

	// ErrNoAvailablePlayers indicates the pick pool is empty.
	ErrNoAvailablePlayers = errors.New("no available players")

	// ErrInvalidConnection indicates a command arrived on a connection that
	// has not joined the session it is acting on.
	ErrInvalidConnection = errors.New("connection has not joined session")
)

// NotYourTurnError rejects a pick submitted out of turn. It carries both the
// acting participant and the participant who is actually up so the caller
// can resynchronize.
type NotYourTurnError struct {
	Acting  uuid.UUID
	Current uuid.UUID
}

func (e *NotYourTurnError) Error() string {
	return fmt.Sprintf("not your turn: participant %s acted, %s is up", e.Acting, e.Current)
}

// Wire codes surfaced to clients in pickError payloads.
const (
	CodeNotYourTurn          = "NOT_YOUR_TURN"
	CodePlayerAlreadyDrafted = "PLAYER_ALREADY_DRAFTED"
	CodeNoActiveDraft        = "NO_ACTIVE_DRAFT"
	CodeInvalidConnection    = "INVALID_CONNECTION"
	CodeNoAvailablePlayers   = "NO_AVAILABLE_PLAYERS"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeInternal             = "INTERNAL"
)

// ErrorCode maps a domain error to its wire code. Unexpected failures map to
// CodeInternal so internals are never leaked to clients.
func ErrorCode(err error) string {
	var nyt *NotYourTurnError
	switch {
	case errors.As(err, &nyt):
		return CodeNotYourTurn
	case errors.Is(err, ErrPlayerAlreadyDrafted):
		return CodePlayerAlreadyDrafted
	case errors.Is(err, ErrNoActiveDraft):
		return CodeNoActiveDraft
	case errors.Is(err, ErrInvalidConnection):
		return CodeInvalidConnection
	case errors.Is(err, ErrNoAvailablePlayers):
		return CodeNoAvailablePlayers
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	default:
		return CodeInternal
	}
}
