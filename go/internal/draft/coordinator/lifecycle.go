package coordinator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/sequencer"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Start moves the session to in-progress from NotStarted or Paused, arms the
// turn timer and broadcasts start + turn-changed.
func (c *Coordinator) Start(ctx context.Context, sessionID uuid.UUID) error {
	unlock := c.registry.Lock(sessionID)
	defer unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	switch session.Status {
	case models.DraftStatusNotStarted, models.DraftStatusPaused:
	default:
		return draft.ErrNoActiveDraft
	}

	picks, err := c.store.ListPicks(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list picks: %w", err)
	}
	turn, ok := sequencer.Current(session.DraftOrder, len(picks), session.PickLimit)
	if !ok {
		return draft.ErrNoActiveDraft
	}

	session, err = c.store.UpdateStatus(ctx, sessionID, models.DraftStatusInProgress)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("current_participant", turn.Participant.String()).
		Int("picks_made", len(picks)).
		Msg("draft started")

	c.broadcast(sessionID, events.TypeDraftStarted, events.DraftStartedPayload{
		Order:              orderStrings(session.DraftOrder),
		CurrentParticipant: turn.Participant.String(),
		TimeLimitSec:       session.TimePerPickSec,
		StartedAt:          c.clock.Now().UTC(),
	})
	c.broadcastTurnChanged(sessionID, turn, session.TimePerPickSec)
	c.armTurnTimer(session, len(picks))
	return nil
}

// Pause stops the countdown without touching the turn projection.
func (c *Coordinator) Pause(ctx context.Context, sessionID uuid.UUID, by uuid.UUID) error {
	unlock := c.registry.Lock(sessionID)
	defer unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Active() {
		return draft.ErrNoActiveDraft
	}

	if _, err := c.store.UpdateStatus(ctx, sessionID, models.DraftStatusPaused); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	c.timers.Disarm(sessionID)

	log.Info().Str("session_id", sessionID.String()).Str("by", by.String()).Msg("draft paused")

	c.broadcast(sessionID, events.TypeDraftPaused, events.DraftPausedPayload{
		By:       by.String(),
		PausedAt: c.clock.Now().UTC(),
	})
	return nil
}

// Resume re-derives the current participant from the pick count, re-arms the
// timer and broadcasts resumed + turn-changed.
func (c *Coordinator) Resume(ctx context.Context, sessionID uuid.UUID, by uuid.UUID) error {
	unlock := c.registry.Lock(sessionID)
	defer unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.DraftStatusPaused {
		return draft.ErrNoActiveDraft
	}

	picks, err := c.store.ListPicks(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list picks: %w", err)
	}
	turn, ok := sequencer.Current(session.DraftOrder, len(picks), session.PickLimit)
	if !ok {
		return draft.ErrNoActiveDraft
	}

	session, err = c.store.UpdateStatus(ctx, sessionID, models.DraftStatusInProgress)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("by", by.String()).
		Str("current_participant", turn.Participant.String()).
		Msg("draft resumed")

	c.broadcast(sessionID, events.TypeDraftResumed, events.DraftResumedPayload{
		By:                 by.String(),
		CurrentParticipant: turn.Participant.String(),
		ResumedAt:          c.clock.Now().UTC(),
	})
	c.broadcastTurnChanged(sessionID, turn, session.TimePerPickSec)
	c.armTurnTimer(session, len(picks))
	return nil
}

// Reset clears all pick history, regenerates the draft order from current
// league membership and returns the session to NotStarted. Valid from any
// state.
func (c *Coordinator) Reset(ctx context.Context, sessionID uuid.UUID, by uuid.UUID) error {
	unlock := c.registry.Lock(sessionID)
	defer unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	order, err := c.leagues.Members(ctx, session.LeagueID)
	if err != nil {
		return fmt.Errorf("league members: %w", err)
	}
	if len(order) == 0 {
		return fmt.Errorf("league %s has no members", session.LeagueID)
	}

	if err := c.store.ResetSession(ctx, sessionID, order); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	c.timers.Disarm(sessionID)

	log.Info().
		Str("session_id", sessionID.String()).
		Str("by", by.String()).
		Int("participants", len(order)).
		Msg("draft reset")

	c.broadcast(sessionID, events.TypeDraftReset, events.DraftResetPayload{
		By:      by.String(),
		Order:   orderStrings(order),
		ResetAt: c.clock.Now().UTC(),
	})
	return nil
}

func (c *Coordinator) broadcastTurnChanged(sessionID uuid.UUID, turn sequencer.Turn, timeLimitSec int) {
	c.broadcast(sessionID, events.TypeTurnChanged, events.TurnChangedPayload{
		CurrentParticipant: turn.Participant.String(),
		Round:              turn.Round,
		Slot:               turn.Slot,
		TimeLimitSec:       timeLimitSec,
	})
}
