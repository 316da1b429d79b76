package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/sequencer"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Pick commits a participant's selection. Guards, in order: session active;
// participant is actually up; player not already drafted. The pick history
// is re-read under the commit lock, never taken from a stale snapshot.
func (c *Coordinator) Pick(ctx context.Context, sessionID, participantID uuid.UUID, player models.PlayerSummary) (*models.Pick, error) {
	unlock := c.registry.Lock(sessionID)
	defer unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, draft.ErrNoActiveDraft
	}

	picks, err := c.store.ListPicks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	return c.commitPick(ctx, session, picks, participantID, player, false)
}

// expire is the timer-driven twin of Pick: same commit path, player chosen
// by the auto-pick selector, resulting pick flagged automatic. forPickCount
// pins the turn the countdown was armed for; if the session advanced by any
// other means the expiry is a no-op.
func (c *Coordinator) expire(sessionID uuid.UUID, forPickCount int) {
	ctx := context.Background()

	unlock := c.registry.Lock(sessionID)
	defer unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("expiry: load session failed")
		return
	}
	if !session.Active() {
		log.Debug().Str("session_id", sessionID.String()).Msg("expiry: session no longer active")
		return
	}

	picks, err := c.store.ListPicks(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("expiry: list picks failed")
		return
	}
	if len(picks) != forPickCount {
		log.Debug().
			Str("session_id", sessionID.String()).
			Int("armed_for", forPickCount).
			Int("picks_made", len(picks)).
			Msg("expiry: turn already advanced")
		return
	}

	available, err := c.pool.AvailablePlayers(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("expiry: player pool unavailable")
		return
	}
	player, err := c.selector.Select(available, picks)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("expiry: auto-pick selection failed")
		return
	}

	// The auto-pick write can fail; the timer stays disarmed and the next
	// state query or manual pick re-derives the correct turn.
	if _, err := c.commitPick(ctx, session, picks, uuid.Nil, player, true); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("expiry: auto-pick commit failed")
	}
}

// commitPick is the single commit path shared by human picks and expiry.
// Caller holds the session's commit lock.
func (c *Coordinator) commitPick(
	ctx context.Context,
	session *models.DraftSession,
	picks []models.Pick,
	participantID uuid.UUID,
	player models.PlayerSummary,
	auto bool,
) (*models.Pick, error) {
	turn, ok := sequencer.Current(session.DraftOrder, len(picks), session.PickLimit)
	if !ok {
		return nil, draft.ErrNoActiveDraft
	}
	if !auto && participantID != turn.Participant {
		return nil, &draft.NotYourTurnError{Acting: participantID, Current: turn.Participant}
	}
	for _, prior := range picks {
		if prior.Player.ID == player.ID {
			return nil, draft.ErrPlayerAlreadyDrafted
		}
	}

	pick := models.Pick{
		ID:            uuid.New(),
		SessionID:     session.ID,
		ParticipantID: turn.Participant,
		Player:        player,
		OverallPick:   len(picks) + 1,
		Round:         turn.Round,
		Slot:          turn.Slot,
		AutoPick:      auto,
		PickedAt:      c.clock.Now().UTC(),
	}
	complete := pick.OverallPick >= session.PickLimit

	stored, err := c.store.AppendPick(ctx, pick, complete)
	if err != nil {
		return nil, err
	}
	c.timers.Disarm(session.ID)

	log.Info().
		Str("session_id", session.ID.String()).
		Str("participant_id", stored.ParticipantID.String()).
		Str("player_id", stored.Player.ID).
		Int("overall_pick", stored.OverallPick).
		Bool("auto_pick", auto).
		Msg("pick committed")

	c.broadcast(session.ID, events.TypePlayerDrafted, events.PlayerDraftedPayload{
		ParticipantID: stored.ParticipantID.String(),
		Player:        stored.Player,
		Round:         stored.Round,
		Slot:          stored.Slot,
		OverallPick:   stored.OverallPick,
		AutoPick:      stored.AutoPick,
		PickedAt:      stored.PickedAt,
	})

	if complete {
		c.broadcast(session.ID, events.TypeDraftCompleted, events.DraftCompletedPayload{
			SessionID:   session.ID.String(),
			TotalPicks:  stored.OverallPick,
			CompletedAt: stored.PickedAt,
		})
		return stored, nil
	}

	next, ok := sequencer.Current(session.DraftOrder, stored.OverallPick, session.PickLimit)
	if ok {
		c.broadcastTurnChanged(session.ID, next, session.TimePerPickSec)
		c.armTurnTimer(session, stored.OverallPick)
	}
	return stored, nil
}

// armTurnTimer starts the countdown for the turn that follows picksMade
// committed picks. Broadcasts for the transition are already enqueued, so
// observers always see the turn before its clock starts.
func (c *Coordinator) armTurnTimer(session *models.DraftSession, picksMade int) {
	sessionID := session.ID
	total := session.TimePerPick()

	c.timers.Arm(sessionID, total,
		func(remaining, total time.Duration) {
			c.broadcast(sessionID, events.TypeTimerTick, events.TimerTickPayload{
				RemainingSec: int(remaining / time.Second),
				TotalSec:     int(total / time.Second),
			})
		},
		func() {
			c.expire(sessionID, picksMade)
		},
	)
}
