// Package coordinator orchestrates draft sessions: it validates caller
// actions against the store and turn sequencer, commits picks, drives the
// countdown timers and broadcasts events to session observers.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/autopick"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/registry"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/sequencer"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/timer"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Store is the durable source of truth for sessions and pick history.
type Store interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus) (*models.DraftSession, error)
	ListPicks(ctx context.Context, sessionID uuid.UUID) ([]models.Pick, error)

	// AppendPick commits the pick and, when complete is set, the session's
	// completed status in one atomic unit. A duplicate player id yields
	// draft.ErrPlayerAlreadyDrafted.
	AppendPick(ctx context.Context, pick models.Pick, complete bool) (*models.Pick, error)

	// ResetSession deletes all picks and restores the session to
	// NOT_STARTED with the given order, atomically.
	ResetSession(ctx context.Context, id uuid.UUID, order []uuid.UUID) error
}

// LeagueService supplies current league membership for order regeneration
// and roster display names.
type LeagueService interface {
	Members(ctx context.Context, leagueID uuid.UUID) ([]uuid.UUID, error)
	MemberDetails(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error)
}

// PlayerPool exposes the draftable players not yet claimed in a session.
type PlayerPool interface {
	AvailablePlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerSummary, error)
}

// Coordinator owns the single authoritative commit path per session.
type Coordinator struct {
	store       Store
	leagues     LeagueService
	pool        PlayerPool
	selector    autopick.Strategy
	timers      *timer.Manager
	registry    *registry.Registry
	broadcaster events.Broadcaster
	clock       clockwork.Clock
}

func New(
	store Store,
	leagues LeagueService,
	pool PlayerPool,
	selector autopick.Strategy,
	timers *timer.Manager,
	reg *registry.Registry,
	broadcaster events.Broadcaster,
	clock clockwork.Clock,
) *Coordinator {
	return &Coordinator{
		store:       store,
		leagues:     leagues,
		pool:        pool,
		selector:    selector,
		timers:      timers,
		registry:    reg,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// Join registers a participant connection and announces it. The returned
// roster is the caller's onlineList reply.
func (c *Coordinator) Join(ctx context.Context, conn registry.Connection) ([]registry.Connection, error) {
	session, err := c.store.GetSession(ctx, conn.SessionID)
	if err != nil {
		return nil, err
	}

	// Fall back to the league roster's display name when the client did not
	// send one.
	if conn.DisplayName == "" {
		members, err := c.leagues.MemberDetails(ctx, session.LeagueID)
		if err != nil {
			log.Warn().Err(err).
				Str("league_id", session.LeagueID.String()).
				Msg("could not load member details")
		}
		for _, m := range members {
			if m.ParticipantID == conn.ParticipantID {
				conn.DisplayName = m.DisplayName
				break
			}
		}
	}

	c.registry.AddConnection(conn)
	c.broadcast(conn.SessionID, events.TypeParticipantOnline, events.ParticipantOnlinePayload{
		ParticipantID: conn.ParticipantID.String(),
		DisplayName:   conn.DisplayName,
		ConnectedAt:   conn.ConnectedAt,
	})

	return c.registry.Online(conn.SessionID), nil
}

// Leave removes a connection and announces the departure if it was known.
func (c *Coordinator) Leave(ctx context.Context, sessionID uuid.UUID, connID string) {
	conn, ok := c.registry.RemoveConnection(sessionID, connID)
	if !ok {
		return
	}
	c.broadcast(sessionID, events.TypeParticipantOffline, events.ParticipantOfflinePayload{
		ParticipantID: conn.ParticipantID.String(),
		DisplayName:   conn.DisplayName,
	})
}

// Online returns the session's connected participants.
func (c *Coordinator) Online(sessionID uuid.UUID) []registry.Connection {
	return c.registry.Online(sessionID)
}

// State returns the session snapshot with all derived fields recomputed from
// the authoritative pick count. If the session is active and no countdown is
// running (e.g. after a process restart) the turn timer is re-armed.
func (c *Coordinator) State(ctx context.Context, sessionID uuid.UUID) (*events.CurrentStatePayload, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	picks, err := c.store.ListPicks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	state := &events.CurrentStatePayload{
		SessionID:    session.ID.String(),
		Status:       string(session.Status),
		Order:        orderStrings(session.DraftOrder),
		PickCount:    len(picks),
		PickLimit:    session.PickLimit,
		TimeLimitSec: session.TimePerPickSec,
	}

	turn, ok := sequencer.Current(session.DraftOrder, len(picks), session.PickLimit)
	if ok {
		state.CurrentParticipant = turn.Participant.String()
		state.Round = turn.Round
		state.Slot = turn.Slot
	}

	remaining, armed := c.timers.Remaining(sessionID)
	if !armed && session.Active() && ok {
		// Timer state was lost (restart or failed expiry write); recover by
		// restarting the countdown for the re-derived turn.
		c.rearmIdleTimer(ctx, sessionID)
		remaining, armed = c.timers.Remaining(sessionID)
	}
	if armed {
		state.TimeRemainingSec = int(remaining / time.Second)
	}

	return state, nil
}

// rearmIdleTimer restarts the countdown for the session's current turn if
// none is running. It re-reads everything under the commit lock so a state
// query racing a pick never replaces the freshly armed timer with one pinned
// to a stale pick count.
func (c *Coordinator) rearmIdleTimer(ctx context.Context, sessionID uuid.UUID) {
	unlock := c.registry.Lock(sessionID)
	defer unlock()

	if c.timers.Armed(sessionID) {
		return
	}
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil || !session.Active() {
		return
	}
	picks, err := c.store.ListPicks(ctx, sessionID)
	if err != nil {
		return
	}
	if _, ok := sequencer.Current(session.DraftOrder, len(picks), session.PickLimit); !ok {
		return
	}
	c.armTurnTimer(session, len(picks))
}

func (c *Coordinator) broadcast(sessionID uuid.UUID, t events.Type, payload any) {
	event, err := events.New(sessionID, t, payload, c.clock.Now())
	if err != nil {
		log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Str("event_type", string(t)).
			Msg("failed to build event")
		return
	}
	c.broadcaster.Broadcast(sessionID, event)
}

func orderStrings(order []uuid.UUID) []string {
	out := make([]string, len(order))
	for i, id := range order {
		out[i] = id.String()
	}
	return out
}
