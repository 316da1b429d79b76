package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/registry"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Coordinator is the slice of the draft coordinator the gateway drives.
type Coordinator interface {
	Join(ctx context.Context, conn registry.Connection) ([]registry.Connection, error)
	Leave(ctx context.Context, sessionID uuid.UUID, connectionID string)
	State(ctx context.Context, sessionID uuid.UUID) (*events.CurrentStatePayload, error)
	Start(ctx context.Context, sessionID uuid.UUID) error
	Pause(ctx context.Context, sessionID uuid.UUID, participantID uuid.UUID) error
	Resume(ctx context.Context, sessionID uuid.UUID, participantID uuid.UUID) error
	Reset(ctx context.Context, sessionID uuid.UUID, participantID uuid.UUID) error
	Pick(ctx context.Context, sessionID, participantID uuid.UUID, player models.PlayerSummary) (*models.Pick, error)
}

// Service wires websocket clients to the draft coordinator. Validation
// failures are answered on the offending connection only; committed
// transitions reach clients through the coordinator's broadcaster.
type Service struct {
	manager *ConnectionManager
	coord   Coordinator
}

func NewService(manager *ConnectionManager, coord Coordinator) *Service {
	return &Service{manager: manager, coord: coord}
}

// Routes registers the gateway's HTTP surface on the mux.
func (s *Service) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", s.handleWebSocket)
	mux.HandleFunc("/ws/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)
}

func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	client, err := s.manager.Upgrade(w, r)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	go client.writePump()
	go client.readPump(context.Background(), s.handleMessage, s.handleDisconnect)
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.manager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to write stats")
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Service) handleMessage(ctx context.Context, client *Client, raw []byte) {
	cmd, err := parseCommand(raw)
	if err != nil {
		log.Debug().Err(err).Str("connection_id", client.ID).Msg("unparseable command")
		s.replyError(client, uuid.Nil, err)
		return
	}

	log.Debug().
		Str("connection_id", client.ID).
		Str("action", cmd.Action).
		Msg("command received")

	switch cmd.Action {
	case ActionJoinSession:
		err = s.joinSession(ctx, client, cmd)
	case ActionLeaveSession:
		err = s.leaveSession(ctx, client, cmd)
	case ActionGetCurrentState:
		err = s.currentState(ctx, client, cmd)
	case ActionStartDraft:
		err = s.withSession(cmd, client, func(sessionID uuid.UUID) error {
			return s.coord.Start(ctx, sessionID)
		})
	case ActionMakePick:
		err = s.makePick(ctx, client, cmd)
	case ActionPauseDraft:
		err = s.withSession(cmd, client, func(sessionID uuid.UUID) error {
			return s.coord.Pause(ctx, sessionID, client.Participant())
		})
	case ActionResumeDraft:
		err = s.withSession(cmd, client, func(sessionID uuid.UUID) error {
			return s.coord.Resume(ctx, sessionID, client.Participant())
		})
	case ActionResetDraft:
		err = s.withSession(cmd, client, func(sessionID uuid.UUID) error {
			return s.coord.Reset(ctx, sessionID, client.Participant())
		})
	default:
		log.Warn().Str("action", cmd.Action).Msg("unknown command action")
		return
	}

	if err != nil {
		sessionID, _ := client.Session()
		s.replyError(client, sessionID, err)
	}
}

func (s *Service) handleDisconnect(ctx context.Context, client *Client) {
	if sessionID, ok := client.Session(); ok {
		s.coord.Leave(ctx, sessionID, client.ID)
	}
	log.Info().Str("connection_id", client.ID).Msg("websocket connection closed")
}

func (s *Service) joinSession(ctx context.Context, client *Client, cmd *Command) error {
	data, err := parseData[joinSessionData](cmd)
	if err != nil {
		return err
	}
	sessionID, err := parseUUID("sessionId", data.SessionID)
	if err != nil {
		return err
	}
	participantID, err := parseUUID("participantId", data.ParticipantID)
	if err != nil {
		return err
	}

	// A connection holds one session at a time; switching sessions runs
	// the full leave path first so the old roster and pool forget it.
	if prev, ok := client.Session(); ok && prev != sessionID {
		s.coord.Leave(ctx, prev, client.ID)
		s.manager.detach(client)
		client.unbind()
	}

	online, err := s.coord.Join(ctx, registry.Connection{
		ID:            client.ID,
		SessionID:     sessionID,
		ParticipantID: participantID,
		DisplayName:   data.DisplayName,
		ConnectedAt:   time.Now(),
	})
	if err != nil {
		return err
	}

	client.bind(sessionID, participantID, data.DisplayName)
	s.manager.attach(client, sessionID)

	// Reply with the roster; the join announcement already went to the pool.
	roster := make([]events.OnlineParticipant, 0, len(online))
	for _, conn := range online {
		roster = append(roster, events.OnlineParticipant{
			ParticipantID: conn.ParticipantID.String(),
			DisplayName:   conn.DisplayName,
			ConnectedAt:   conn.ConnectedAt,
		})
	}
	s.reply(client, sessionID, events.TypeOnlineList, events.OnlineListPayload{Participants: roster})
	return nil
}

func (s *Service) leaveSession(ctx context.Context, client *Client, cmd *Command) error {
	sessionID, err := s.boundSession(cmd, client)
	if err != nil {
		return err
	}
	s.coord.Leave(ctx, sessionID, client.ID)
	s.manager.detach(client)
	client.unbind()
	return nil
}

func (s *Service) currentState(ctx context.Context, client *Client, cmd *Command) error {
	sessionID, err := s.boundSession(cmd, client)
	if err != nil {
		return err
	}
	state, err := s.coord.State(ctx, sessionID)
	if err != nil {
		return err
	}
	s.reply(client, sessionID, events.TypeCurrentState, state)
	return nil
}

func (s *Service) makePick(ctx context.Context, client *Client, cmd *Command) error {
	data, err := parseData[makePickData](cmd)
	if err != nil {
		return err
	}
	sessionID, err := parseUUID("sessionId", data.SessionID)
	if err != nil {
		return err
	}
	if bound, ok := client.Session(); !ok || bound != sessionID {
		return draft.ErrInvalidConnection
	}
	participantID, err := parseUUID("participantId", data.ParticipantID)
	if err != nil {
		return err
	}
	// Picks are only accepted for the identity the connection joined with.
	if participantID != client.Participant() {
		return draft.ErrInvalidConnection
	}

	_, err = s.coord.Pick(ctx, sessionID, participantID, models.PlayerSummary{
		ID:        data.PlayerID,
		Name:      data.Name,
		Position:  data.Position,
		Team:      data.Team,
		SubLeague: data.SubLeague,
	})
	return err
}

// withSession parses the command's session id, checks the client joined that
// session, and runs the operation.
func (s *Service) withSession(cmd *Command, client *Client, op func(uuid.UUID) error) error {
	sessionID, err := s.boundSession(cmd, client)
	if err != nil {
		return err
	}
	return op(sessionID)
}

func (s *Service) boundSession(cmd *Command, client *Client) (uuid.UUID, error) {
	data, err := parseData[sessionData](cmd)
	if err != nil {
		return uuid.Nil, err
	}
	sessionID, err := parseUUID("sessionId", data.SessionID)
	if err != nil {
		return uuid.Nil, err
	}
	if bound, ok := client.Session(); !ok || bound != sessionID {
		return uuid.Nil, draft.ErrInvalidConnection
	}
	return sessionID, nil
}

// reply sends an event to the calling connection only.
func (s *Service) reply(client *Client, sessionID uuid.UUID, t events.Type, payload any) {
	event, err := events.New(sessionID, t, payload, time.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to build reply")
		return
	}
	s.manager.Send(client, event)
}

// replyError maps the failure to a wire code and answers the offending
// connection. Other observers never see it.
func (s *Service) replyError(client *Client, sessionID uuid.UUID, err error) {
	code := draft.ErrorCode(err)
	payload := events.PickErrorPayload{Code: code, Message: err.Error()}

	var nyt *draft.NotYourTurnError
	if errors.As(err, &nyt) {
		payload.CurrentParticipant = nyt.Current.String()
	}
	if code == draft.CodeInternal {
		log.Error().Err(err).Str("connection_id", client.ID).Msg("command failed")
		payload.Message = "internal error"
	}

	s.reply(client, sessionID, events.TypePickError, payload)
}
