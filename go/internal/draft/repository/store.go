// Package repository persists draft sessions and their pick history in
// Postgres. The pick log is the source of truth; turn and round are never
// stored.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
	"github.com/spencerbaird36/The-League-sub000/go/internal/sqlutil"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type CreateSessionRequest struct {
	LeagueID       uuid.UUID
	DraftOrder     []uuid.UUID
	PickLimit      int
	TimePerPickSec int
}

// CreateSession inserts a new session in the not-started state.
func (s *Store) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	if len(req.DraftOrder) == 0 {
		return nil, fmt.Errorf("draft order must not be empty")
	}
	if req.PickLimit <= 0 {
		return nil, fmt.Errorf("pick limit must be positive, got %d", req.PickLimit)
	}
	if req.TimePerPickSec <= 0 {
		return nil, fmt.Errorf("time per pick must be positive, got %d", req.TimePerPickSec)
	}

	orderJSON, err := json.Marshal(req.DraftOrder)
	if err != nil {
		return nil, fmt.Errorf("marshal draft order: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO draft_sessions (id, league_id, draft_order, pick_limit, time_per_pick_sec, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, league_id, draft_order, pick_limit, time_per_pick_sec, status,
		          started_at, completed_at, created_at, updated_at`,
		uuid.New(), req.LeagueID, orderJSON, req.PickLimit, req.TimePerPickSec,
		models.DraftStatusNotStarted,
	)
	return scanSession(row)
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, league_id, draft_order, pick_limit, time_per_pick_sec, status,
		       started_at, completed_at, created_at, updated_at
		FROM draft_sessions
		WHERE id = $1`, id)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, draft.ErrSessionNotFound
	}
	return session, err
}

// UpdateStatus transitions the session and stamps started_at/completed_at on
// the first entry into the corresponding state.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus) (*models.DraftSession, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE draft_sessions
		SET status = $2,
		    started_at = CASE WHEN $2 = $3 AND started_at IS NULL THEN now() ELSE started_at END,
		    completed_at = CASE WHEN $2 = $4 THEN now() ELSE completed_at END,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, league_id, draft_order, pick_limit, time_per_pick_sec, status,
		          started_at, completed_at, created_at, updated_at`,
		id, status, models.DraftStatusInProgress, models.DraftStatusCompleted)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, draft.ErrSessionNotFound
	}
	return session, err
}

// ListPicks returns the session's picks in commit order.
func (s *Store) ListPicks(ctx context.Context, sessionID uuid.UUID) ([]models.Pick, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, participant_id, player_id, player_name, position,
		       team, sub_league, overall_pick, round, slot, auto_pick, picked_at
		FROM draft_picks
		WHERE session_id = $1
		ORDER BY overall_pick`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var picks []models.Pick
	for rows.Next() {
		var p models.Pick
		if err := rows.Scan(
			&p.ID, &p.SessionID, &p.ParticipantID,
			&p.Player.ID, &p.Player.Name, &p.Player.Position,
			&p.Player.Team, &p.Player.SubLeague,
			&p.OverallPick, &p.Round, &p.Slot, &p.AutoPick, &p.PickedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// AppendPick writes the pick and, when it is the session's last, the
// completed status in one transaction. The unique constraint on
// (session_id, player_id) closes the race two concurrent commits for the
// same player would otherwise win together.
func (s *Store) AppendPick(ctx context.Context, pick models.Pick, complete bool) (*models.Pick, error) {
	err := sqlutil.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO draft_picks (id, session_id, participant_id, player_id, player_name,
			                         position, team, sub_league, overall_pick, round, slot,
			                         auto_pick, picked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			pick.ID, pick.SessionID, pick.ParticipantID,
			pick.Player.ID, pick.Player.Name, pick.Player.Position,
			pick.Player.Team, pick.Player.SubLeague,
			pick.OverallPick, pick.Round, pick.Slot, pick.AutoPick, pick.PickedAt,
		)
		if err != nil {
			if sqlutil.IsUniqueViolation(err, "draft_picks_session_player_key") {
				return draft.ErrPlayerAlreadyDrafted
			}
			return fmt.Errorf("insert pick: %w", err)
		}

		if complete {
			_, err = tx.Exec(ctx, `
				UPDATE draft_sessions
				SET status = $2, completed_at = $3, updated_at = now()
				WHERE id = $1`,
				pick.SessionID, models.DraftStatusCompleted, pick.PickedAt)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE draft_sessions SET updated_at = now() WHERE id = $1`,
				pick.SessionID)
		}
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pick, nil
}

// ResetSession clears the pick history and returns the session to the
// not-started state with the given order.
func (s *Store) ResetSession(ctx context.Context, id uuid.UUID, order []uuid.UUID) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal draft order: %w", err)
	}

	return sqlutil.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM draft_picks WHERE session_id = $1`, id); err != nil {
			return fmt.Errorf("delete picks: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE draft_sessions
			SET draft_order = $2, status = $3, started_at = NULL, completed_at = NULL,
			    updated_at = now()
			WHERE id = $1`,
			id, orderJSON, models.DraftStatusNotStarted)
		if err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return draft.ErrSessionNotFound
		}
		return nil
	})
}

type sessionRow interface {
	Scan(dest ...any) error
}

func scanSession(row sessionRow) (*models.DraftSession, error) {
	var (
		session   models.DraftSession
		orderJSON []byte
		startedAt *time.Time
		completed *time.Time
	)
	err := row.Scan(
		&session.ID, &session.LeagueID, &orderJSON,
		&session.PickLimit, &session.TimePerPickSec, &session.Status,
		&startedAt, &completed, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(orderJSON, &session.DraftOrder); err != nil {
		return nil, fmt.Errorf("unmarshal draft order: %w", err)
	}
	session.StartedAt = startedAt
	session.CompletedAt = completed
	return &session, nil
}
