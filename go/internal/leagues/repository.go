// Package leagues exposes the league membership reads the draft engine needs.
// Membership management itself lives elsewhere; drafts only consume it.
package leagues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Repository implements league membership data access.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Members returns the league's participant ids in join order. Draft resets
// use this as the authoritative order source.
func (r *Repository) Members(ctx context.Context, leagueID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT participant_id
		FROM league_members
		WHERE league_id = $1
		ORDER BY joined_at, participant_id`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query league members: %w", err)
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

// MemberDetails returns the full membership rows for roster displays.
func (r *Repository) MemberDetails(ctx context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT league_id, participant_id, display_name, joined_at
		FROM league_members
		WHERE league_id = $1
		ORDER BY joined_at, participant_id`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query league members: %w", err)
	}
	defer rows.Close()

	var members []models.LeagueMember
	for rows.Next() {
		var m models.LeagueMember
		if err := rows.Scan(&m.LeagueID, &m.ParticipantID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
