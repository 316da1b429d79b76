// Package player exposes the player pool reads the draft engine needs.
// Player attributes are opaque to drafting except for the fields the
// auto-pick selector scores on.
package player

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Repository implements player pool data access.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AvailablePlayers returns every player not yet referenced by a pick of the
// session.
func (r *Repository) AvailablePlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.position, p.team, p.sub_league
		FROM players p
		WHERE NOT EXISTS (
			SELECT 1 FROM draft_picks dp
			WHERE dp.session_id = $1 AND dp.player_id = p.id
		)
		ORDER BY p.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query available players: %w", err)
	}
	defer rows.Close()

	var players []models.PlayerSummary
	for rows.Next() {
		var p models.PlayerSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Team, &p.SubLeague); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
