package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spencerbaird36/The-League-sub000/go/internal/dbconfig"
)

// Player mirrors the pool snapshot JSON.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	Team      string `json:"team"`
	SubLeague string `json:"sub_league"`
}

// Member mirrors the league membership snapshot JSON.
type Member struct {
	LeagueID      string `json:"league_id"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

func main() {
	playersPath := envOr("PLAYERS_JSON", "go/internal/assets/players.json")
	membersPath := envOr("MEMBERS_JSON", "")

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seedPlayers(pool, playersPath); err != nil {
		fmt.Fprintf(os.Stderr, "seed players: %v\n", err)
		os.Exit(1)
	}
	if membersPath != "" {
		if err := seedMembers(pool, membersPath); err != nil {
			fmt.Fprintf(os.Stderr, "seed members: %v\n", err)
			os.Exit(1)
		}
	}
}

func seedPlayers(pool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON: %w", err)
	}
	var players []Player
	if err := json.Unmarshal(data, &players); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}

	var inserted, skipped, errs int
	for _, p := range players {
		tag, err := pool.Exec(context.Background(), `
            INSERT INTO players (id, name, position, team, sub_league)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (id) DO NOTHING
        `, p.ID, p.Name, p.Position, p.Team, p.SubLeague)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting player %s: %v\n", p.ID, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	fmt.Printf("players: %d total, %d inserted, %d skipped, %d errors\n",
		len(players), inserted, skipped, errs)
	return nil
}

func seedMembers(pool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON: %w", err)
	}
	var members []Member
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}

	var inserted, skipped, errs int
	for _, m := range members {
		tag, err := pool.Exec(context.Background(), `
            INSERT INTO league_members (league_id, participant_id, display_name)
            VALUES ($1, $2, $3)
            ON CONFLICT (league_id, participant_id) DO NOTHING
        `, m.LeagueID, m.ParticipantID, m.DisplayName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting member %s: %v\n", m.ParticipantID, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	fmt.Printf("members: %d total, %d inserted, %d skipped, %d errors\n",
		len(members), inserted, skipped, errs)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
