package main

import (
	"context"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/rvilhelmsen/beachrank/internal/config"
	"github.com/rvilhelmsen/beachrank/internal/database"
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/pubsub"
	"github.com/rvilhelmsen/beachrank/internal/recompute"
	"github.com/rvilhelmsen/beachrank/internal/standings"
)

var roster = []string{
	"Anna", "Bo", "Carl", "Dina", "Erik", "Fia", "Gus", "Hedda",
}

// Seeds the local database with a few settled sessions of random matches and
// runs a recompute so every read surface has data to show.
func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer teardown()

	store := league.New(db)
	dates := []string{"2025-05-05", "2025-05-12", "2025-05-19", "2025-05-26"}
	total := 0
	for _, date := range dates {
		session, err := store.CreateSession(date)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		for i := 0; i < 4; i++ {
			if _, err := store.AddMatch(session.ID, randomMatch(date)); err != nil {
				log.Fatalf("Failed to add match: %v", err)
			}
		}
		count, err := store.SettleSession(session.ID)
		if err != nil {
			log.Fatalf("Failed to settle session: %v", err)
		}
		log.Info("Seeded session", "name", session.Name, "matches", count)
		total += count
	}

	rec := recompute.New(db, store, standings.New(db), cfg.Rating, metrics.NewMock(), pubsub.NewMock())
	result, err := rec.RecomputeAll(context.Background())
	if err != nil {
		log.Fatalf("Failed to recompute standings: %v", err)
	}
	log.Info("Seeding complete", "matches", total, "players", result.PlayerCount)
}

func randomMatch(date string) league.MatchSubmission {
	players := append([]string(nil), roster...)
	rand.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	winner := 21
	loser := rand.Intn(20)
	if rand.Intn(2) == 0 {
		winner, loser = loser, winner
	}
	return league.MatchSubmission{
		Date:       date,
		Team1:      [2]string{players[0], players[1]},
		Team2:      [2]string{players[2], players[3]},
		Team1Score: winner,
		Team2Score: loser,
	}
}
