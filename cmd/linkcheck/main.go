package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/cheese-connect4/internal/announce"
	appcfg "github.com/park285/cheese-connect4/internal/config"
	"github.com/park285/cheese-connect4/internal/results"
)

// linkcheck verifies the optional collaborators (Redis, Postgres, chat relay)
// configured through the same environment as connect4.
func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	failed := false

	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set; skipping results store check")
	} else if store, err := results.OpenStore(ctx, cfg.RedisURL); err != nil {
		log.Printf("redis error: %v", err)
		failed = true
	} else {
		recent, err := store.Recent(ctx, 5)
		if err != nil {
			log.Printf("redis recent error: %v", err)
			failed = true
		}
		log.Printf("redis ok: %d recent matches", len(recent))
		for _, r := range recent {
			fmt.Printf("  %s %s %-9s %s\n", r.EndedAt.Format(time.RFC3339), r.MatchID, r.Token(), results.Notation(r.Moves))
		}
		_ = store.Close()
	}

	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set; skipping repository check")
	} else if repo, err := results.NewRepository(ctx, cfg.DatabaseURL); err != nil {
		log.Printf("postgres error: %v", err)
		failed = true
	} else {
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Printf("postgres schema error: %v", err)
			failed = true
		} else {
			log.Println("postgres ok: c4_matches ready")
		}
		_ = repo.Close()
	}

	if cfg.AnnounceRoom == "" {
		log.Println("ANNOUNCE_ROOM not set; skipping relay check")
	} else {
		client := announce.NewClient(cfg.IrisBaseURL, announce.WithTimeout(8*time.Second), announce.WithRetry(1))
		if err := client.SendText(ctx, cfg.AnnounceRoom, "[Connect 4] relay check"); err != nil {
			log.Printf("relay error: %v", err)
			failed = true
		} else {
			log.Printf("relay ok: room=%s", cfg.AnnounceRoom)
		}
	}

	if failed {
		os.Exit(1)
	}
}
