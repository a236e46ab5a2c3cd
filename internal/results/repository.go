package results

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Schema creates the results table when missing.
const Schema = `CREATE TABLE IF NOT EXISTS c4_matches (
    match_id     TEXT PRIMARY KEY,
    player_name  TEXT NOT NULL,
    local_side   TEXT NOT NULL,
    result       TEXT NOT NULL,
    status       TEXT NOT NULL,
    moves        TEXT NOT NULL,
    move_count   INTEGER NOT NULL,
    final_board  TEXT NOT NULL,
    started_at   TIMESTAMPTZ NOT NULL,
    ended_at     TIMESTAMPTZ NOT NULL,
    duration_ms  BIGINT NOT NULL
)`

const upsertResult = `INSERT INTO c4_matches (
    match_id, player_name, local_side, result, status,
    moves, move_count, final_board, started_at, ended_at, duration_ms
  ) VALUES (
    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
  ) ON CONFLICT (match_id) DO UPDATE SET
    player_name=EXCLUDED.player_name,
    local_side=EXCLUDED.local_side,
    result=EXCLUDED.result,
    status=EXCLUDED.status,
    moves=EXCLUDED.moves,
    move_count=EXCLUDED.move_count,
    final_board=EXCLUDED.final_board,
    started_at=EXCLUDED.started_at,
    ended_at=EXCLUDED.ended_at,
    duration_ms=EXCLUDED.duration_ms`

// Repository stores finished matches in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Save upserts res keyed by match id.
func (r *Repository) Save(ctx context.Context, res *Result) error {
	if r == nil || r.db == nil || res == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, upsertResult, saveArgs(res)...)
	return err
}

func saveArgs(res *Result) []any {
	duration := res.EndedAt.Sub(res.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	return []any{
		res.MatchID,
		strings.TrimSpace(res.PlayerName),
		res.Local.String(),
		res.Token(),
		string(res.Status),
		Notation(res.Moves),
		len(res.Moves),
		res.FinalBoard,
		res.StartedAt,
		res.EndedAt,
		duration,
	}
}
