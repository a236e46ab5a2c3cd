package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ttlMatch     = 7 * 24 * time.Hour
	recentLimit  = 50
	keyRecent    = "c4:recent"
	keyMatchBase = "c4:match:"
)

// Store keeps recent results in Redis: c4:match:<id> holds the JSON result,
// c4:recent lists ids newest first.
type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// OpenStore connects to redisURL and pings it.
func OpenStore(ctx context.Context, redisURL string) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL is required for the results store")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *Store) keyMatch(id string) string { return keyMatchBase + strings.TrimSpace(id) }

// Save writes r and pushes its id onto the recent list.
func (s *Store) Save(ctx context.Context, r *Result) error {
	if r == nil || strings.TrimSpace(r.MatchID) == "" {
		return errors.New("result without match id")
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.keyMatch(r.MatchID), raw, ttlMatch)
		p.LRem(ctx, keyRecent, 0, r.MatchID)
		p.LPush(ctx, keyRecent, r.MatchID)
		p.LTrim(ctx, keyRecent, 0, recentLimit-1)
		return nil
	})
	return err
}

// Load returns nil, nil when the match is unknown or expired.
func (s *Store) Load(ctx context.Context, id string) (*Result, error) {
	raw, err := s.rdb.Get(ctx, s.keyMatch(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Recent returns up to n results, newest first. Expired entries are skipped.
func (s *Store) Recent(ctx context.Context, n int) ([]*Result, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := s.rdb.LRange(ctx, keyRecent, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Result, 0, len(ids))
	for _, id := range ids {
		r, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
