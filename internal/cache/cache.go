// Package cache keeps finished forecast summaries and their title odds in
// redis so repeated reads skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

const (
	KeyForecastSummary   = "forecast:%s:summary"
	KeyForecastChampions = "forecast:%s:champions"
)

// Odds is one member of the champions sorted set.
type Odds struct {
	Rank        int64   `json:"rank"`
	Team        string  `json:"team"`
	Probability float64 `json:"probability"`
}

// Store is a redis-backed cache with a fixed TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// PutForecast stores the summary as JSON and the title probabilities as a
// sorted set, both expiring after the store TTL.
func (s *Store) PutForecast(ctx context.Context, runID string, summary interface{}, odds map[string]float64) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	champions := fmt.Sprintf(KeyForecastChampions, runID)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyForecastSummary, runID), raw, s.ttl)
	pipe.Del(ctx, champions)
	if len(odds) > 0 {
		members := make([]redis.Z, 0, len(odds))
		for team, p := range odds {
			members = append(members, redis.Z{Score: p, Member: team})
		}
		pipe.ZAdd(ctx, champions, members...)
		pipe.Expire(ctx, champions, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// GetForecast decodes a cached summary into dst. It reports false on a miss.
func (s *Store) GetForecast(ctx context.Context, runID string, dst interface{}) (bool, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(KeyForecastSummary, runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached summary: %w", err)
	}
	return true, nil
}

// TopChampions returns the count most likely champions of a run.
func (s *Store) TopChampions(ctx context.Context, runID string, count int64) ([]Odds, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, fmt.Sprintf(KeyForecastChampions, runID), 0, count-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Odds, 0, len(zs))
	for i, z := range zs {
		team, _ := z.Member.(string)
		out = append(out, Odds{Team: team, Probability: z.Score, Rank: int64(i) + 1})
	}
	return out, nil
}
