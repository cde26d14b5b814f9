package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds connection and retention settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	MaxRecent int
	TTL       time.Duration
}

// Store keeps conversation memory in Redis so several server processes can
// share sessions. Each session uses a capped list of recent queries and a
// string holding the last intent, both expiring after the TTL.
type Store struct {
	client    *redis.Client
	prefix    string
	maxRecent int
	ttl       time.Duration
}

// New connects to Redis and verifies the connection.
func New(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, cfg Config) *Store {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "faqbot:session"
	}
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = 3
	}
	return &Store{
		client:    client,
		prefix:    cfg.KeyPrefix,
		maxRecent: cfg.MaxRecent,
		ttl:       cfg.TTL,
	}
}

func (s *Store) recentKey(sessionID string) string {
	return s.prefix + ":" + sessionID + ":recent"
}

func (s *Store) intentKey(sessionID string) string {
	return s.prefix + ":" + sessionID + ":intent"
}

func (s *Store) RecentQueries(ctx context.Context, sessionID string) ([]string, error) {
	recent, err := s.client.LRange(ctx, s.recentKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent queries: %w", err)
	}
	return recent, nil
}

// AppendQuery pushes, trims and refreshes the TTL in one transaction.
func (s *Store) AppendQuery(ctx context.Context, sessionID, query string) error {
	key := s.recentKey(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, query)
		pipe.LTrim(ctx, key, int64(-s.maxRecent), -1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
			pipe.Expire(ctx, s.intentKey(sessionID), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append query: %w", err)
	}
	return nil
}

func (s *Store) LastIntent(ctx context.Context, sessionID string) (string, bool, error) {
	intent, err := s.client.Get(ctx, s.intentKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read last intent: %w", err)
	}
	return intent, true, nil
}

func (s *Store) SetLastIntent(ctx context.Context, sessionID, intent string) error {
	if err := s.client.Set(ctx, s.intentKey(sessionID), intent, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set last intent: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
