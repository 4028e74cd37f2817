// Package redis implements db.Store with rueidis. It works against Redis and Valkey.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/OiherR/TFG-UNIBASQ/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName      = "graphrag"
	minPollInterval = 50 * time.Millisecond
	maxPollInterval = time.Second
)

// Config holds connection parameters for the embedding cache server.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// WriteTimeout bounds a single command; zero keeps the rueidis default.
	WriteTimeout time.Duration
}

// Store is a db.Store over one rueidis client.
type Store struct {
	client rueidis.Client
}

// NewStore creates the client. rueidis dials eagerly, so an unreachable
// server fails here; use WaitForReady for servers still starting up.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       clientName,
		ConnWriteTimeout: cfg.WriteTimeout,
		// Cached vectors are written once and read by key; client-side tracking buys nothing.
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately and then with a doubling interval, capped
// at one second, until the server answers or timeout elapses. The returned
// error wraps both the deadline and the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := minPollInterval
	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis: not ready after %s: %w", timeout, errors.Join(ctx.Err(), lastErr))
		case <-timer.C:
		}
		interval = min(interval*2, maxPollInterval)
	}
}
