// Package redis implements the ProgressStore on a Redis backend.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"learnkit/core"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store keeps one JSON progress blob per user under user:{id}:progress.
// Updates run as WATCH/MULTI transactions: a concurrent write to the same
// user invalidates the transaction and the read-modify-write is retried,
// so no interleaving can lose an update.
type Store struct {
	client *redis.Client
}

// maxTxRetries bounds optimistic retries before giving up.
const maxTxRetries = 16

// New creates a Redis-backed store with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func progressKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:progress", user)
}

func (s *Store) Get(ctx context.Context, user core.UserID) (core.UserProgress, error) {
	b, err := s.client.Get(ctx, progressKey(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.UserProgress{}, &core.NotFoundError{Resource: "user", Key: string(user)}
	}
	if err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "read", Err: err}
	}
	var p core.UserProgress
	if err := json.Unmarshal(b, &p); err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "decode", Err: err}
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, user core.UserID, fn func(*core.UserProgress) error) (core.UserProgress, error) {
	key := progressKey(user)
	var (
		result core.UserProgress
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		fnErr = nil
		p := core.NewUserProgress(user)
		b, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// first activity initializes the record
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(b, &p); err != nil {
				return err
			}
		}
		if err := fn(&p); err != nil {
			fnErr = err
			return err
		}
		encoded, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err == nil {
			result = p
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return result, nil
		case fnErr != nil:
			// domain errors from fn pass through unwrapped
			return core.UserProgress{}, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return core.UserProgress{}, &core.PersistenceError{Op: "write", Err: err}
		}
	}
	return core.UserProgress{}, &core.PersistenceError{Op: "write", Err: errors.New("too many transaction conflicts")}
}
