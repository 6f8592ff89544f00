// Package redisstore implements storage.Backend on Redis.
package redisstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/storage"
)

// Config holds the Redis connection settings
type Config struct {
	Addr         string        `json:"addr"`
	Password     string        `json:"password,omitempty"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DefaultConfig matches the deployment the catalog is served from.
func DefaultConfig() Config {
	return Config{
		Addr:         "redis:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "redis addr is required")
	}
	if c.DB < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("redis db must be non-negative, got %d", c.DB))
	}
	if c.PoolSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("redis pool_size must be non-negative, got %d", c.PoolSize))
	}
	return nil
}

// Store reads the catalog from Redis hashes, sets and lists.
type Store struct {
	client redis.UniversalClient
}

var _ storage.Backend = (*Store)(nil)

// New opens a connection pool. The pool dials lazily; call Ping to check
// reachability.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) GetField(ctx context.Context, key, field string) ([]byte, bool, error) {
	value, err := s.client.HGet(ctx, key, field).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(err, "GetField", key)
	}
	return value, true, nil
}

func (s *Store) IsMember(ctx context.Context, setKey, value string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, setKey, value).Result()
	if err != nil {
		return false, classify(err, "IsMember", setKey)
	}
	return ok, nil
}

func (s *Store) Members(ctx context.Context, setKey string) ([]string, error) {
	members, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, classify(err, "Members", setKey)
	}
	return members, nil
}

func (s *Store) RangeList(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	values, err := s.client.LRange(ctx, listKey, start, stop).Result()
	if err != nil {
		return nil, classify(err, "RangeList", listKey)
	}
	return values, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, classify(err, "Exists", key)
	}
	return n > 0, nil
}

func (s *Store) SetFields(ctx context.Context, key string, fields map[string][]byte) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		values[field] = value
	}
	if err := s.client.HSet(ctx, key, values).Err(); err != nil {
		return classify(err, "SetFields", key)
	}
	return nil
}

func (s *Store) AddMembers(ctx context.Context, setKey string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := s.client.SAdd(ctx, setKey, toArgs(members)...).Err(); err != nil {
		return classify(err, "AddMembers", setKey)
	}
	return nil
}

func (s *Store) AppendList(ctx context.Context, listKey string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.client.RPush(ctx, listKey, toArgs(values)...).Err(); err != nil {
		return classify(err, "AppendList", listKey)
	}
	return nil
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return classify(err, "Ping", "")
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// classify maps Redis failures onto the error classes: a key of the wrong type
// is corrupt data, everything else is treated as the store being unavailable.
func classify(err error, method, key string) error {
	action := fmt.Sprintf("read %q", key)
	if strings.HasPrefix(err.Error(), "WRONGTYPE") {
		return errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrWrongType, err), "redisstore", method, action)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapTransient(err, "redisstore", method, action)
	}
	return errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err), "redisstore", method, action)
}
