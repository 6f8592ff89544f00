// Package kvstore implements storage.Backend on a NATS JetStream KV bucket.
//
// Each logical key is one KV entry holding a JSON envelope that records
// whether it is a hash, a set or a list. Logical keys may contain characters
// outside the KV key alphabet, so entry keys are "k." followed by the
// unpadded URL-safe base64 of the logical key.
package kvstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/pkg/retry"
	"github.com/navith/genreguide/storage"
)

const (
	kindHash = "hash"
	kindSet  = "set"
	kindList = "list"
)

// envelope is the stored form of one logical key.
type envelope struct {
	Kind    string            `json:"kind"`
	Fields  map[string][]byte `json:"fields,omitempty"`
	Members []string          `json:"members,omitempty"`
	Items   []string          `json:"items,omitempty"`
}

// Store reads and loads a catalog in a KV bucket.
type Store struct {
	bucket jetstream.KeyValue
	retry  retry.Config
}

var _ storage.Backend = (*Store)(nil)

// New wraps an open bucket.
func New(bucket jetstream.KeyValue) *Store {
	return &Store{bucket: bucket, retry: retry.DefaultConfig()}
}

// EntryKey maps a logical key onto the KV key alphabet.
func EntryKey(key string) string {
	return "k." + base64.RawURLEncoding.EncodeToString([]byte(key))
}

func (s *Store) load(ctx context.Context, method, key, want string) (*envelope, uint64, error) {
	entry, err := s.bucket.Get(ctx, EntryKey(key))
	if stderrors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err),
			"kvstore", method, fmt.Sprintf("get %q", key))
	}

	var env envelope
	if err := json.Unmarshal(entry.Value(), &env); err != nil {
		return nil, 0, errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrDataCorrupted, err),
			"kvstore", method, fmt.Sprintf("decode %q", key))
	}
	if want != "" && env.Kind != want {
		return nil, 0, errors.WrapFatal(errors.ErrWrongType, "kvstore", method,
			fmt.Sprintf("key %q holds a %s, not a %s", key, env.Kind, want))
	}
	return &env, entry.Revision(), nil
}

func (s *Store) GetField(ctx context.Context, key, field string) ([]byte, bool, error) {
	env, _, err := s.load(ctx, "GetField", key, kindHash)
	if err != nil || env == nil {
		return nil, false, err
	}
	value, ok := env.Fields[field]
	return value, ok, nil
}

func (s *Store) IsMember(ctx context.Context, setKey, value string) (bool, error) {
	env, _, err := s.load(ctx, "IsMember", setKey, kindSet)
	if err != nil || env == nil {
		return false, err
	}
	i := sort.SearchStrings(env.Members, value)
	return i < len(env.Members) && env.Members[i] == value, nil
}

func (s *Store) Members(ctx context.Context, setKey string) ([]string, error) {
	env, _, err := s.load(ctx, "Members", setKey, kindSet)
	if err != nil || env == nil {
		return []string{}, err
	}
	return env.Members, nil
}

func (s *Store) RangeList(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	env, _, err := s.load(ctx, "RangeList", listKey, kindList)
	if err != nil || env == nil {
		return []string{}, err
	}
	lo, hi, ok := storage.RangeBounds(len(env.Items), start, stop)
	if !ok {
		return []string{}, nil
	}
	return env.Items[lo:hi], nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	env, _, err := s.load(ctx, "Exists", key, "")
	return env != nil, err
}

func (s *Store) SetFields(ctx context.Context, key string, fields map[string][]byte) error {
	return s.update(ctx, "SetFields", key, kindHash, func(env *envelope) {
		if env.Fields == nil {
			env.Fields = make(map[string][]byte, len(fields))
		}
		for field, value := range fields {
			env.Fields[field] = value
		}
	})
}

// AddMembers keeps members sorted so IsMember can binary search.
func (s *Store) AddMembers(ctx context.Context, setKey string, members ...string) error {
	return s.update(ctx, "AddMembers", setKey, kindSet, func(env *envelope) {
		for _, member := range members {
			i := sort.SearchStrings(env.Members, member)
			if i < len(env.Members) && env.Members[i] == member {
				continue
			}
			env.Members = append(env.Members, "")
			copy(env.Members[i+1:], env.Members[i:])
			env.Members[i] = member
		}
	})
}

func (s *Store) AppendList(ctx context.Context, listKey string, values ...string) error {
	return s.update(ctx, "AppendList", listKey, kindList, func(env *envelope) {
		env.Items = append(env.Items, values...)
	})
}

// update applies mutate under compare-and-swap, retrying on revision conflicts.
func (s *Store) update(ctx context.Context, method, key, kind string, mutate func(*envelope)) error {
	entryKey := EntryKey(key)
	err := retry.Do(ctx, s.retry, func() error {
		env, revision, err := s.load(ctx, method, key, kind)
		if err != nil {
			if errors.IsFatal(err) {
				return retry.NonRetryable(err)
			}
			return err
		}
		if env == nil {
			env = &envelope{Kind: kind}
		}
		mutate(env)

		data, err := json.Marshal(env)
		if err != nil {
			return retry.NonRetryable(err)
		}
		if revision == 0 {
			_, err = s.bucket.Create(ctx, entryKey, data)
		} else {
			_, err = s.bucket.Update(ctx, entryKey, data, revision)
		}
		return err
	})
	if err == nil {
		return nil
	}

	var nre *retry.NonRetryableError
	if stderrors.As(err, &nre) {
		return nre.Err
	}
	return errors.WrapTransient(err, "kvstore", method, fmt.Sprintf("write %q", key))
}

// Ping checks the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.bucket.Status(ctx); err != nil {
		return errors.WrapTransient(fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err),
			"kvstore", "Ping", "bucket status")
	}
	return nil
}
