// Package memstore is an in-process storage.Backend for tests and local
// development without a store server.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/storage"
)

// Store keeps hashes, sets and lists in maps guarded by one lock.
type Store struct {
	mu     sync.RWMutex
	hashes map[string]map[string][]byte
	sets   map[string]map[string]struct{}
	lists  map[string][]string
}

var _ storage.Backend = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		hashes: make(map[string]map[string][]byte),
		sets:   make(map[string]map[string]struct{}),
		lists:  make(map[string][]string),
	}
}

// GetField returns a copy of the hash field value.
func (s *Store) GetField(ctx context.Context, key, field string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkType(key, "hash"); err != nil {
		return nil, false, err
	}
	value, ok := s.hashes[key][field]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *Store) IsMember(ctx context.Context, setKey, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkType(setKey, "set"); err != nil {
		return false, err
	}
	_, ok := s.sets[setKey][value]
	return ok, nil
}

func (s *Store) Members(ctx context.Context, setKey string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkType(setKey, "set"); err != nil {
		return nil, err
	}
	members := make([]string, 0, len(s.sets[setKey]))
	for member := range s.sets[setKey] {
		members = append(members, member)
	}
	return members, nil
}

func (s *Store) RangeList(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkType(listKey, "list"); err != nil {
		return nil, err
	}
	list := s.lists[listKey]
	lo, hi, ok := storage.RangeBounds(len(list), start, stop)
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), list[lo:hi]...), nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kindOf(key) != "", nil
}

func (s *Store) SetFields(ctx context.Context, key string, fields map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkType(key, "hash"); err != nil {
		return err
	}
	hash, ok := s.hashes[key]
	if !ok {
		hash = make(map[string][]byte, len(fields))
		s.hashes[key] = hash
	}
	for field, value := range fields {
		hash[field] = append([]byte(nil), value...)
	}
	return nil
}

func (s *Store) AddMembers(ctx context.Context, setKey string, members ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkType(setKey, "set"); err != nil {
		return err
	}
	set, ok := s.sets[setKey]
	if !ok {
		set = make(map[string]struct{}, len(members))
		s.sets[setKey] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (s *Store) AppendList(ctx context.Context, listKey string, values ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkType(listKey, "list"); err != nil {
		return err
	}
	s.lists[listKey] = append(s.lists[listKey], values...)
	return nil
}

// kindOf reports which map holds key, or "" when none does.
func (s *Store) kindOf(key string) string {
	if _, ok := s.hashes[key]; ok {
		return "hash"
	}
	if _, ok := s.sets[key]; ok {
		return "set"
	}
	if _, ok := s.lists[key]; ok {
		return "list"
	}
	return ""
}

func (s *Store) checkType(key, want string) error {
	if kind := s.kindOf(key); kind != "" && kind != want {
		return errors.WrapFatal(errors.ErrWrongType, "memstore", "checkType",
			fmt.Sprintf("key %q holds a %s, not a %s", key, kind, want))
	}
	return nil
}
