// Package storage defines the read contract the resolvers consume from the
// key-value store, the key layout of the catalog, and the write side used to
// load a catalog into a backend.
package storage

import "context"

// Store is the read-only backend interface consumed by the resolvers.
//
// The data model follows Redis: hashes addressed by key and field, sets, and
// lists. Implementations must be safe for concurrent use from multiple
// goroutines.
//
// Implementations:
//   - redisstore.Store: Redis
//   - kvstore.Store: NATS JetStream KV
//   - memstore.Store: in-process maps, for tests and local development
type Store interface {
	// GetField returns the value of field in the hash at key. ok is false when
	// either the key or the field is absent.
	GetField(ctx context.Context, key, field string) (value []byte, ok bool, err error)

	// IsMember reports whether value is a member of the set at setKey.
	IsMember(ctx context.Context, setKey, value string) (bool, error)

	// Members returns every member of the set at setKey in no particular order.
	Members(ctx context.Context, setKey string) ([]string, error)

	// RangeList returns the elements of the list at listKey between start and
	// stop inclusive. Negative indexes count from the end, so 0, -1 is the
	// whole list. A missing key is an empty list.
	RangeList(ctx context.Context, listKey string, start, stop int64) ([]string, error)

	// Exists reports whether key holds any value.
	Exists(ctx context.Context, key string) (bool, error)
}

// Writer is the write side of a backend, used only to load catalogs.
type Writer interface {
	// SetFields sets the given fields of the hash at key, leaving others intact.
	SetFields(ctx context.Context, key string, fields map[string][]byte) error

	// AddMembers adds members to the set at setKey.
	AddMembers(ctx context.Context, setKey string, members ...string) error

	// AppendList appends values to the tail of the list at listKey.
	AppendList(ctx context.Context, listKey string, values ...string) error
}

// Backend is a store that can be both read and loaded.
type Backend interface {
	Store
	Writer
}

// RangeBounds resolves Redis-style inclusive start and stop indexes against a
// list of length n. ok is false when the range selects nothing; otherwise
// [lo, hi) is the slice range to return.
func RangeBounds(n int, start, stop int64) (lo, hi int, ok bool) {
	length := int64(n)
	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += length
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}
