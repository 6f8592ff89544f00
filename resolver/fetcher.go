package resolver

import (
	"context"
	"strconv"
	"strings"
	"time"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/navith/genreguide/metric"
	"github.com/navith/genreguide/pkg/cache"
	"github.com/navith/genreguide/storage"
)

// Fetcher memoizes store reads by operation and arguments. Answers, including
// absent ones, are kept until evicted by capacity; failures are never cached.
// Concurrent misses on one key may each reach the store.
//
// Cached slices are shared between callers and must not be modified.
type Fetcher struct {
	store   storage.Store
	cache   cache.Cache[any]
	metrics *metric.Metrics
}

type fieldAnswer struct {
	value []byte
	ok    bool
}

// NewFetcher wraps store with c. metrics may be nil.
func NewFetcher(store storage.Store, c cache.Cache[any], metrics *metric.Metrics) *Fetcher {
	return &Fetcher{store: store, cache: c, metrics: metrics}
}

func memoize[T any](ctx context.Context, f *Fetcher, op string, args []string, load func() (T, error)) (T, error) {
	return memoizeIf(ctx, f, op, args, load, nil)
}

// memoizeIf caches an answer only when keep accepts it. A nil keep caches
// every answer.
func memoizeIf[T any](ctx context.Context, f *Fetcher, op string, args []string,
	load func() (T, error), keep func(T) bool,
) (T, error) {
	key := op + "\x1f" + strings.Join(args, "\x1f")
	if cached, ok := f.cache.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}

	slogcontext.FromCtx(ctx).Debug("store cache miss", "operation", op, "args", args)

	start := time.Now()
	v, err := load()
	if f.metrics != nil {
		f.metrics.RecordStoreOperation(op, err, time.Since(start))
	}
	if err != nil {
		return v, err
	}
	if keep == nil || keep(v) {
		_, _ = f.cache.Set(key, v)
	}
	return v, nil
}

// GetField is a memoized storage.Store.GetField.
func (f *Fetcher) GetField(ctx context.Context, key, field string) ([]byte, bool, error) {
	answer, err := memoize(ctx, f, "hget", []string{key, field}, func() (fieldAnswer, error) {
		value, ok, err := f.store.GetField(ctx, key, field)
		return fieldAnswer{value: value, ok: ok}, err
	})
	return answer.value, answer.ok, err
}

// IsMember is a memoized storage.Store.IsMember.
func (f *Fetcher) IsMember(ctx context.Context, setKey, value string) (bool, error) {
	return memoize(ctx, f, "sismember", []string{setKey, value}, func() (bool, error) {
		return f.store.IsMember(ctx, setKey, value)
	})
}

// Members is a memoized storage.Store.Members.
func (f *Fetcher) Members(ctx context.Context, setKey string) ([]string, error) {
	return memoize(ctx, f, "smembers", []string{setKey}, func() ([]string, error) {
		return f.store.Members(ctx, setKey)
	})
}

// RangeList is a memoized storage.Store.RangeList.
func (f *Fetcher) RangeList(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	args := []string{listKey, strconv.FormatInt(start, 10), strconv.FormatInt(stop, 10)}
	return memoize(ctx, f, "lrange", args, func() ([]string, error) {
		return f.store.RangeList(ctx, listKey, start, stop)
	})
}

// ScanList is RangeList over a whole list that does not cache empty answers.
// A backwards scan over days visits many empty lists, and caching them would
// evict the subgenre and track answers.
func (f *Fetcher) ScanList(ctx context.Context, listKey string) ([]string, error) {
	args := []string{listKey, "0", "-1"}
	return memoizeIf(ctx, f, "lrange", args, func() ([]string, error) {
		return f.store.RangeList(ctx, listKey, 0, -1)
	}, func(ids []string) bool { return len(ids) > 0 })
}

// Exists is a memoized storage.Store.Exists.
func (f *Fetcher) Exists(ctx context.Context, key string) (bool, error) {
	return memoize(ctx, f, "exists", []string{key}, func() (bool, error) {
		return f.store.Exists(ctx, key)
	})
}
