package resolver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/metric"
	"github.com/navith/genreguide/pkg/cache"
	"github.com/navith/genreguide/storage"
	"github.com/navith/genreguide/testutil"
)

func newTestResolver(t *testing.T, store storage.Store, opts ...Option) *Resolver {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testutil.CatalogToday })}, opts...)
	r, err := New(store, DefaultConfig(), opts...)
	require.NoError(t, err)
	return r
}

func names(subgenres []*Subgenre) []string {
	out := make([]string, len(subgenres))
	for i, s := range subgenres {
		out[i] = s.Name()
	}
	return out
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Fetch = cache.Config{Enabled: true, MaxSize: -1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	_, err = New(testutil.NewCatalogStore(t), cfg)
	assert.Error(t, err)
}

func TestResolver_AllSubgenres(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))

	all, err := r.AllSubgenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Brostep", "Drum & Bass", "Drumstep", "Dubstep", "Future Bass",
		"Grime", "Loop A", "Loop B", "Odd Genre", "UK Hip-Hop",
	}, names(all))
}

func TestResolver_AllGenres(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))

	genres, err := r.AllGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Drum & Bass", "Dubstep", "Future Bass", "Odd Genre", "UK Hip-Hop"}, names(genres))

	for _, g := range genres {
		isGenre, err := g.IsGenre(context.Background())
		require.NoError(t, err)
		assert.True(t, isGenre, g.Name())
	}
}

func TestResolver_Subgenre(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	sub, err := r.Subgenre(ctx, "Drumstep")
	require.NoError(t, err)
	assert.Equal(t, "Drumstep", sub.Name())

	_, err = r.Subgenre(ctx, "Polka Step")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Equal(t, "Polka Step is not a valid subgenre!", err.Error())
}

func TestResolver_Track(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	track, err := r.Track(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", track.ID())

	_, err = r.Track(ctx, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, code)
}

func TestResolver_StoreFailurePropagates(t *testing.T) {
	store := testutil.NewCatalogStore(t)
	store.FailWith = func(string) error {
		return errors.WrapTransient(errors.ErrStorageUnavailable, "test", "Fail", "store down")
	}
	r := newTestResolver(t, store)

	_, err := r.AllSubgenres(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))

	_, err = r.Track(context.Background(), "t1")
	assert.True(t, errors.IsTransient(err))
}

func TestResolver_WithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	store := testutil.NewCatalogStore(t)
	r := newTestResolver(t, store, WithMetrics(registry))

	_, err := r.AllGenres(context.Background())
	require.NoError(t, err)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["genreguide_store_operations_total"], "store operations recorded: %v", found)
}

func TestResolver_ConcurrentResolution(t *testing.T) {
	store := testutil.NewCatalogStore(t)
	r := newTestResolver(t, store)
	ctx := context.Background()

	// Warm the cache so the concurrent phase must not reach the store.
	_, err := r.AllSubgenres(ctx)
	require.NoError(t, err)
	store.Reset()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			all, err := r.AllSubgenres(ctx)
			if err != nil {
				errs <- err
				return
			}
			if len(all) != 10 {
				errs <- fmt.Errorf("goroutine %d: got %d subgenres", i, len(all))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, 0, store.TotalCalls())
}
