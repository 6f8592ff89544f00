// Package resolver turns catalog queries into store reads.
//
// Entities are handles that carry only their key. Every field is read on
// demand through a memoizing Fetcher, so repeated and concurrent resolutions
// of the same field reach the store at most a few times over the life of the
// process.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/metric"
	"github.com/navith/genreguide/pkg/cache"
	"github.com/navith/genreguide/storage"
)

// Config sizes the resolver caches.
type Config struct {
	Fetch     cache.Config `json:"fetch"`
	HexColors cache.Config `json:"hex_colors"`
	Tokens    cache.Config `json:"tokens"`
}

// DefaultConfig returns the cache capacities used in production.
func DefaultConfig() Config {
	return Config{
		Fetch:     cache.Config{Enabled: true, MaxSize: 8192},
		HexColors: cache.Config{Enabled: true, MaxSize: 128},
		Tokens:    cache.Config{Enabled: true, MaxSize: 64},
	}
}

// Validate checks every cache section.
func (c Config) Validate() error {
	for name, section := range map[string]cache.Config{
		"fetch": c.Fetch, "hex_colors": c.HexColors, "tokens": c.Tokens,
	} {
		if err := section.Validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", fmt.Sprintf("cache %s", name))
		}
	}
	return nil
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now when defaulting the end of a track listing.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithMetrics exports cache statistics and store timings to registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// Resolver answers the root catalog queries.
type Resolver struct {
	fetcher  *Fetcher
	colors   *Colors
	now      func() time.Time
	registry *metric.MetricsRegistry
}

// New builds a resolver reading from store.
func New(store storage.Store, cfg Config, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	var metrics *metric.Metrics
	if r.registry != nil {
		metrics = r.registry.CoreMetrics()
	}

	fetchCache, err := cache.NewFromConfig[any](cfg.Fetch, cache.WithMetrics[any](r.registry, "fetch"))
	if err != nil {
		return nil, err
	}
	hexCache, err := cache.NewFromConfig[ColorPair](cfg.HexColors, cache.WithMetrics[ColorPair](r.registry, "hex_colors"))
	if err != nil {
		return nil, err
	}
	tokenCache, err := cache.NewFromConfig[string](cfg.Tokens, cache.WithMetrics[string](r.registry, "tokens"))
	if err != nil {
		return nil, err
	}

	r.fetcher = NewFetcher(store, fetchCache, metrics)
	r.colors = NewColors(r.fetcher, hexCache, tokenCache)
	return r, nil
}

// Colors exposes the color resolver.
func (r *Resolver) Colors() *Colors {
	return r.colors
}

// AllSubgenres returns every node of the taxonomy, sorted by name.
func (r *Resolver) AllSubgenres(ctx context.Context) ([]*Subgenre, error) {
	return r.setMembers(ctx, storage.SubgenresSet)
}

// AllGenres returns every node that owns a color and a category, sorted by name.
func (r *Resolver) AllGenres(ctx context.Context) ([]*Subgenre, error) {
	return r.setMembers(ctx, storage.GenresSet)
}

func (r *Resolver) setMembers(ctx context.Context, setKey string) ([]*Subgenre, error) {
	members, err := r.fetcher.Members(ctx, setKey)
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), members...)
	sort.Strings(names)
	return r.subgenres(names), nil
}

// Subgenre returns the named node, or InvalidArgument if it is not part of
// the taxonomy.
func (r *Resolver) Subgenre(ctx context.Context, name string) (*Subgenre, error) {
	ok, err := r.fetcher.IsMember(ctx, storage.SubgenresSet, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.InvalidArgument("%s is not a valid subgenre!", name)
	}
	return r.subgenre(name), nil
}

// Track returns the track with id, or NotFound.
func (r *Resolver) Track(ctx context.Context, id string) (*Track, error) {
	ok, err := r.fetcher.Exists(ctx, storage.TrackKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("There is no track with id %q!", id)
	}
	return r.track(id), nil
}

func (r *Resolver) subgenre(name string) *Subgenre {
	return &Subgenre{name: name, r: r}
}

func (r *Resolver) subgenres(names []string) []*Subgenre {
	handles := make([]*Subgenre, len(names))
	for i, name := range names {
		handles[i] = r.subgenre(name)
	}
	return handles
}

func (r *Resolver) track(id string) *Track {
	return &Track{id: id, r: r}
}

// dataError reports a stored value the resolvers cannot interpret.
func dataError(method, key, field string, err error) error {
	return errors.WrapFatal(fmt.Errorf("%w: %v", errors.ErrDataCorrupted, err), "resolver", method,
		fmt.Sprintf("decode %s %s", key, field))
}
