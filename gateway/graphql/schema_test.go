package graphql

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/resolver"
	catalog "github.com/navith/genreguide/testutil"
)

func TestLoadSDL(t *testing.T) {
	schema, err := LoadSDL()
	require.NoError(t, err)

	query := schema.Query
	require.NotNil(t, query)
	for _, field := range []string{"allSubgenres", "subgenre", "allGenres", "tracks", "track"} {
		assert.NotNil(t, query.Fields.ForName(field), field)
	}

	tracks := query.Fields.ForName("tracks")
	assert.Equal(t, "true", tracks.Arguments.ForName("newestFirst").DefaultValue.String())
	assert.Equal(t, "100", tracks.Arguments.ForName("limit").DefaultValue.String())

	fieldNames := func(typeName string) []string {
		var names []string
		for _, f := range schema.Types[typeName].Fields {
			names = append(names, f.Name)
		}
		return names
	}
	if diff := cmp.Diff([]string{"name", "isGenre", "genre", "color", "origins", "subgenres", "lineage"},
		fieldNames("Subgenre")); diff != "" {
		t.Errorf("Subgenre fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"id", "name", "artist", "recordLabel", "date", "subgenresRaw", "subgenresFlat"},
		fieldNames("Track")); diff != "" {
		t.Errorf("Track fields mismatch (-want +got):\n%s", diff)
	}

	rep := schema.Types["ColorRepresentation"]
	require.NotNil(t, rep)
	assert.NotNil(t, rep.EnumValues.ForName("HEX"))
	assert.NotNil(t, rep.EnumValues.ForName("TAILWIND_TOKEN"))
}

func TestNewSchema_BindsEveryField(t *testing.T) {
	r, err := resolver.New(catalog.NewCatalogStore(t), resolver.DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	// ParseSchema fails when a schema field has no matching method.
	_, err = NewSchema(r, cfg)
	require.NoError(t, err)
}

func TestDate_UnmarshalGraphQL(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalGraphQL("2019-03-01"))
	assert.Equal(t, time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC), d.Time)

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2019-03-01"`, string(data))

	assert.Error(t, d.UnmarshalGraphQL("2019-3-1"))
	assert.Error(t, d.UnmarshalGraphQL(20190301))
	assert.True(t, d.ImplementsGraphQLType("Date"))
	assert.False(t, d.ImplementsGraphQLType("Time"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty fills defaults", mutate: func(c *Config) { *c = Config{} }},
		{name: "relative path", mutate: func(c *Config) { c.Path = "graphql" }, wantErr: true},
		{name: "reserved path", mutate: func(c *Config) { c.Path = "/health" }, wantErr: true},
		{name: "bad timeout", mutate: func(c *Config) { c.TimeoutStr = "soon" }, wantErr: true},
		{name: "timeout too short", mutate: func(c *Config) { c.TimeoutStr = "1ms" }, wantErr: true},
		{name: "depth too large", mutate: func(c *Config) { c.MaxQueryDepth = 100 }, wantErr: true},
		{name: "negative parallelism", mutate: func(c *Config) { c.MaxParallelism = -1 }, wantErr: true},
		{name: "rate limit", mutate: func(c *Config) { c.RateLimit = 50; c.RateBurst = 5 }},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: true},
		{name: "negative burst", mutate: func(c *Config) { c.RateBurst = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/graphql", cfg.Path)
			assert.Equal(t, 30*time.Second, cfg.Timeout())
			assert.Equal(t, 10, cfg.MaxParallelism)
		})
	}
}

func TestConfig_RateBurstDefaultsToRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 2.5
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.RateBurst)
}
