package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/testutil"
)

func TestTokenFor(t *testing.T) {
	tests := []struct {
		genre string
		want  string
	}{
		{"Dubstep", "genre-dubstep"},
		{"UK Hip-Hop", "genre-uk-hiphop"},
		{"Drum & Bass", "genre-drum-bass"},
		{"  Future   Bass ", "genre-future-bass"},
		{"Hardcore 90s", "genre-hardcore-s"},
		{"Électro", "genre-électro"},
	}

	for _, tt := range tests {
		t.Run(tt.genre, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFor(tt.genre))
		})
	}
}

func TestParseRepresentation(t *testing.T) {
	rep, err := ParseRepresentation("HEX")
	require.NoError(t, err)
	assert.Equal(t, Hex, rep)

	rep, err = ParseRepresentation("TAILWIND_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, TailwindToken, rep)

	_, err = ParseRepresentation("RGB")
	assert.ErrorIs(t, err, errors.ErrUnsupportedRepresentation)
}

func TestColors_Hex(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	bg, err := r.Colors().Background(ctx, "Dubstep", Hex)
	require.NoError(t, err)
	assert.Equal(t, "#8e8e8e", bg)

	fg, err := r.Colors().Foreground(ctx, "Dubstep", Hex)
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", fg)

	// Stored values are returned as they are.
	fg, err = r.Colors().Foreground(ctx, "Future Bass", Hex)
	require.NoError(t, err)
	assert.Equal(t, "#FFFFFF", fg)
}

func TestColors_Tailwind(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	pair, err := r.Colors().Pair(ctx, "UK Hip-Hop", TailwindToken)
	require.NoError(t, err)
	assert.Equal(t, ColorPair{Background: "genre-uk-hiphop", Foreground: "black"}, pair)

	pair, err = r.Colors().Pair(ctx, "Future Bass", TailwindToken)
	require.NoError(t, err)
	assert.Equal(t, ColorPair{Background: "genre-future-bass", Foreground: "white"}, pair)
}

func TestColors_TailwindForegroundUnsupported(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	_, err := r.Colors().Foreground(ctx, "Odd Genre", TailwindToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedRepresentation)
	assert.Contains(t, err.Error(), "#123456")

	// The background token does not depend on the stored colors.
	bg, err := r.Colors().Background(ctx, "Odd Genre", TailwindToken)
	require.NoError(t, err)
	assert.Equal(t, "genre-odd-genre", bg)
}

func TestColors_UnknownRepresentation(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))

	_, err := r.Colors().Background(context.Background(), "Dubstep", Representation("CMYK"))
	assert.ErrorIs(t, err, errors.ErrUnsupportedRepresentation)

	_, err = r.Colors().Foreground(context.Background(), "Dubstep", Representation("CMYK"))
	assert.ErrorIs(t, err, errors.ErrUnsupportedRepresentation)
}

func TestColors_MissingColorIsDataError(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))

	_, err := r.Colors().Background(context.Background(), "Brostep", Hex)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.ErrorIs(t, err, errors.ErrDataCorrupted)
}

func TestColors_HexPairCached(t *testing.T) {
	store := testutil.NewCatalogStore(t)
	r := newTestResolver(t, store)
	ctx := context.Background()

	for range 5 {
		_, err := r.Colors().Pair(ctx, "Dubstep", Hex)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.Calls("GetField"))
}

func TestColorPair_MarshalJSON(t *testing.T) {
	data, err := ColorPair{Background: "#000000", Foreground: "#ffffff"}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["#000000","#ffffff"]`, string(data))
}

func TestColor_Handle(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	sub, err := r.Subgenre(ctx, "Grime")
	require.NoError(t, err)

	color, err := sub.Color(ctx)
	require.NoError(t, err)
	require.NotNil(t, color)
	assert.Equal(t, "UK Hip-Hop", color.FromGenre())

	bg, err := color.Background(ctx, Hex)
	require.NoError(t, err)
	assert.Equal(t, "#e6a800", bg)

	fg, err := color.Foreground(ctx, TailwindToken)
	require.NoError(t, err)
	assert.Equal(t, "black", fg)
}
