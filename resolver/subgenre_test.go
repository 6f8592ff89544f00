package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/testutil"
)

func TestSubgenre_Fields(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	sub, err := r.Subgenre(ctx, "Drumstep")
	require.NoError(t, err)

	isGenre, err := sub.IsGenre(ctx)
	require.NoError(t, err)
	assert.False(t, isGenre)

	genre, err := sub.Genre(ctx)
	require.NoError(t, err)
	require.NotNil(t, genre)
	assert.Equal(t, "Dubstep", genre.Name())

	origins, err := sub.Origins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dubstep", "Drum & Bass"}, names(origins))

	children, err := sub.Subgenres(ctx)
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.NotNil(t, children)
}

func TestSubgenre_GenreOfGenreIsItself(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	sub, err := r.Subgenre(ctx, "Dubstep")
	require.NoError(t, err)

	genre, err := sub.Genre(ctx)
	require.NoError(t, err)
	require.NotNil(t, genre)
	assert.Equal(t, "Dubstep", genre.Name())

	children, err := sub.Subgenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brostep", "Drumstep"}, names(children))
}

func TestSubgenre_UnstoredNode(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	ghost := r.subgenre("Ghost Genre")

	isGenre, err := ghost.IsGenre(ctx)
	require.NoError(t, err)
	assert.False(t, isGenre)

	genre, err := ghost.Genre(ctx)
	require.NoError(t, err)
	assert.Nil(t, genre)

	color, err := ghost.Color(ctx)
	require.NoError(t, err)
	assert.Nil(t, color)

	origins, err := ghost.Origins(ctx)
	require.NoError(t, err)
	assert.Empty(t, origins)
}

func TestSubgenre_Lineage(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	grime, err := r.Subgenre(ctx, "Grime")
	require.NoError(t, err)
	ancestors, err := grime.Lineage(ctx, Ancestry, DefaultLineageDepth)
	require.NoError(t, err)
	assert.Equal(t, []string{"UK Hip-Hop"}, names(ancestors))

	dubstep, err := r.Subgenre(ctx, "Dubstep")
	require.NoError(t, err)
	descendants, err := dubstep.Lineage(ctx, Descendants, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brostep", "Drumstep"}, names(descendants))
}

func TestSubgenre_LineageCycleTerminates(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	loop, err := r.Subgenre(ctx, "Loop A")
	require.NoError(t, err)

	reached, err := loop.Lineage(ctx, Ancestry, MaxLineageDepth+100)
	require.NoError(t, err)
	assert.Equal(t, []string{"Loop B"}, names(reached))
}

func TestSubgenre_LineageInvalid(t *testing.T) {
	r := newTestResolver(t, testutil.NewCatalogStore(t))
	ctx := context.Background()

	sub, err := r.Subgenre(ctx, "Brostep")
	require.NoError(t, err)

	_, err = sub.Lineage(ctx, Ancestry, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = sub.Lineage(ctx, Direction("SIDEWAYS"), 1)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}
