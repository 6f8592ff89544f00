package graphql

import (
	"context"
	"fmt"
	"time"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/navith/genreguide/resolver"
	"github.com/navith/genreguide/storage"
)

// Date is the Date scalar, a calendar day at midnight UTC.
type Date struct {
	time.Time
}

// ImplementsGraphQLType binds Date to the Date scalar.
func (Date) ImplementsGraphQLType(name string) bool {
	return name == "Date"
}

// UnmarshalGraphQL accepts YYYY-MM-DD strings.
func (d *Date) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return fmt.Errorf("Date must be a YYYY-MM-DD string, got %T", input)
	}
	t, err := time.Parse(storage.DateLayout, s)
	if err != nil {
		return fmt.Errorf("Date must be a YYYY-MM-DD string, got %q", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the day as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(storage.DateLayout) + `"`), nil
}

type queryResolver struct {
	r *resolver.Resolver
}

func (q *queryResolver) AllSubgenres(ctx context.Context) ([]*subgenreResolver, error) {
	subgenres, err := q.r.AllSubgenres(ctx)
	if err != nil {
		return nil, wrapError(ctx, err, "allSubgenres")
	}
	return wrapSubgenres(subgenres), nil
}

func (q *queryResolver) Subgenre(ctx context.Context, args struct{ Name string }) (*subgenreResolver, error) {
	s, err := q.r.Subgenre(ctx, args.Name)
	if err != nil {
		return nil, wrapError(ctx, err, "subgenre")
	}
	return &subgenreResolver{s: s}, nil
}

func (q *queryResolver) AllGenres(ctx context.Context) ([]*subgenreResolver, error) {
	genres, err := q.r.AllGenres(ctx)
	if err != nil {
		return nil, wrapError(ctx, err, "allGenres")
	}
	return wrapSubgenres(genres), nil
}

// Arguments with a schema default arrive non-null and bind to value types.
type tracksArgs struct {
	Before      *Date
	After       *Date
	NewestFirst bool
	Limit       int32
}

func (q *queryResolver) Tracks(ctx context.Context, args tracksArgs) ([]*trackResolver, error) {
	var query resolver.TrackQuery
	if args.Before != nil {
		query.Before = &args.Before.Time
	}
	if args.After != nil {
		query.After = &args.After.Time
	}
	limit := int(args.Limit)
	query.NewestFirst = &args.NewestFirst
	query.Limit = &limit

	tracks, err := q.r.ListTracks(ctx, query)
	if err != nil {
		return nil, wrapError(ctx, err, "tracks")
	}
	out := make([]*trackResolver, len(tracks))
	for i, t := range tracks {
		out[i] = &trackResolver{t: t}
	}
	return out, nil
}

func (q *queryResolver) Track(ctx context.Context, args struct{ ID graphqlgo.ID }) (*trackResolver, error) {
	t, err := q.r.Track(ctx, string(args.ID))
	if err != nil {
		return nil, wrapError(ctx, err, "track")
	}
	return &trackResolver{t: t}, nil
}

type subgenreResolver struct {
	s *resolver.Subgenre
}

func wrapSubgenres(subgenres []*resolver.Subgenre) []*subgenreResolver {
	out := make([]*subgenreResolver, len(subgenres))
	for i, s := range subgenres {
		out[i] = &subgenreResolver{s: s}
	}
	return out
}

func (s *subgenreResolver) Name() string {
	return s.s.Name()
}

func (s *subgenreResolver) IsGenre(ctx context.Context) (bool, error) {
	isGenre, err := s.s.IsGenre(ctx)
	return isGenre, wrapError(ctx, err, "Subgenre.isGenre")
}

func (s *subgenreResolver) Genre(ctx context.Context) (*subgenreResolver, error) {
	genre, err := s.s.Genre(ctx)
	if err != nil || genre == nil {
		return nil, wrapError(ctx, err, "Subgenre.genre")
	}
	return &subgenreResolver{s: genre}, nil
}

func (s *subgenreResolver) Color(ctx context.Context) (*colorResolver, error) {
	color, err := s.s.Color(ctx)
	if err != nil || color == nil {
		return nil, wrapError(ctx, err, "Subgenre.color")
	}
	return &colorResolver{c: color}, nil
}

func (s *subgenreResolver) Origins(ctx context.Context) ([]*subgenreResolver, error) {
	origins, err := s.s.Origins(ctx)
	if err != nil {
		return nil, wrapError(ctx, err, "Subgenre.origins")
	}
	return wrapSubgenres(origins), nil
}

func (s *subgenreResolver) Subgenres(ctx context.Context) ([]*subgenreResolver, error) {
	children, err := s.s.Subgenres(ctx)
	if err != nil {
		return nil, wrapError(ctx, err, "Subgenre.subgenres")
	}
	return wrapSubgenres(children), nil
}

type lineageArgs struct {
	Direction string
	MaxDepth  int32
}

func (s *subgenreResolver) Lineage(ctx context.Context, args lineageArgs) ([]*subgenreResolver, error) {
	reached, err := s.s.Lineage(ctx, resolver.Direction(args.Direction), int(args.MaxDepth))
	if err != nil {
		return nil, wrapError(ctx, err, "Subgenre.lineage")
	}
	return wrapSubgenres(reached), nil
}

type colorResolver struct {
	c *resolver.Color
}

type representationArgs struct {
	Representation string
}

func (c *colorResolver) FromGenre() string {
	return c.c.FromGenre()
}

func (c *colorResolver) Foreground(ctx context.Context, args representationArgs) (string, error) {
	rep, err := resolver.ParseRepresentation(args.Representation)
	if err != nil {
		return "", wrapError(ctx, err, "Color.foreground")
	}
	fg, err := c.c.Foreground(ctx, rep)
	return fg, wrapError(ctx, err, "Color.foreground")
}

func (c *colorResolver) Background(ctx context.Context, args representationArgs) (string, error) {
	rep, err := resolver.ParseRepresentation(args.Representation)
	if err != nil {
		return "", wrapError(ctx, err, "Color.background")
	}
	bg, err := c.c.Background(ctx, rep)
	return bg, wrapError(ctx, err, "Color.background")
}

type trackResolver struct {
	t *resolver.Track
}

func (t *trackResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(t.t.ID())
}

func (t *trackResolver) Name(ctx context.Context) (*string, error) {
	name, err := t.t.Name(ctx)
	return name, wrapError(ctx, err, "Track.name")
}

func (t *trackResolver) Artist(ctx context.Context) (*string, error) {
	artist, err := t.t.Artist(ctx)
	return artist, wrapError(ctx, err, "Track.artist")
}

func (t *trackResolver) RecordLabel(ctx context.Context) (*string, error) {
	label, err := t.t.RecordLabel(ctx)
	return label, wrapError(ctx, err, "Track.recordLabel")
}

func (t *trackResolver) Date(ctx context.Context) (*Date, error) {
	day, err := t.t.Date(ctx)
	if err != nil || day == nil {
		return nil, wrapError(ctx, err, "Track.date")
	}
	return &Date{Time: *day}, nil
}

func (t *trackResolver) SubgenresRaw(ctx context.Context) (*string, error) {
	raw, err := t.t.SubgenresRaw(ctx)
	return raw, wrapError(ctx, err, "Track.subgenresRaw")
}

func (t *trackResolver) SubgenresFlat(ctx context.Context, args struct{ AndColors *string }) (*flatResolver, error) {
	var rep *resolver.Representation
	if args.AndColors != nil {
		parsed, err := resolver.ParseRepresentation(*args.AndColors)
		if err != nil {
			return nil, wrapError(ctx, err, "Track.subgenresFlat")
		}
		rep = &parsed
	}

	flat, err := t.t.SubgenresFlat(ctx, rep)
	if err != nil || flat == nil {
		return nil, wrapError(ctx, err, "Track.subgenresFlat")
	}
	return &flatResolver{f: flat}, nil
}

type flatResolver struct {
	f *resolver.FlatSubgenres
}

func (f *flatResolver) Elements() []string {
	return f.f.Elements
}

func (f *flatResolver) Colors() *[]*colorPairResolver {
	if f.f.Colors == nil {
		return nil
	}
	out := make([]*colorPairResolver, len(f.f.Colors))
	for i, pair := range f.f.Colors {
		if pair != nil {
			out[i] = &colorPairResolver{p: *pair}
		}
	}
	return &out
}

func (f *flatResolver) JSON(ctx context.Context) (string, error) {
	doc, err := f.f.JSON()
	return doc, wrapError(ctx, err, "FlatSubgenres.json")
}

type colorPairResolver struct {
	p resolver.ColorPair
}

func (c *colorPairResolver) Background() string {
	return c.p.Background
}

func (c *colorPairResolver) Foreground() string {
	return c.p.Foreground
}
