package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/storage"
)

// Track listing bounds.
const (
	DefaultTrackLimit = 100
	MaxTrackLimit     = 1000
	// futureDays lets the default end of a listing include tracks dated
	// slightly ahead of today.
	futureDays = 2
)

// annotateParallelism bounds concurrent color lookups for one track.
const annotateParallelism = 8

// TrackQuery selects a window of the catalog. Nil fields take their defaults.
type TrackQuery struct {
	After       *time.Time
	Before      *time.Time
	Limit       *int
	NewestFirst *bool
}

// Track is a handle on one catalog entry.
type Track struct {
	id string
	r  *Resolver
}

// ID is the track's key.
func (t *Track) ID() string {
	return t.id
}

func (t *Track) text(ctx context.Context, field string) (*string, error) {
	raw, ok, err := t.r.fetcher.GetField(ctx, storage.TrackKey(t.id), field)
	if err != nil || !ok {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// Name is the title of the track.
func (t *Track) Name(ctx context.Context) (*string, error) {
	return t.text(ctx, storage.FieldTrackName)
}

// Artist lists the artists of the track.
func (t *Track) Artist(ctx context.Context) (*string, error) {
	return t.text(ctx, storage.FieldArtist)
}

// RecordLabel lists the labels that released the track.
func (t *Track) RecordLabel(ctx context.Context) (*string, error) {
	return t.text(ctx, storage.FieldLabel)
}

// Date is the release date at midnight UTC.
func (t *Track) Date(ctx context.Context) (*time.Time, error) {
	raw, err := t.text(ctx, storage.FieldRelease)
	if err != nil || raw == nil {
		return nil, err
	}
	day, err := time.Parse(storage.DateLayout, *raw)
	if err != nil {
		return nil, dataError("Date", storage.TrackKey(t.id), storage.FieldRelease, err)
	}
	return &day, nil
}

// SubgenresRaw is the stored subgenre expression as JSON text.
func (t *Track) SubgenresRaw(ctx context.Context) (*string, error) {
	return t.text(ctx, storage.FieldSubgenre)
}

// Subgenres parses the stored subgenre expression. It is nil when none is
// stored.
func (t *Track) Subgenres(ctx context.Context) (Expression, error) {
	raw, ok, err := t.r.fetcher.GetField(ctx, storage.TrackKey(t.id), storage.FieldSubgenre)
	if err != nil || !ok {
		return nil, err
	}
	expr, err := ParseExpression(raw)
	if err != nil {
		return nil, dataError("Subgenres", storage.TrackKey(t.id), storage.FieldSubgenre, err)
	}
	return expr, nil
}

// FlatSubgenres is a flattened subgenre expression, optionally with the
// colors of each element.
type FlatSubgenres struct {
	Elements []string
	// Colors is parallel to Elements when requested: nil for delimiters,
	// the subgenre's colors otherwise.
	Colors []*ColorPair
}

// JSON renders the flat list, or [list, colors] when colors were requested.
func (f *FlatSubgenres) JSON() (string, error) {
	var doc any = f.Elements
	if f.Colors != nil {
		doc = []any{f.Elements, f.Colors}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SubgenresFlat flattens the track's subgenre expression and, when rep is
// not nil, resolves the colors of each element in rep. It is nil when no
// expression is stored.
func (t *Track) SubgenresFlat(ctx context.Context, rep *Representation) (*FlatSubgenres, error) {
	expr, err := t.Subgenres(ctx)
	if err != nil || expr == nil {
		return nil, err
	}

	flat := &FlatSubgenres{Elements: Flatten(expr)}
	if rep == nil {
		return flat, nil
	}
	flat.Colors, err = t.r.AnnotateColors(ctx, flat.Elements, *rep)
	if err != nil {
		return nil, err
	}
	return flat, nil
}

// AnnotateColors resolves the colors of each element of a flattened
// expression. Delimiters get nil. Names missing from the taxonomy get a fixed
// black and white pair instead of an error.
func (r *Resolver) AnnotateColors(ctx context.Context, flat []string, rep Representation) ([]*ColorPair, error) {
	if _, err := ParseRepresentation(string(rep)); err != nil {
		return nil, err
	}

	colors := make([]*ColorPair, len(flat))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(annotateParallelism)

	for i, element := range flat {
		if IsDelimiter(element) {
			continue
		}
		g.Go(func() error {
			pair, err := r.subgenreColors(gctx, element, rep)
			if err != nil {
				return err
			}
			colors[i] = &pair
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return colors, nil
}

func (r *Resolver) subgenreColors(ctx context.Context, name string, rep Representation) (ColorPair, error) {
	known, err := r.fetcher.IsMember(ctx, storage.SubgenresSet, name)
	if err != nil {
		return ColorPair{}, err
	}
	if !known {
		return fallbackPair(rep), nil
	}

	genre, err := r.subgenre(name).Genre(ctx)
	if err != nil {
		return ColorPair{}, err
	}
	if genre == nil {
		return ColorPair{}, dataError("subgenreColors", storage.SubgenreKey(name), storage.FieldGenre,
			fmt.Errorf("subgenre %q has no genre", name))
	}
	return r.colors.Pair(ctx, genre.name, rep)
}

// today is the current civil date at midnight UTC.
func (r *Resolver) today() time.Time {
	y, m, d := r.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ListTracks returns track ids day by day from the per-day lists, keeping
// each day's stored order and stopping once the limit is reached.
//
// With After set, days from After to Before inclusive are read, newest first
// unless NewestFirst is false. Without After the listing must be newest first
// and reads backwards from Before until the limit is reached; only the
// context bounds that scan.
func (r *Resolver) ListTracks(ctx context.Context, q TrackQuery) ([]*Track, error) {
	before := r.today().AddDate(0, 0, futureDays)
	if q.Before != nil {
		before = civil(*q.Before)
	}

	limit := DefaultTrackLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit < 0 {
		return nil, errors.InvalidArgument("limit must not be negative, got %d", limit)
	}
	limit = min(limit, MaxTrackLimit)

	newestFirst := true
	if q.NewestFirst != nil {
		newestFirst = *q.NewestFirst
	}

	if q.After == nil && !newestFirst {
		return nil, errors.InvalidArgument("newest_first must be true when after is not specified")
	}

	tracks := make([]*Track, 0, limit)
	if limit == 0 {
		return tracks, nil
	}

	day, step := before, -1
	var last *time.Time
	if q.After != nil {
		after := civil(*q.After)
		if after.After(before) {
			return tracks, nil
		}
		last = &after
		if !newestFirst {
			day, step = after, 1
			last = &before
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ids []string
		var err error
		if last == nil {
			ids, err = r.fetcher.ScanList(ctx, storage.DateKey(day))
		} else {
			ids, err = r.fetcher.RangeList(ctx, storage.DateKey(day), 0, -1)
		}
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			tracks = append(tracks, r.track(id))
			if len(tracks) >= limit {
				return tracks, nil
			}
		}

		if last != nil && day.Equal(*last) {
			return tracks, nil
		}
		day = day.AddDate(0, 0, step)
	}
}
