package resolver

import (
	"context"
	"encoding/json"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/storage"
)

// Direction selects the edges a lineage walk follows.
type Direction string

const (
	// Ancestry follows origins.
	Ancestry Direction = "ORIGINS"
	// Descendants follows subgenres.
	Descendants Direction = "SUBGENRES"
)

// Lineage depth bounds.
const (
	DefaultLineageDepth = 8
	MaxLineageDepth     = 32
)

// Subgenre is a handle on one taxonomy node. It performs no existence check;
// fields of a node that is not stored resolve to zero values.
type Subgenre struct {
	name string
	r    *Resolver
}

// Name is the node's key.
func (s *Subgenre) Name() string {
	return s.name
}

func (s *Subgenre) field(ctx context.Context, field string) ([]byte, bool, error) {
	return s.r.fetcher.GetField(ctx, storage.SubgenreKey(s.name), field)
}

// IsGenre reports whether the node owns a color and a category.
func (s *Subgenre) IsGenre(ctx context.Context) (bool, error) {
	raw, ok, err := s.field(ctx, storage.FieldIsGenre)
	if err != nil || !ok {
		return false, err
	}
	var isGenre bool
	if err := json.Unmarshal(raw, &isGenre); err != nil {
		return false, dataError("IsGenre", storage.SubgenreKey(s.name), storage.FieldIsGenre, err)
	}
	return isGenre, nil
}

// Genre returns the genre the node belongs to and inherits its color from,
// or nil when none is stored.
func (s *Subgenre) Genre(ctx context.Context) (*Subgenre, error) {
	raw, ok, err := s.field(ctx, storage.FieldGenre)
	if err != nil || !ok {
		return nil, err
	}
	return s.r.subgenre(string(raw)), nil
}

// Color returns the color of the node's genre, or nil without a genre.
func (s *Subgenre) Color(ctx context.Context) (*Color, error) {
	genre, err := s.Genre(ctx)
	if err != nil || genre == nil {
		return nil, err
	}
	return &Color{genre: genre.name, colors: s.r.colors}, nil
}

// Origins returns the nodes this one comes directly from.
func (s *Subgenre) Origins(ctx context.Context) ([]*Subgenre, error) {
	return s.edges(ctx, storage.FieldOrigins)
}

// Subgenres returns the nodes that come directly from this one.
func (s *Subgenre) Subgenres(ctx context.Context) ([]*Subgenre, error) {
	return s.edges(ctx, storage.FieldSubgenres)
}

func (s *Subgenre) edges(ctx context.Context, field string) ([]*Subgenre, error) {
	raw, ok, err := s.field(ctx, field)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*Subgenre{}, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, dataError("edges", storage.SubgenreKey(s.name), field, err)
	}
	return s.r.subgenres(names), nil
}

// Lineage walks origins or subgenres breadth first up to maxDepth edges away
// and returns every node reached, nearest first, each once. The start node is
// never included, so cycles in the stored graph terminate.
func (s *Subgenre) Lineage(ctx context.Context, dir Direction, maxDepth int) ([]*Subgenre, error) {
	var next func(*Subgenre, context.Context) ([]*Subgenre, error)
	switch dir {
	case Ancestry:
		next = (*Subgenre).Origins
	case Descendants:
		next = (*Subgenre).Subgenres
	default:
		return nil, errors.InvalidArgument("unknown lineage direction %q", dir)
	}
	if maxDepth < 1 {
		return nil, errors.InvalidArgument("lineage depth must be at least 1, got %d", maxDepth)
	}
	if maxDepth > MaxLineageDepth {
		maxDepth = MaxLineageDepth
	}

	visited := map[string]bool{s.name: true}
	frontier := []*Subgenre{s}
	var reached []*Subgenre

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var following []*Subgenre
		for _, node := range frontier {
			neighbours, err := next(node, ctx)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbours {
				if visited[n.name] {
					continue
				}
				visited[n.name] = true
				reached = append(reached, n)
				following = append(following, n)
			}
		}
		frontier = following
	}
	return reached, nil
}
