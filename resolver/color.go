package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/pkg/cache"
	"github.com/navith/genreguide/storage"
)

// Representation is a format a color can be rendered in.
type Representation string

const (
	// Hex is the stored form, such as "#ec00db".
	Hex Representation = "HEX"
	// TailwindToken is a design-system color name, such as "genre-ambient".
	TailwindToken Representation = "TAILWIND_TOKEN"
)

// ParseRepresentation validates a representation name.
func ParseRepresentation(s string) (Representation, error) {
	switch r := Representation(s); r {
	case Hex, TailwindToken:
		return r, nil
	}
	return "", errors.UnsupportedRepresentation("unknown color representation %q", s)
}

// ColorPair is a background and the foreground drawn on it.
type ColorPair struct {
	Background string
	Foreground string
}

// MarshalJSON encodes the pair as [background, foreground].
func (p ColorPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Background, p.Foreground})
}

// fallbackPair is used for subgenre names that are not in the taxonomy.
func fallbackPair(rep Representation) ColorPair {
	if rep == TailwindToken {
		return ColorPair{Background: "black", Foreground: "white"}
	}
	return ColorPair{Background: "#000000", Foreground: "#ffffff"}
}

var hyphenRun = regexp.MustCompile(`-+`)

// TokenFor derives the background token of a genre: lowercase words stripped
// to their letters, joined by hyphens, prefixed with "genre-".
func TokenFor(genre string) string {
	words := strings.Fields(strings.ToLower(genre))
	for i, word := range words {
		words[i] = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, word)
	}
	return "genre-" + hyphenRun.ReplaceAllString(strings.Join(words, "-"), "-")
}

// Colors resolves genre colors. Stored hex pairs and derived tokens are
// cached per genre name.
type Colors struct {
	fetcher *Fetcher
	hex     cache.Cache[ColorPair]
	tokens  cache.Cache[string]
}

// NewColors builds a color resolver over fetcher.
func NewColors(fetcher *Fetcher, hex cache.Cache[ColorPair], tokens cache.Cache[string]) *Colors {
	return &Colors{fetcher: fetcher, hex: hex, tokens: tokens}
}

// hexPair reads the stored [background, foreground] list of a genre.
func (c *Colors) hexPair(ctx context.Context, genre string) (ColorPair, error) {
	if pair, ok := c.hex.Get(genre); ok {
		return pair, nil
	}

	key := storage.SubgenreKey(genre)
	raw, ok, err := c.fetcher.GetField(ctx, key, storage.FieldColor)
	if err != nil {
		return ColorPair{}, err
	}
	if !ok {
		return ColorPair{}, dataError("hexPair", key, storage.FieldColor, fmt.Errorf("no color stored for %q", genre))
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return ColorPair{}, dataError("hexPair", key, storage.FieldColor, err)
	}
	if len(list) != 2 {
		return ColorPair{}, dataError("hexPair", key, storage.FieldColor,
			fmt.Errorf("expected 2 colors, got %d", len(list)))
	}

	pair := ColorPair{Background: list[0], Foreground: list[1]}
	_, _ = c.hex.Set(genre, pair)
	return pair, nil
}

func (c *Colors) token(genre string) string {
	if token, ok := c.tokens.Get(genre); ok {
		return token
	}
	token := TokenFor(genre)
	_, _ = c.tokens.Set(genre, token)
	return token
}

// Background returns the background color of genre in rep.
func (c *Colors) Background(ctx context.Context, genre string, rep Representation) (string, error) {
	switch rep {
	case Hex:
		pair, err := c.hexPair(ctx, genre)
		return pair.Background, err
	case TailwindToken:
		return c.token(genre), nil
	}
	return "", errors.UnsupportedRepresentation("unknown representation %q for background color", rep)
}

// Foreground returns the foreground color of genre in rep. Only white and
// black foregrounds have a token.
func (c *Colors) Foreground(ctx context.Context, genre string, rep Representation) (string, error) {
	switch rep {
	case Hex:
		pair, err := c.hexPair(ctx, genre)
		return pair.Foreground, err
	case TailwindToken:
		pair, err := c.hexPair(ctx, genre)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(pair.Foreground) {
		case "#ffffff":
			return "white", nil
		case "#000000":
			return "black", nil
		}
		return "", errors.UnsupportedRepresentation(
			"the foreground color represented by hex %s is neither white nor black", pair.Foreground)
	}
	return "", errors.UnsupportedRepresentation("unknown representation %q for foreground color", rep)
}

// Pair returns both colors of genre in rep.
func (c *Colors) Pair(ctx context.Context, genre string, rep Representation) (ColorPair, error) {
	background, err := c.Background(ctx, genre, rep)
	if err != nil {
		return ColorPair{}, err
	}
	foreground, err := c.Foreground(ctx, genre, rep)
	if err != nil {
		return ColorPair{}, err
	}
	return ColorPair{Background: background, Foreground: foreground}, nil
}

// Color is the color of one genre, resolved lazily.
type Color struct {
	genre  string
	colors *Colors
}

// FromGenre is the name of the genre the color belongs to.
func (c *Color) FromGenre() string {
	return c.genre
}

// Foreground returns the text color drawn on the genre's background.
func (c *Color) Foreground(ctx context.Context, rep Representation) (string, error) {
	return c.colors.Foreground(ctx, c.genre, rep)
}

// Background returns the genre's background color.
func (c *Color) Background(ctx context.Context, rep Representation) (string, error) {
	return c.colors.Background(ctx, c.genre, rep)
}
