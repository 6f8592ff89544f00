package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/navith/genreguide/errors"
)

// Dataset is a catalog in its file form, loaded into a backend by Load.
type Dataset struct {
	Subgenres []SubgenreRecord `json:"subgenres"`
	Tracks    []TrackRecord    `json:"tracks"`
}

// SubgenreRecord is one taxonomy node.
type SubgenreRecord struct {
	Name      string   `json:"name"`
	IsGenre   bool     `json:"is_genre"`
	Genre     string   `json:"genre"`
	Color     []string `json:"color,omitempty"` // [background, foreground], genres only
	Origins   []string `json:"origins"`
	Subgenres []string `json:"subgenres"`
}

// TrackRecord is one catalog entry. Subgenre holds the subgenre expression
// exactly as it is stored.
type TrackRecord struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Artist   string          `json:"artist"`
	Label    string          `json:"label"`
	Release  string          `json:"release"`
	Subgenre json.RawMessage `json:"subgenre"`
}

// ParseDataset decodes a dataset from JSON or YAML.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, errors.WrapInvalid(err, "Dataset", "ParseDataset", "decode dataset")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks the records for the shape the resolvers rely on.
func (ds *Dataset) Validate() error {
	seen := make(map[string]bool, len(ds.Subgenres))
	for _, s := range ds.Subgenres {
		if s.Name == "" {
			return errors.WrapInvalid(errors.ErrInvalidData, "Dataset", "Validate", "subgenre without a name")
		}
		if seen[s.Name] {
			return errors.WrapInvalid(errors.ErrInvalidData, "Dataset", "Validate",
				fmt.Sprintf("duplicate subgenre %q", s.Name))
		}
		seen[s.Name] = true
		if s.IsGenre && len(s.Color) != 2 {
			return errors.WrapInvalid(errors.ErrInvalidData, "Dataset", "Validate",
				fmt.Sprintf("genre %q needs a [background, foreground] color", s.Name))
		}
	}

	for _, t := range ds.Tracks {
		if t.ID == "" {
			return errors.WrapInvalid(errors.ErrInvalidData, "Dataset", "Validate", "track without an id")
		}
		if _, err := time.Parse(DateLayout, t.Release); err != nil {
			return errors.WrapInvalid(err, "Dataset", "Validate",
				fmt.Sprintf("track %q has release %q", t.ID, t.Release))
		}
		if len(t.Subgenre) > 0 && !json.Valid(t.Subgenre) {
			return errors.WrapInvalid(errors.ErrInvalidData, "Dataset", "Validate",
				fmt.Sprintf("track %q has a malformed subgenre expression", t.ID))
		}
	}
	return nil
}

// Load writes the dataset into w. Tracks are appended to their day lists in
// dataset order.
func Load(ctx context.Context, w Writer, ds *Dataset) error {
	for _, s := range ds.Subgenres {
		fields, err := s.fields()
		if err != nil {
			return err
		}
		if err := w.SetFields(ctx, SubgenreKey(s.Name), fields); err != nil {
			return err
		}
		if err := w.AddMembers(ctx, SubgenresSet, s.Name); err != nil {
			return err
		}
		if s.IsGenre {
			if err := w.AddMembers(ctx, GenresSet, s.Name); err != nil {
				return err
			}
		}
	}

	for _, t := range ds.Tracks {
		release, err := time.Parse(DateLayout, t.Release)
		if err != nil {
			return errors.WrapInvalid(err, "Dataset", "Load", fmt.Sprintf("parse release of %q", t.ID))
		}
		if err := w.SetFields(ctx, TrackKey(t.ID), t.fields()); err != nil {
			return err
		}
		if err := w.AppendList(ctx, DateKey(release), t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s SubgenreRecord) fields() (map[string][]byte, error) {
	isGenre, _ := json.Marshal(s.IsGenre)
	origins, err := json.Marshal(nonNil(s.Origins))
	if err != nil {
		return nil, errors.WrapInvalid(err, "Dataset", "Load", "encode origins")
	}
	subgenres, err := json.Marshal(nonNil(s.Subgenres))
	if err != nil {
		return nil, errors.WrapInvalid(err, "Dataset", "Load", "encode subgenres")
	}

	genre := s.Genre
	if genre == "" {
		genre = s.Name
	}

	fields := map[string][]byte{
		FieldIsGenre:   isGenre,
		FieldGenre:     []byte(genre),
		FieldOrigins:   origins,
		FieldSubgenres: subgenres,
	}
	if len(s.Color) > 0 {
		color, err := json.Marshal(s.Color)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Dataset", "Load", "encode color")
		}
		fields[FieldColor] = color
	}
	return fields, nil
}

func (t TrackRecord) fields() map[string][]byte {
	fields := map[string][]byte{
		FieldTrackName: []byte(t.Name),
		FieldArtist:    []byte(t.Artist),
		FieldLabel:     []byte(t.Label),
		FieldRelease:   []byte(t.Release),
	}
	if len(t.Subgenre) > 0 {
		fields[FieldSubgenre] = []byte(t.Subgenre)
	}
	return fields
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
