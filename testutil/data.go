package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/navith/genreguide/storage"
	"github.com/navith/genreguide/storage/memstore"
)

// CatalogToday is the "today" the catalog fixture is built around; tracks are
// dated up to two days before it.
var CatalogToday = time.Date(2019, 3, 5, 12, 0, 0, 0, time.UTC)

// Catalog returns a small taxonomy and track list covering the shapes the
// resolvers handle: genres with both foreground colors, a genre with an
// unsupported foreground, multi-parent subgenres, an origin cycle, nested and
// mixed subgenre expressions, and a reference to a subgenre that does not
// exist.
func Catalog() *storage.Dataset {
	return &storage.Dataset{
		Subgenres: []storage.SubgenreRecord{
			{Name: "Dubstep", IsGenre: true, Color: []string{"#8e8e8e", "#ffffff"},
				Subgenres: []string{"Brostep", "Drumstep"}},
			{Name: "UK Hip-Hop", IsGenre: true, Color: []string{"#e6a800", "#000000"},
				Subgenres: []string{"Grime"}},
			{Name: "Drum & Bass", IsGenre: true, Color: []string{"#ffd700", "#000000"},
				Subgenres: []string{"Drumstep"}},
			{Name: "Future Bass", IsGenre: true, Color: []string{"#9f6bff", "#FFFFFF"}},
			{Name: "Odd Genre", IsGenre: true, Color: []string{"#00ff00", "#123456"}},
			{Name: "Brostep", Genre: "Dubstep", Origins: []string{"Dubstep"}},
			{Name: "Drumstep", Genre: "Dubstep", Origins: []string{"Dubstep", "Drum & Bass"}},
			{Name: "Grime", Genre: "UK Hip-Hop", Origins: []string{"UK Hip-Hop"}},
			{Name: "Loop A", Genre: "Dubstep", Origins: []string{"Loop B"}, Subgenres: []string{"Loop B"}},
			{Name: "Loop B", Genre: "Dubstep", Origins: []string{"Loop A"}, Subgenres: []string{"Loop A"}},
		},
		Tracks: []storage.TrackRecord{
			{ID: "t0", Name: "Old One", Artist: "Archive", Label: "Vault", Release: "2019-02-20",
				Subgenre: []byte(`"Dubstep"`)},
			{ID: "t1", Name: "Bangarang", Artist: "Skrillex", Label: "OWSLA", Release: "2019-03-01",
				Subgenre: []byte(`"Brostep"`)},
			{ID: "t2", Name: "Scary", Artist: "Skrillex", Label: "OWSLA", Release: "2019-03-01",
				Subgenre: []byte(`["Brostep", ">", "Dubstep"]`)},
			{ID: "t3", Name: "Mixed Up", Artist: "Various", Label: "Nomad", Release: "2019-03-02",
				Subgenre: []byte(`[["Grime", "|", "Drumstep"], ">", "Ghost Genre"]`)},
			{ID: "t4", Name: "Shimmer", Artist: "Flume", Label: "Future Classic", Release: "2019-03-04",
				Subgenre: []byte(`["Future Bass", "~", "Brostep"]`)},
			{ID: "t5", Name: "Roll", Artist: "Noisia", Label: "Vision", Release: "2019-03-04",
				Subgenre: []byte(`"Drum & Bass"`)},
			{ID: "t6", Name: "Weird", Artist: "Unknown", Label: "None", Release: "2019-03-04",
				Subgenre: []byte(`"Odd Genre"`)},
		},
	}
}

// NewCatalogStore returns a counting store loaded with Catalog.
func NewCatalogStore(t testing.TB) *MockStore {
	t.Helper()
	backend := memstore.New()
	if err := storage.Load(context.Background(), backend, Catalog()); err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return NewMockStore(backend)
}
