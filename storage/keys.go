package storage

import "time"

// Global sets.
const (
	SubgenresSet = "subgenres"
	GenresSet    = "genres"
)

// Fields of the subgenre hash.
const (
	FieldIsGenre   = "is_genre"
	FieldGenre     = "genre"
	FieldColor     = "color"
	FieldOrigins   = "origins"
	FieldSubgenres = "subgenres"
)

// Fields of the track hash.
const (
	FieldTrackName = "track"
	FieldArtist    = "artist"
	FieldLabel     = "label"
	FieldRelease   = "release"
	FieldSubgenre  = "subgenre"
)

// DateLayout is the layout of release dates and per-day list keys.
const DateLayout = "2006-01-02"

// SubgenreKey returns the hash key of a subgenre node.
func SubgenreKey(name string) string {
	return "subgenre:" + name
}

// TrackKey returns the hash key of a track.
func TrackKey(id string) string {
	return "track:" + id
}

// DateKey returns the key of the list of track ids released on day.
func DateKey(day time.Time) string {
	return "date:" + day.Format(DateLayout)
}
