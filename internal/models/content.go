// Package models defines the normalized content records shared by the
// lookup adapter, the cache and the presentation layer.
package models

import "fmt"

// MediaKind distinguishes movies from TV shows. The string values are part
// of the media identifier format and must not change.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// ContentItem is one normalized search/listing result. Instances are treated
// as immutable once produced by the lookup adapter.
type ContentItem struct {
	ID          int64
	Kind        MediaKind
	Title       string
	Overview    string
	PosterPath  string
	Rating      float64
	ReleaseDate string
	Popularity  float64
}

// MediaID returns the stable cross-surface identifier "<kind>_<id>".
func (c ContentItem) MediaID() string {
	return fmt.Sprintf("%s_%d", c.Kind, c.ID)
}

// ContentDetail is the full record for a single title. It is fetched on
// demand for the currently rendered result and never cached.
type ContentDetail struct {
	ContentItem

	Genres       []string
	BackdropPath string
	Runtime      int
	Status       string
	Tagline      string
}

// ResultSet is an ordered, length-capped list of results from one query.
type ResultSet []ContentItem
