package tmdb

import (
	"time"

	"vlopbot/internal/models"
)

const defaultTimeout = 10 * time.Second

// rawItem covers both movie and TV list entries; which of the paired fields
// is populated depends on the endpoint.
type rawItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	MediaType    string  `json:"media_type"`
}

type listResponse struct {
	Results []rawItem `json:"results"`
}

type rawDetail struct {
	rawItem

	BackdropPath string `json:"backdrop_path"`
	Genres       []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Runtime        int    `json:"runtime"`
	EpisodeRunTime []int  `json:"episode_run_time"`
	Status         string `json:"status"`
	Tagline        string `json:"tagline"`
}

// normalize maps the provider shape to a ContentItem, resolving the
// title/name and release_date/first_air_date splits by kind.
func (r rawItem) normalize(kind models.MediaKind) models.ContentItem {
	item := models.ContentItem{
		ID:          r.ID,
		Kind:        kind,
		Title:       r.Title,
		Overview:    r.Overview,
		PosterPath:  r.PosterPath,
		Rating:      r.VoteAverage,
		ReleaseDate: r.ReleaseDate,
		Popularity:  r.Popularity,
	}
	if kind == models.KindTV {
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
	}
	return item
}
