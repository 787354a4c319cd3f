package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlopbot/internal/models"
)

func resultJSON(entries ...string) string {
	out := `{"results":[`
	for i, e := range entries {
		if i > 0 {
			out += ","
		}
		out += e
	}
	return out + `]}`
}

func movieEntry(id int, title string, popularity float64) string {
	return fmt.Sprintf(`{"id":%d,"title":%q,"overview":"o","release_date":"2020-01-01","popularity":%g,"vote_average":7.1}`, id, title, popularity)
}

func tvEntry(id int, name string, popularity float64) string {
	return fmt.Sprintf(`{"id":%d,"name":%q,"overview":"o","first_air_date":"2019-05-05","popularity":%g,"vote_average":8.2}`, id, name, popularity)
}

func TestSearchMergesRanksAndTruncates(t *testing.T) {
	// 7 movie hits + 3 show hits must collapse to the 5 most popular.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "false", r.URL.Query().Get("include_adult"))

		switch r.URL.Path {
		case "/search/movie":
			fmt.Fprint(w, resultJSON(
				movieEntry(1, "Batman", 90),
				movieEntry(2, "Batman Returns", 70),
				movieEntry(3, "Batman Forever", 50),
				movieEntry(4, "Batman & Robin", 30),
				movieEntry(5, "Batman Begins", 85),
				movieEntry(6, "The Dark Knight", 95),
				movieEntry(7, "Batman 1966", 5),
			))
		case "/search/tv":
			fmt.Fprint(w, resultJSON(
				tvEntry(10, "Batman: TAS", 80),
				tvEntry(11, "Batwoman", 20),
				tvEntry(12, "Gotham", 60),
			))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", nil)
	results, err := c.Search(context.Background(), "batman")
	require.NoError(t, err)

	require.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Popularity, results[i].Popularity,
			"results must be sorted by popularity descending")
	}
	assert.Equal(t, "The Dark Knight", results[0].Title)
	assert.Equal(t, models.KindTV, results[3].Kind)
	assert.Equal(t, "Batman: TAS", results[3].Title)
	assert.Equal(t, "movie_6", results[0].MediaID())
}

func TestSearchStableOnPopularityTies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			fmt.Fprint(w, resultJSON(
				movieEntry(1, "First", 50),
				movieEntry(2, "Second", 50),
				movieEntry(3, "Third", 50),
			))
		case "/search/tv":
			fmt.Fprint(w, resultJSON())
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	results, err := c.Search(context.Background(), "x")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"First", "Second", "Third"},
		[]string{results[0].Title, results[1].Title, results[2].Title},
		"provider order must survive ties")
}

func TestSearchFailsWhenEitherSubQueryFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/tv" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, resultJSON(movieEntry(1, "Fine", 10)))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	_, err := c.Search(context.Background(), "x")
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "/search/tv", perr.Endpoint)
}

func TestTrendingPreservesProviderOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trending/all/day", r.URL.Path)
		fmt.Fprint(w, `{"results":[
			{"id":1,"media_type":"tv","name":"Low","popularity":5,"first_air_date":"2021-01-01"},
			{"id":2,"media_type":"person","name":"Someone","popularity":99},
			{"id":3,"media_type":"movie","title":"High","popularity":90,"release_date":"2022-02-02"},
			{"id":4,"media_type":"movie","title":"Mid","popularity":40},
			{"id":5,"media_type":"tv","name":"A","popularity":1},
			{"id":6,"media_type":"movie","title":"B","popularity":2},
			{"id":7,"media_type":"movie","title":"C","popularity":3}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	results, err := c.Trending(context.Background())
	require.NoError(t, err)

	// Person entries are dropped, order is untouched, list is capped at 5.
	require.Len(t, results, 5)
	assert.Equal(t, "Low", results[0].Title)
	assert.Equal(t, "High", results[1].Title)
	assert.Equal(t, "2021-01-01", results[0].ReleaseDate)
}

func TestPopularMergesBothEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/popular":
			fmt.Fprint(w, resultJSON(movieEntry(1, "M", 10)))
		case "/tv/popular":
			fmt.Fprint(w, resultJSON(tvEntry(2, "T", 20)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	results, err := c.Popular(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "T", results[0].Title)
	assert.Equal(t, "M", results[1].Title)
}

func TestDetailsMapsMovieFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "credits,similar,videos", r.URL.Query().Get("append_to_response"))
		fmt.Fprint(w, `{"id":603,"title":"The Matrix","overview":"neo","poster_path":"/p.jpg",
			"backdrop_path":"/b.jpg","vote_average":8.7,"release_date":"1999-03-31","popularity":80,
			"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}],
			"runtime":136,"status":"Released","tagline":"Free your mind"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	d, err := c.Details(context.Background(), 603, models.KindMovie)
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", d.Title)
	assert.Equal(t, "1999-03-31", d.ReleaseDate)
	assert.Equal(t, []string{"Action", "Science Fiction"}, d.Genres)
	assert.Equal(t, 136, d.Runtime)
	assert.Equal(t, "Free your mind", d.Tagline)
	assert.Equal(t, "movie_603", d.MediaID())
}

func TestDetailsMapsShowFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tv/1396", r.URL.Path)
		fmt.Fprint(w, `{"id":1396,"name":"Breaking Bad","overview":"chem","vote_average":8.9,
			"first_air_date":"2008-01-20","popularity":70,
			"genres":[{"id":18,"name":"Drama"}],
			"episode_run_time":[45,47],"status":"Ended","tagline":""}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	d, err := c.Details(context.Background(), 1396, models.KindTV)
	require.NoError(t, err)

	assert.Equal(t, "Breaking Bad", d.Title)
	assert.Equal(t, "2008-01-20", d.ReleaseDate)
	assert.Equal(t, 45, d.Runtime)
	assert.Equal(t, "tv_1396", d.MediaID())
}

func TestDetailsSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", nil)
	_, err := c.Details(context.Background(), 1, models.KindMovie)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
}
