// Package pagination drives cursor movement over a cached result set.
// Navigation is circular: there is no terminal page.
package pagination

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc"

	"vlopbot/internal/models"
)

// ErrNoValidResults means every detail refresh failed during a page flip.
// The previous message is left untouched and the user sees a transient error.
var ErrNoValidResults = errors.New("no valid results")

// Advance returns the next index with wraparound.
func Advance(index, n int) int {
	return (index + 1) % n
}

// Retreat returns the previous index with wraparound.
func Retreat(index, n int) int {
	return (index - 1 + n) % n
}

// DetailFetcher is the single provider operation the navigator needs.
type DetailFetcher interface {
	Details(ctx context.Context, id int64, kind models.MediaKind) (*models.ContentDetail, error)
}

// Navigator refreshes a cached result set for re-rendering.
type Navigator struct {
	Fetcher DetailFetcher
	Logger  *slog.Logger
}

// Refresh refetches the detail of every item in the set in parallel so each
// page flip shows current ratings and overviews. Items whose fetch fails are
// dropped and the target index is clamped into the surviving list.
func (n *Navigator) Refresh(ctx context.Context, results models.ResultSet, target int) (models.ResultSet, int, error) {
	details := make([]*models.ContentDetail, len(results))

	var wg conc.WaitGroup
	for i, item := range results {
		wg.Go(func() {
			d, err := n.Fetcher.Details(ctx, item.ID, item.Kind)
			if err != nil {
				n.Logger.Error("detail refresh failed",
					"kind", item.Kind, "id", item.ID, "error", err)
				return
			}
			details[i] = d
		})
	}
	wg.Wait()

	fresh := make(models.ResultSet, 0, len(results))
	for _, d := range details {
		if d != nil {
			fresh = append(fresh, d.ContentItem)
		}
	}
	if len(fresh) == 0 {
		return nil, 0, ErrNoValidResults
	}
	if target >= len(fresh) {
		target = len(fresh) - 1
	}
	return fresh, target, nil
}
