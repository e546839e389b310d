package viewport

import (
	"context"

	"github.com/UnknownOlympus/pinmap/internal/cache"
	"github.com/UnknownOlympus/pinmap/internal/metrics"
	"github.com/UnknownOlympus/pinmap/internal/models"
)

// Requester queues an entity for geocoding. Implemented by the batch scheduler.
type Requester interface {
	Request(ctx context.Context, entity models.Entity)
}

// Filter selects the entities visible inside a settled viewport. Entities
// without a cached coordinate are excluded from the current pass and queued
// for geocoding instead, so the visible set is always whatever is currently
// knowable and never blocks on resolution.
type Filter struct {
	store      *cache.Store
	requester  Requester
	metrics    *metrics.Metrics
	maxVisible int
}

// NewFilter creates a viewport filter reading coordinates from the given
// store and routing unresolved entities to the requester. maxVisible caps the
// number of entities considered per pass to bound the clustering cost; under
// extreme scale the tail of the list degrades to invisible rather than slow.
func NewFilter(store *cache.Store, requester Requester, metrics *metrics.Metrics, maxVisible int) *Filter {
	if maxVisible <= 0 {
		maxVisible = 500
	}

	return &Filter{
		store:      store,
		requester:  requester,
		metrics:    metrics,
		maxVisible: maxVisible,
	}
}

// Visible returns the placements whose coordinates fall inside the padded
// bounds of the viewport. Membership is a closed-interval test: points exactly
// on the padded edge are included.
func (f *Filter) Visible(
	ctx context.Context,
	entities []models.Entity,
	viewport models.Viewport,
) []models.Placement {
	bounds := viewport.PaddedBounds()

	considered := entities
	if len(considered) > f.maxVisible {
		considered = considered[:f.maxVisible]
	}

	visible := make([]models.Placement, 0, len(considered))
	for _, entity := range considered {
		coords, ok := f.store.Get(entity.ID)
		if !ok {
			f.metrics.CacheMisses.Inc()
			f.requester.Request(ctx, entity)
			continue
		}
		f.metrics.CacheHits.Inc()

		if bounds.Contains(coords) {
			visible = append(visible, models.Placement{Entity: entity, Coordinates: coords})
		}
	}

	return visible
}
