package viewport_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/UnknownOlympus/pinmap/internal/cache"
	"github.com/UnknownOlympus/pinmap/internal/metrics"
	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/UnknownOlympus/pinmap/internal/viewport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRequester records which entities were queued for geocoding.
type stubRequester struct {
	mu  sync.Mutex
	ids []string
}

func (r *stubRequester) Request(_ context.Context, entity models.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids = append(r.ids, entity.ID)
}

func newFilter(store *cache.Store, requester viewport.Requester, maxVisible int) *viewport.Filter {
	return viewport.NewFilter(store, requester, metrics.NewMetrics(prometheus.NewRegistry()), maxVisible)
}

func TestFilter_PaddedBoundsMembership(t *testing.T) {
	t.Parallel()
	store := cache.NewStore()
	requester := &stubRequester{}
	filter := newFilter(store, requester, 0)
	ctx := t.Context()

	// Viewport spans 5x5 degrees around the origin; the padded half-span is
	// 2.5 * 1.2 = 3 degrees on both axes.
	vp := models.Viewport{Center: models.Coordinates{}, LatSpan: 5, LonSpan: 5}

	entities := []models.Entity{
		{ID: "inside", City: "A"},
		{ID: "on-padded-edge", City: "B"},
		{ID: "outside", City: "C"},
	}
	store.Set("inside", models.Coordinates{Latitude: 1.5, Longitude: 1.5})
	store.Set("on-padded-edge", models.Coordinates{Latitude: 3, Longitude: 3})
	store.Set("outside", models.Coordinates{Latitude: 3.01, Longitude: 0})

	visible := filter.Visible(ctx, entities, vp)

	require.Len(t, visible, 2)
	assert.Equal(t, "inside", visible[0].Entity.ID)
	// Boundary points exactly on the padded edge are included (closed interval).
	assert.Equal(t, "on-padded-edge", visible[1].Entity.ID)
	assert.Empty(t, requester.ids)
}

func TestFilter_UnresolvedEntitiesAreQueued(t *testing.T) {
	t.Parallel()
	store := cache.NewStore()
	requester := &stubRequester{}
	filter := newFilter(store, requester, 0)
	ctx := t.Context()

	vp := models.Viewport{Center: models.Coordinates{}, LatSpan: 10, LonSpan: 10}
	entities := []models.Entity{
		{ID: "resolved", City: "A"},
		{ID: "unresolved-1", City: "B"},
		{ID: "unresolved-2", City: "C"},
	}
	store.Set("resolved", models.Coordinates{Latitude: 1, Longitude: 1})

	visible := filter.Visible(ctx, entities, vp)

	// Unresolved entities never block rendering; they are excluded from this
	// pass and handed to the scheduler for a later one.
	require.Len(t, visible, 1)
	assert.Equal(t, "resolved", visible[0].Entity.ID)
	assert.Equal(t, []string{"unresolved-1", "unresolved-2"}, requester.ids)
}

func TestFilter_CapsEntitiesPerPass(t *testing.T) {
	t.Parallel()
	store := cache.NewStore()
	requester := &stubRequester{}
	filter := newFilter(store, requester, 100)
	ctx := t.Context()

	vp := models.Viewport{Center: models.Coordinates{}, LatSpan: 10, LonSpan: 10}

	entities := make([]models.Entity, 300)
	for i := range entities {
		id := fmt.Sprintf("pet-%d", i)
		entities[i] = models.Entity{ID: id, City: "A"}
		store.Set(id, models.Coordinates{Latitude: 1, Longitude: 1})
	}

	visible := filter.Visible(ctx, entities, vp)

	assert.Len(t, visible, 100, "only the first maxVisible entities are considered")
}
