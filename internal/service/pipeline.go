package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/UnknownOlympus/pinmap/internal/projector"
	"github.com/UnknownOlympus/pinmap/internal/repository"
	"github.com/UnknownOlympus/pinmap/internal/scheduler"
	"github.com/UnknownOlympus/pinmap/internal/viewport"
)

// AnnotationService wires the map annotation pipeline together: it polls the
// repository for the entity list, reacts to settled viewport changes and to
// newly resolved coordinates, and republishes the annotation set whenever it
// effectively changes.
type AnnotationService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Interface for data repository access
	scheduler    *scheduler.Scheduler // Batch scheduler resolving missing coordinates
	debouncer    *viewport.Debouncer  // Debouncer turning pan/zoom noise into settled events
	filter       *viewport.Filter     // Filter selecting entities inside the padded bounds
	projector    *projector.Projector // Projector deciding pins vs clusters per zoom
	pollInterval time.Duration        // Interval for polling the entity list
	fetchLimit   int                  // Upper bound on entities fetched per poll

	mu       sync.Mutex
	entities []models.Entity
	viewport *models.Viewport

	updates chan []models.Annotation
}

// NewAnnotationService creates a new instance of AnnotationService. It takes a
// logger, a repository interface, the pipeline components, a polling interval
// for the entity list, and an upper bound on entities fetched per poll. It
// returns a pointer to the newly created AnnotationService.
func NewAnnotationService(
	log *slog.Logger,
	repo repository.Interface,
	sched *scheduler.Scheduler,
	debouncer *viewport.Debouncer,
	filter *viewport.Filter,
	proj *projector.Projector,
	pollInterval time.Duration,
	fetchLimit int,
) *AnnotationService {
	if fetchLimit <= 0 {
		fetchLimit = 500
	}

	return &AnnotationService{
		log:          log,
		repo:         repo,
		scheduler:    sched,
		debouncer:    debouncer,
		filter:       filter,
		projector:    proj,
		pollInterval: pollInterval,
		fetchLimit:   fetchLimit,
		updates:      make(chan []models.Annotation, 1),
	}
}

// RegionChanged records a raw pan/zoom tick. The pipeline reacts only after
// the debouncer settles.
func (as *AnnotationService) RegionChanged(vp models.Viewport) {
	as.debouncer.RegionChanged(vp)
}

// Updates returns the channel the annotation sets are published on. Delivery
// is latest-wins: a slow consumer observes the newest set, never a backlog.
func (as *AnnotationService) Updates() <-chan []models.Annotation {
	return as.updates
}

// Annotations returns the most recently published annotation set.
func (as *AnnotationService) Annotations() []models.Annotation {
	return as.projector.Last()
}

// Run starts the annotation service. It refreshes the entity list on a fixed
// interval and recomputes the annotation set whenever the viewport settles or
// a geocode batch lands new coordinates. It listens for a cancellation signal
// from the context to gracefully stop the service.
func (as *AnnotationService) Run(ctx context.Context) {
	ticker := time.NewTicker(as.pollInterval)
	defer ticker.Stop()
	defer as.scheduler.Stop()
	defer as.debouncer.Stop()

	as.log.InfoContext(ctx, "Annotation service started...")
	as.refreshEntities(ctx)

	for {
		select {
		case <-ctx.Done():
			as.log.InfoContext(ctx, "Annotation service stopped.")
			return
		case <-ticker.C:
			as.refreshEntities(ctx)
			as.recompute(ctx)
		case vp := <-as.debouncer.Settled():
			as.setViewport(vp)
			as.recompute(ctx)
		case <-as.scheduler.Changed():
			as.recompute(ctx)
		}
	}
}

// refreshEntities replaces the entity snapshot with the repository's current
// list. A failed fetch keeps the previous snapshot; the map degrades to stale
// rather than empty.
func (as *AnnotationService) refreshEntities(ctx context.Context) {
	entities, err := as.repo.FetchEntities(ctx, as.fetchLimit)
	if err != nil {
		as.log.ErrorContext(ctx, "Failed to fetch entities", "error", err)
		return
	}

	as.mu.Lock()
	as.entities = entities
	as.mu.Unlock()

	as.log.DebugContext(ctx, "Entity snapshot refreshed", "count", len(entities))
}

func (as *AnnotationService) setViewport(vp models.Viewport) {
	as.mu.Lock()
	as.viewport = &vp
	as.mu.Unlock()
}

// recompute runs one pass of the pipeline over the current snapshot: filter
// the entities down to the visible set, project it into annotations, and
// publish if the set changed. Before the first settled viewport there is
// nothing to render, so the pass is skipped.
func (as *AnnotationService) recompute(ctx context.Context) {
	as.mu.Lock()
	entities := as.entities
	vp := as.viewport
	as.mu.Unlock()

	if vp == nil {
		return
	}

	visible := as.filter.Visible(ctx, entities, *vp)
	annotations, changed := as.projector.Project(visible, vp.Span())
	if !changed {
		return
	}

	as.log.DebugContext(ctx, "Annotation set changed",
		"visible", len(visible), "annotations", len(annotations), "span", vp.Span())

	// Latest-wins delivery into the buffered channel.
	for {
		select {
		case as.updates <- annotations:
			return
		default:
			select {
			case <-as.updates:
			default:
			}
		}
	}
}
