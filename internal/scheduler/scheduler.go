// Package scheduler collects entities that need geocoding, coalesces bursts of
// requests behind a quiescence window, and drives the provider over them in
// bounded concurrent groups so the external service is never flooded.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/pinmap/internal/cache"
	"github.com/UnknownOlympus/pinmap/internal/geocoding"
	"github.com/UnknownOlympus/pinmap/internal/metrics"
	"github.com/UnknownOlympus/pinmap/internal/models"
	"golang.org/x/time/rate"
)

// Options holds the scheduler tuning knobs.
type Options struct {
	Quiescence      time.Duration // Quiet period before a buffered batch flushes.
	GroupSize       int           // Number of concurrent lookups per group.
	GroupsPerSecond int           // Pacing limit for consecutive groups.
}

// Scheduler buffers geocode requests and flushes them in batches.
//
// Deduplication happens against the store's cache and pending set, so calling
// Request twice for the same unresolved entity issues exactly one lookup. The
// flush timer is a single owned slot with cancel-and-replace semantics: every
// request restarts it. Every flush that lands coordinates fires the
// "coordinates changed" signal; the buffered channel coalesces back-to-back
// notifies, so a request arriving while an earlier flush is draining can
// never leave cached coordinates unannounced.
type Scheduler struct {
	log          *slog.Logger
	store        *cache.Store
	provider     geocoding.Provider
	providerName string
	metrics      *metrics.Metrics
	quiescence   time.Duration
	groupSize    int
	limiter      *rate.Limiter

	mu     sync.Mutex
	buffer []models.Entity
	timer  *time.Timer

	changed chan struct{}
}

// New creates a scheduler writing resolved coordinates into the given store.
func New(
	log *slog.Logger,
	store *cache.Store,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	opts Options,
) *Scheduler {
	if opts.GroupSize <= 0 {
		opts.GroupSize = 8
	}
	if opts.GroupsPerSecond <= 0 {
		opts.GroupsPerSecond = 4
	}
	if opts.Quiescence <= 0 {
		opts.Quiescence = 100 * time.Millisecond
	}

	return &Scheduler{
		log:          log,
		store:        store,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		quiescence:   opts.Quiescence,
		groupSize:    opts.GroupSize,
		limiter:      rate.NewLimiter(rate.Limit(opts.GroupsPerSecond), 1),
		changed:      make(chan struct{}, 1),
	}
}

// Changed returns the channel that receives a signal after a flush lands new
// coordinates in the store. The channel is buffered and coalescing: a reader
// that is busy misses no information, only duplicate wake-ups.
func (s *Scheduler) Changed() <-chan struct{} {
	return s.changed
}

// Request queues an entity for geocoding. Entities without a city are never
// queued; entities already cached or already pending are ignored. The flush
// timer restarts on every accepted request so bursts coalesce into one batch.
func (s *Scheduler) Request(ctx context.Context, entity models.Entity) {
	if !entity.HasLocation() {
		return
	}
	if !s.store.MarkPending(entity.ID) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer = append(s.buffer, entity)

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiescence, func() {
		s.flush(ctx)
	})
}

// Stop cancels a scheduled flush, if any. Entities already buffered keep their
// pending marks; callers stopping the scheduler are tearing the session down.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
}

// flush drains the buffer and processes it in fixed-size groups. Groups run
// sequentially with rate-limited pacing; lookups within a group run
// concurrently and the whole group is awaited before the next starts.
//
// An empty drain means an earlier flush already took this timer's entities
// along with its own batch; that flush signals for them after it completes.
func (s *Scheduler) flush(ctx context.Context) {
	s.mu.Lock()
	batch := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	s.metrics.BatchFlushes.Inc()
	s.log.DebugContext(ctx, "Flushing geocode batch", "size", len(batch), "group_size", s.groupSize)

	for start := 0; start < len(batch); start += s.groupSize {
		end := min(start+s.groupSize, len(batch))

		if err := s.limiter.Wait(ctx); err != nil {
			// Shutdown mid-batch: unmark the unprocessed remainder so a later
			// session can queue those ids again.
			for _, entity := range batch[start:] {
				s.store.ClearPending(entity.ID)
			}
			s.log.DebugContext(ctx, "Geocode batch aborted", "error", err, "remaining", len(batch)-start)
			return
		}

		s.resolveGroup(ctx, batch[start:end])
	}

	s.notifyChanged()
}

// resolveGroup issues all lookups of one group concurrently and waits for the
// whole group. Each entity's outcome is independent: one failed lookup never
// aborts its siblings.
func (s *Scheduler) resolveGroup(ctx context.Context, group []models.Entity) {
	var wgr sync.WaitGroup

	for _, entity := range group {
		wgr.Add(1)
		go func() {
			defer wgr.Done()

			s.metrics.ActiveLookups.Inc()
			defer s.metrics.ActiveLookups.Dec()

			startTime := time.Now()
			coords, err := s.provider.Geocode(ctx, entity.Address())
			s.metrics.RequestSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())

			if err != nil {
				// Non-fatal: the entity stays ungeocoded this round and may be
				// queued again later.
				s.metrics.LookupsProcessed.WithLabelValues("failure").Inc()
				s.metrics.APIErrors.Inc()
				s.store.ClearPending(entity.ID)
				s.log.DebugContext(ctx, "Failed to geocode entity",
					"entity", entity.ID, "address", entity.Address(), "error", err)
				return
			}

			s.metrics.LookupsProcessed.WithLabelValues("success").Inc()
			s.store.Set(entity.ID, *coords)
			s.log.DebugContext(ctx, "Resolved entity coordinates",
				"entity", entity.ID, "lat", coords.Latitude, "lon", coords.Longitude)
		}()
	}

	wgr.Wait()
}

func (s *Scheduler) notifyChanged() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
