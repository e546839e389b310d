// Package viewport turns raw pan/zoom noise into settled viewport events and
// filters the entity list down to what is visible inside the padded bounds.
package viewport

import (
	"sync"
	"time"

	"github.com/UnknownOlympus/pinmap/internal/models"
)

// Epsilons below which a new settled viewport is considered identical to the
// previously emitted one. Guards against recomputation on float jitter.
const (
	centerEpsilon = 0.0001
	spanEpsilon   = 0.0001
)

// Debouncer observes raw region-change events and emits a single settled
// viewport after a quiescence period. This is a debounce, not a throttle:
// nothing is emitted during a gesture, exactly one event after it pauses.
type Debouncer struct {
	quiescence time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	emitted *models.Viewport

	settled chan models.Viewport
}

// NewDebouncer creates a debouncer with the given quiescence window.
func NewDebouncer(quiescence time.Duration) *Debouncer {
	if quiescence <= 0 {
		quiescence = 300 * time.Millisecond
	}

	return &Debouncer{
		quiescence: quiescence,
		settled:    make(chan models.Viewport, 1),
	}
}

// Settled returns the channel settled viewports are delivered on. Delivery is
// latest-wins: if the consumer is busy, a newer settle replaces the undelivered
// older one.
func (d *Debouncer) Settled() <-chan models.Viewport {
	return d.settled
}

// RegionChanged records a raw pan/zoom tick. The internal timer restarts on
// every call; only after it elapses without a subsequent call does the settled
// event fire, carrying the final viewport value.
func (d *Debouncer) RegionChanged(viewport models.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiescence, func() {
		d.emit(viewport)
	})
}

// Stop cancels a pending settle event, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) emit(viewport models.Viewport) {
	d.mu.Lock()
	if d.emitted != nil && viewport.Approximately(*d.emitted, centerEpsilon, spanEpsilon) {
		d.mu.Unlock()
		return
	}
	emitted := viewport
	d.emitted = &emitted
	d.mu.Unlock()

	// Latest-wins delivery into the buffered channel.
	for {
		select {
		case d.settled <- viewport:
			return
		default:
			select {
			case <-d.settled:
			default:
			}
		}
	}
}
