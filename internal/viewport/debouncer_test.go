package viewport_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/UnknownOlympus/pinmap/internal/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_RapidChangesSettleOnce(t *testing.T) {
	t.Parallel()
	debouncer := viewport.NewDebouncer(300 * time.Millisecond)
	t.Cleanup(debouncer.Stop)

	// 10 rapid ticks spaced 20ms apart, as during a pan gesture.
	var last models.Viewport
	for i := range 10 {
		last = models.Viewport{
			Center:  models.Coordinates{Latitude: 45.0 + float64(i)*0.1, Longitude: -122.0},
			LatSpan: 1.0,
			LonSpan: 1.0,
		}
		debouncer.RegionChanged(last)
		time.Sleep(20 * time.Millisecond)
	}

	start := time.Now()
	select {
	case settled := <-debouncer.Settled():
		// The settle carries the final viewport, not an intermediate one.
		assert.Equal(t, last, settled)
		assert.Greater(t, time.Since(start), 150*time.Millisecond,
			"settle must wait out the quiescence window")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for settled viewport")
	}

	// Exactly one settle event for the whole gesture.
	select {
	case <-debouncer.Settled():
		t.Fatal("expected exactly one settled event")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestDebouncer_JitterIsInsignificant(t *testing.T) {
	t.Parallel()
	debouncer := viewport.NewDebouncer(50 * time.Millisecond)
	t.Cleanup(debouncer.Stop)

	base := models.Viewport{
		Center:  models.Coordinates{Latitude: 45.0, Longitude: -122.0},
		LatSpan: 1.0,
		LonSpan: 1.0,
	}

	debouncer.RegionChanged(base)
	select {
	case <-debouncer.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first settle")
	}

	// A second change within the epsilons of the last emitted value is skipped.
	jittered := base
	jittered.Center.Latitude += 0.00001
	debouncer.RegionChanged(jittered)

	select {
	case <-debouncer.Settled():
		t.Fatal("float jitter must not produce a new settled event")
	case <-time.After(300 * time.Millisecond):
	}

	// A genuinely different viewport settles again.
	moved := base
	moved.Center.Latitude += 2.0
	debouncer.RegionChanged(moved)

	select {
	case settled := <-debouncer.Settled():
		require.Equal(t, moved, settled)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for second settle")
	}
}

func TestDebouncer_LatestWinsDelivery(t *testing.T) {
	t.Parallel()
	debouncer := viewport.NewDebouncer(20 * time.Millisecond)
	t.Cleanup(debouncer.Stop)

	first := models.Viewport{Center: models.Coordinates{Latitude: 10}, LatSpan: 1, LonSpan: 1}
	second := models.Viewport{Center: models.Coordinates{Latitude: 20}, LatSpan: 1, LonSpan: 1}

	// Nobody reads between the two settles: the second must replace the first.
	debouncer.RegionChanged(first)
	time.Sleep(100 * time.Millisecond)
	debouncer.RegionChanged(second)
	time.Sleep(100 * time.Millisecond)

	select {
	case settled := <-debouncer.Settled():
		assert.Equal(t, second, settled)
	default:
		t.Fatal("expected a buffered settled viewport")
	}
}
