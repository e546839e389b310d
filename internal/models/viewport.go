package models

import "math"

// viewportPadding widens the visible bounds by 20% so pins just outside the
// screen edge are already placed when the user pans slightly.
const viewportPadding = 0.20

// Viewport represents the visible map region as a center point plus a
// latitude/longitude span.
type Viewport struct {
	Center  Coordinates `json:"center"`
	LatSpan float64     `json:"lat_span"`
	LonSpan float64     `json:"lon_span"`
}

// BoundingBox is a closed rectangular region in geographic coordinates.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// PaddedBounds derives the padded bounding box used for membership tests.
func (v Viewport) PaddedBounds() BoundingBox {
	halfLat := v.LatSpan / 2 * (1 + viewportPadding)
	halfLon := v.LonSpan / 2 * (1 + viewportPadding)

	return BoundingBox{
		MinLat: v.Center.Latitude - halfLat,
		MaxLat: v.Center.Latitude + halfLat,
		MinLon: v.Center.Longitude - halfLon,
		MaxLon: v.Center.Longitude + halfLon,
	}
}

// Span returns the larger of the two axis spans, the value the projector and
// clusterer use as the zoom measure.
func (v Viewport) Span() float64 {
	return math.Max(v.LatSpan, v.LonSpan)
}

// Contains reports whether the point lies inside the box. Both intervals are
// closed, so points exactly on the edge are included.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// Approximately reports whether two viewports are within the given epsilons of
// each other on both center and span. The debouncer uses it to skip settle
// events caused by float jitter.
func (v Viewport) Approximately(other Viewport, centerEps, spanEps float64) bool {
	return math.Abs(v.Center.Latitude-other.Center.Latitude) < centerEps &&
		math.Abs(v.Center.Longitude-other.Center.Longitude) < centerEps &&
		math.Abs(v.LatSpan-other.LatSpan) < spanEps &&
		math.Abs(v.LonSpan-other.LonSpan) < spanEps
}
