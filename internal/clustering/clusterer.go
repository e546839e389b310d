// Package clustering partitions visible placements into individual pins or
// clusters using a grid-hash nearest-neighbor heuristic whose radius varies
// continuously with zoom level.
package clustering

import (
	"math"

	"github.com/UnknownOlympus/pinmap/internal/models"
	"github.com/google/uuid"
)

// cellSizeFactor sizes grid cells relative to the cluster radius. Cells
// slightly larger than the radius keep most neighbors in one cell while
// bounding the pairwise scan to near-linear cost.
const cellSizeFactor = 1.5

// Options holds the clusterer tuning knobs.
type Options struct {
	MinSpan      float64 // Span at/below which the radius collapses to zero.
	MaxSpan      float64 // Span at/above which the radius reaches BaseRadiusKm.
	BaseRadiusKm float64 // Clustering radius at full zoom-out, in km.
}

// Clusterer groups nearby placements into clusters. It holds no per-pass
// state: every Cluster call recomputes the grouping from scratch over the
// snapshot it is given.
type Clusterer struct {
	opts Options
}

// New creates a clusterer, applying defaults for unset options.
func New(opts Options) *Clusterer {
	if opts.MinSpan <= 0 {
		opts.MinSpan = 0.05
	}
	if opts.MaxSpan <= opts.MinSpan {
		opts.MaxSpan = 0.5
	}
	if opts.BaseRadiusKm <= 0 {
		opts.BaseRadiusKm = 40
	}

	return &Clusterer{opts: opts}
}

// cellKey identifies a grid cell by two-axis integer quantization.
type cellKey struct {
	lat int
	lon int
}

// Radius returns the clustering radius in km for the given zoom span: the
// span is linearly interpolated between MinSpan and MaxSpan into a factor in
// [0,1], so the radius shrinks continuously as the user zooms in.
func (c *Clusterer) Radius(span float64) float64 {
	factor := (span - c.opts.MinSpan) / (c.opts.MaxSpan - c.opts.MinSpan)
	factor = math.Max(0, math.Min(1, factor))

	return c.opts.BaseRadiusKm * factor
}

// Cluster partitions the placements into annotations for the given zoom span.
// Placements in the same grid cell within the cluster radius of the first-seen
// member are absorbed into one cluster; everything else becomes a standalone
// pin. The grouping is a partition: no placement appears twice.
//
// Placements in different grid cells are never merged even when geometrically
// closer than the radius across a cell boundary. That is an accepted
// approximation of the grid-hash approach, traded for near-linear cost.
func (c *Clusterer) Cluster(placements []models.Placement, span float64) []models.Annotation {
	radiusKm := c.Radius(span)
	if radiusKm <= 0 || len(placements) < 2 {
		return pinsOnly(placements)
	}

	cellDeg := cellSizeFactor * radiusKm / kmPerDegree

	// Bucket by cell, keeping input order inside each cell and remembering the
	// order cells first appear in, so the grouping is deterministic.
	cells := make(map[cellKey][]int)
	var cellOrder []cellKey
	for i, p := range placements {
		key := cellKey{
			lat: int(math.Floor(p.Coordinates.Latitude / cellDeg)),
			lon: int(math.Floor(p.Coordinates.Longitude / cellDeg)),
		}
		if _, seen := cells[key]; !seen {
			cellOrder = append(cellOrder, key)
		}
		cells[key] = append(cells[key], i)
	}

	annotations := make([]models.Annotation, 0, len(placements))
	processed := make([]bool, len(placements))

	for _, key := range cellOrder {
		members := cells[key]
		for mi, i := range members {
			if processed[i] {
				continue
			}
			processed[i] = true

			// Greedy single pass: the first unprocessed placement in a cell
			// anchors the group and absorbs cellmates within the radius.
			group := []int{i}
			for _, j := range members[mi+1:] {
				if processed[j] {
					continue
				}
				if haversineKm(placements[i].Coordinates, placements[j].Coordinates) <= radiusKm {
					processed[j] = true
					group = append(group, j)
				}
			}

			if len(group) < 2 {
				annotations = append(annotations, models.NewPin(placements[i]))
				continue
			}

			annotations = append(annotations, models.NewClusterPin(buildCluster(placements, group)))
		}
	}

	return annotations
}

// buildCluster assembles a cluster from the indexed members, with the centroid
// as the arithmetic mean of the member coordinates.
func buildCluster(placements []models.Placement, group []int) models.Cluster {
	members := make([]models.Placement, 0, len(group))

	var sumLat, sumLon float64
	for _, idx := range group {
		members = append(members, placements[idx])
		sumLat += placements[idx].Coordinates.Latitude
		sumLon += placements[idx].Coordinates.Longitude
	}

	size := float64(len(group))

	return models.Cluster{
		ID:      uuid.NewString(),
		Members: members,
		Centroid: models.Coordinates{
			Latitude:  sumLat / size,
			Longitude: sumLon / size,
		},
	}
}

func pinsOnly(placements []models.Placement) []models.Annotation {
	annotations := make([]models.Annotation, 0, len(placements))
	for _, p := range placements {
		annotations = append(annotations, models.NewPin(p))
	}

	return annotations
}
