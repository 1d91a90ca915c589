package anomaly

import (
	"fmt"
	"math"
	"sort"
)

// BoundaryDetector fits a one-class decision boundary around the bulk of
// the standardized data: a hypersphere centered at the training mean whose
// radius is the (1-nu) quantile of training distances, leaving roughly a nu
// fraction of the training rows outside. The score is the signed distance
// past the boundary, so rows outside score positive and the sign convention
// matches the other detectors (higher = more anomalous).
type BoundaryDetector struct {
	nu float64

	center []float64
	radius float64
}

func NewBoundaryDetector(nu float64) *BoundaryDetector {
	if nu <= 0 || nu >= 1 {
		nu = 0.1
	}
	return &BoundaryDetector{nu: nu}
}

func (d *BoundaryDetector) Name() string { return "one_class_boundary" }

func (d *BoundaryDetector) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("boundary detector: empty training matrix")
	}

	cols := len(X[0])
	d.center = make([]float64, cols)
	for _, row := range X {
		for j, v := range row {
			d.center[j] += v
		}
	}
	for j := range d.center {
		d.center[j] /= float64(len(X))
	}

	dists := make([]float64, len(X))
	for i, row := range X {
		dists[i] = d.distance(row)
	}
	sort.Float64s(dists)

	// Index of the (1-nu) quantile, clamped into range.
	k := int(math.Ceil(float64(len(dists))*(1-d.nu))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(dists) {
		k = len(dists) - 1
	}
	d.radius = dists[k]
	return nil
}

func (d *BoundaryDetector) Score(X [][]float64) []float64 {
	scores := make([]float64, len(X))
	for i, row := range X {
		scores[i] = d.distance(row) - d.radius
	}
	return scores
}

func (d *BoundaryDetector) distance(row []float64) float64 {
	sum := 0.0
	for j, v := range row {
		diff := v - d.center[j]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
