package anomaly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnStats(X [][]float64, j int) (mean, std float64) {
	for _, row := range X {
		mean += row[j]
	}
	mean /= float64(len(X))
	for _, row := range X {
		d := row[j] - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(X)))
}

func TestScalerZeroMeanUnitVariance(t *testing.T) {
	X := [][]float64{
		{1, 100, 5},
		{2, 200, 5},
		{3, 300, 5},
		{4, 400, 5},
	}

	scaler := &StandardScaler{}
	scaled := scaler.FitTransform(X)
	require.Len(t, scaled, len(X))

	for j := 0; j < 2; j++ {
		mean, std := columnStats(scaled, j)
		assert.InDelta(t, 0.0, mean, 1e-9)
		assert.InDelta(t, 1.0, std, 1e-9)
	}

	// Constant column becomes exactly zero everywhere.
	for _, row := range scaled {
		assert.Zero(t, row[2])
	}
}

func TestScalerIdempotent(t *testing.T) {
	X := [][]float64{{1, 9}, {4, 3}, {2, 7}, {8, 1}}

	first := (&StandardScaler{}).FitTransform(X)
	second := (&StandardScaler{}).FitTransform(first)

	for i := range first {
		for j := range first[i] {
			assert.InDelta(t, first[i][j], second[i][j], 1e-9)
		}
	}
}

func TestScalerDoesNotMutateInput(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}}
	(&StandardScaler{}).FitTransform(X)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, X)
}
