package anomaly

import "math"

// StandardScaler centers every column to zero mean and scales it to unit
// variance. The same fitted scaler is applied before every detector so the
// three models see an identical matrix.
type StandardScaler struct {
	mean []float64
	std  []float64
}

func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 {
		s.mean, s.std = nil, nil
		return
	}
	cols := len(X[0])
	s.mean = make([]float64, cols)
	s.std = make([]float64, cols)

	n := float64(len(X))
	for _, row := range X {
		for j, v := range row {
			s.mean[j] += v
		}
	}
	for j := range s.mean {
		s.mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - s.mean[j]
			s.std[j] += d * d
		}
	}
	for j := range s.std {
		s.std[j] = math.Sqrt(s.std[j] / n)
		// Constant columns scale by 1 so they transform to exact zeros.
		if s.std[j] == 0 {
			s.std[j] = 1
		}
	}
}

func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.mean[j]) / s.std[j]
		}
		out[i] = scaled
	}
	return out
}

func (s *StandardScaler) FitTransform(X [][]float64) [][]float64 {
	s.Fit(X)
	return s.Transform(X)
}
