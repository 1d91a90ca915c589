package anomaly

// Detector is the uniform contract shared by all three anomaly models.
// Score always returns higher = more anomalous; each implementation
// normalizes its own sign convention to match.
type Detector interface {
	Name() string
	Fit(X [][]float64) error
	Score(X [][]float64) []float64
}
