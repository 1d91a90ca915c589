package anomaly

import (
	"fmt"
	"math"
	"math/rand"
)

// ReconstructionDetector trains a small bottlenecked network to map each
// standardized row back onto itself. Rows the network reconstructs poorly
// are the ones that do not fit the learned bulk, so the anomaly score is
// the per-row mean squared reconstruction error.
type ReconstructionDetector struct {
	hidden []int
	epochs int
	lr     float64
	seed   int64

	sizes   []int
	weights [][][]float64 // weights[l][out][in], last in index is the bias
}

func NewReconstructionDetector(hidden []int, epochs int, lr float64, seed int64) *ReconstructionDetector {
	if len(hidden) == 0 {
		hidden = []int{8, 4, 8}
	}
	if epochs <= 0 {
		epochs = 1000
	}
	if lr <= 0 {
		lr = 0.01
	}
	return &ReconstructionDetector{hidden: hidden, epochs: epochs, lr: lr, seed: seed}
}

func (d *ReconstructionDetector) Name() string { return "reconstruction" }

func (d *ReconstructionDetector) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("reconstruction detector: empty training matrix")
	}
	dim := len(X[0])

	d.sizes = append(append([]int{dim}, d.hidden...), dim)
	rng := rand.New(rand.NewSource(d.seed))
	d.weights = make([][][]float64, len(d.sizes)-1)
	for l := range d.weights {
		in, out := d.sizes[l], d.sizes[l+1]
		d.weights[l] = make([][]float64, out)
		scale := 1.0 / math.Sqrt(float64(in))
		for o := 0; o < out; o++ {
			d.weights[l][o] = make([]float64, in+1)
			for i := 0; i <= in; i++ {
				d.weights[l][o][i] = rng.NormFloat64() * scale
			}
		}
	}

	lr := d.lr / float64(len(X))
	for epoch := 0; epoch < d.epochs; epoch++ {
		for _, row := range X {
			d.step(row, lr)
		}
	}
	return nil
}

// step runs one forward/backward pass for a single row and applies the
// gradient immediately.
func (d *ReconstructionDetector) step(row []float64, lr float64) {
	acts := d.forward(row)
	out := acts[len(acts)-1]

	// Output delta for squared error with a linear output layer.
	delta := make([]float64, len(out))
	for j := range out {
		delta[j] = out[j] - row[j]
	}

	for l := len(d.weights) - 1; l >= 0; l-- {
		in := acts[l]
		var prevDelta []float64
		if l > 0 {
			prevDelta = make([]float64, len(in))
		}
		for o, w := range d.weights[l] {
			for i := range in {
				if prevDelta != nil {
					prevDelta[i] += delta[o] * w[i]
				}
				w[i] -= lr * delta[o] * in[i]
			}
			w[len(in)] -= lr * delta[o] // bias
		}
		if l > 0 {
			// Propagate through the tanh of the hidden layer below.
			for i := range prevDelta {
				prevDelta[i] *= 1 - in[i]*in[i]
			}
			delta = prevDelta
		}
	}
}

// forward returns the activations of every layer, input first, output last.
// Hidden layers use tanh; the output layer is linear.
func (d *ReconstructionDetector) forward(row []float64) [][]float64 {
	acts := make([][]float64, len(d.sizes))
	acts[0] = row
	for l, layer := range d.weights {
		in := acts[l]
		out := make([]float64, len(layer))
		last := l == len(d.weights)-1
		for o, w := range layer {
			sum := w[len(in)] // bias
			for i, v := range in {
				sum += w[i] * v
			}
			if last {
				out[o] = sum
			} else {
				out[o] = math.Tanh(sum)
			}
		}
		acts[l+1] = out
	}
	return acts
}

// Score returns the per-row mean squared reconstruction error.
func (d *ReconstructionDetector) Score(X [][]float64) []float64 {
	scores := make([]float64, len(X))
	for i, row := range X {
		acts := d.forward(row)
		out := acts[len(acts)-1]
		sum := 0.0
		for j := range out {
			diff := out[j] - row[j]
			sum += diff * diff
		}
		scores[i] = sum / float64(len(out))
	}
	return scores
}
