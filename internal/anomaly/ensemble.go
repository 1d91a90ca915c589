package anomaly

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ueba-service/internal/config"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// Ensemble standardizes the merged feature matrix once and runs the three
// detectors over it. The detectors never see the user key or the red-team
// label, and their scores are kept separate: only within-detector ranking
// is meaningful.
type Ensemble struct {
	isolation      *IsolationForest
	boundary       *BoundaryDetector
	reconstruction *ReconstructionDetector
}

func NewEnsemble(cfg config.DetectorConfig) *Ensemble {
	return &Ensemble{
		isolation:      NewIsolationForest(cfg.ForestTrees, cfg.ForestSamples, cfg.Seed),
		boundary:       NewBoundaryDetector(cfg.BoundaryNu),
		reconstruction: NewReconstructionDetector(cfg.HiddenSizes, cfg.Epochs, cfg.LearningRate, cfg.Seed),
	}
}

// Detectors returns the ordered detector collection.
func (e *Ensemble) Detectors() []Detector {
	return []Detector{e.isolation, e.boundary, e.reconstruction}
}

// TrainAndScore validates, standardizes, and scores the merged table,
// returning one ScoreRow per input row sorted by user. A matrix with
// missing or non-finite values rejects the whole batch: silently dropping
// rows would break score comparability across users.
func (e *Ensemble) TrainAndScore(ctx context.Context, merged []model.MergedFeatureRow) ([]model.ScoreRow, error) {
	if len(merged) == 0 {
		return nil, fmt.Errorf("%w: empty feature table", model.ErrValidation)
	}

	X := make([][]float64, len(merged))
	for i, row := range merged {
		X[i] = row.Vector()
		for j, v := range X[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite value in column %q for user %q",
					model.ErrValidation, model.MergedFeatureColumns[j], row.User)
			}
		}
	}

	scaler := &StandardScaler{}
	scaled := scaler.FitTransform(X)

	detectors := e.Detectors()
	results := make([][]float64, len(detectors))
	g, _ := errgroup.WithContext(ctx)
	for i, det := range detectors {
		i, det := i, det
		g.Go(func() error {
			start := time.Now()
			if err := det.Fit(scaled); err != nil {
				return fmt.Errorf("%s: fit: %w", det.Name(), err)
			}
			results[i] = det.Score(scaled)
			util.Debug("detector finished",
				util.String("detector", det.Name()),
				util.Int("rows", len(scaled)),
				util.Duration("took", time.Since(start)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]model.ScoreRow, len(merged))
	for i, m := range merged {
		rows[i] = model.ScoreRow{
			User:                m.User,
			IsRedTeam:           m.IsRedTeam,
			IsolationScore:      results[0][i],
			BoundaryScore:       results[1][i],
			ReconstructionScore: results[2][i],
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].User < rows[j].User })
	return rows, nil
}
