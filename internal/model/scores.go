package model

import (
	"context"
	"time"
)

// -------------------- ANOMALY SCORE MODELS --------------------

// ScoreRow holds one scalar score per detector for one user, plus the
// ground-truth label. Scores from different detectors are not comparable in
// magnitude; only within-detector ranking is meaningful.
type ScoreRow struct {
	User                string  `json:"user" db:"user_id"`
	IsRedTeam           bool    `json:"is_red_team" db:"is_red_team"`
	IsolationScore      float64 `json:"isolation_score" db:"isolation_score"`
	BoundaryScore       float64 `json:"boundary_score" db:"boundary_score"`
	ReconstructionScore float64 `json:"reconstruction_score" db:"reconstruction_score"`
}

// MaxScore returns the largest of the three detector scores. The risk
// builder flags a user when this exceeds the configured threshold.
func (r *ScoreRow) MaxScore() float64 {
	max := r.IsolationScore
	if r.BoundaryScore > max {
		max = r.BoundaryScore
	}
	if r.ReconstructionScore > max {
		max = r.ReconstructionScore
	}
	return max
}

// PipelineResult is the complete output of one batch run, keyed by a run ID.
type PipelineResult struct {
	RunID           string              `json:"run_id"`
	StartedAt       time.Time           `json:"started_at"`
	FinishedAt      time.Time           `json:"finished_at"`
	Features        []FeatureRow        `json:"features"`
	GraphFeatures   []GraphFeatureRow   `json:"graph_features"`
	ContentFeatures []ContentFeatureRow `json:"content_features"`
	Merged          []MergedFeatureRow  `json:"merged"`
	Scores          []ScoreRow          `json:"scores"`
	Risk            *RiskSubgraph       `json:"risk"`
}

// -------------------- SINK INTERFACES --------------------

// AnalyticsStore persists derived tables for offline analytics.
type AnalyticsStore interface {
	SaveMergedFeatures(ctx context.Context, runID string, rows []MergedFeatureRow) error
	SaveScores(ctx context.Context, runID string, rows []ScoreRow) error
}

// ResultCache keeps the latest pipeline result available to API consumers.
type ResultCache interface {
	SetResult(ctx context.Context, result *PipelineResult) error
	GetResult(ctx context.Context) (*PipelineResult, error)
}
