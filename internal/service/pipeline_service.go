package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ueba-service/internal/alert"
	"ueba-service/internal/anomaly"
	"ueba-service/internal/config"
	"ueba-service/internal/features"
	"ueba-service/internal/graph"
	"ueba-service/internal/model"
	"ueba-service/internal/repository/csvlog"
	"ueba-service/internal/risk"
	"ueba-service/internal/util"
)

// Sinks holds the optional outputs of a pipeline run. Any field may be nil;
// a sink failure is logged and skipped, it never fails the run.
type Sinks struct {
	Exporter    *csvlog.Writer
	Analytics   model.AnalyticsStore
	Cache       model.ResultCache
	Alerts      *alert.Publisher
	RiskIndexer *alert.RiskIndexer
}

// PipelineService orchestrates one full batch run: load events, extract the
// three feature sets, merge, train and score the detector ensemble, and
// build the risk subgraph.
type PipelineService struct {
	config     *config.Config
	source     model.EventSource
	behavioral *features.BehavioralExtractor
	content    *features.ContentExtractor
	sinks      Sinks

	mu         sync.RWMutex
	lastResult *model.PipelineResult
}

func NewPipelineService(
	cfg *config.Config,
	source model.EventSource,
	behavioral *features.BehavioralExtractor,
	content *features.ContentExtractor,
	sinks Sinks,
) *PipelineService {
	return &PipelineService{
		config:     cfg,
		source:     source,
		behavioral: behavioral,
		content:    content,
		sinks:      sinks,
	}
}

// Run executes one batch over the full event history. Results are kept in
// memory for API reads and fanned out to whatever sinks are configured.
func (s *PipelineService) Run(ctx context.Context) (*model.PipelineResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	util.Info("pipeline run started", util.String("run_id", runID))

	logs, err := s.source.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	featureRows, err := s.behavioral.Extract(ctx, logs)
	if err != nil {
		return nil, fmt.Errorf("behavioral features: %w", err)
	}

	entityGraph := graph.FromEvents(logs)
	graphRows := features.ExtractGraph(entityGraph)
	contentRows := s.content.Extract(logs.Emails)

	merged := features.Merge(featureRows, graphRows, contentRows, logs.RedTeam)

	ensemble := anomaly.NewEnsemble(s.config.Detector)
	scores, err := ensemble.TrainAndScore(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("anomaly scoring: %w", err)
	}

	subgraph := risk.Build(entityGraph, scores, s.config.Risk.Threshold)

	result := &model.PipelineResult{
		RunID:           runID,
		StartedAt:       startedAt,
		FinishedAt:      time.Now().UTC(),
		Features:        featureRows,
		GraphFeatures:   graphRows,
		ContentFeatures: contentRows,
		Merged:          merged,
		Scores:          scores,
		Risk:            subgraph,
	}

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()

	s.fanOut(ctx, result)

	util.Info("pipeline run finished",
		util.String("run_id", runID),
		util.Int("users", len(merged)),
		util.Duration("elapsed", result.FinishedAt.Sub(startedAt)),
	)
	return result, nil
}

// LastResult returns the most recent run, falling back to the cache when
// this process has not run the pipeline yet.
func (s *PipelineService) LastResult(ctx context.Context) (*model.PipelineResult, error) {
	s.mu.RLock()
	last := s.lastResult
	s.mu.RUnlock()

	if last != nil {
		return last, nil
	}
	if s.sinks.Cache != nil {
		return s.sinks.Cache.GetResult(ctx)
	}
	return nil, fmt.Errorf("no pipeline run available")
}

func (s *PipelineService) fanOut(ctx context.Context, result *model.PipelineResult) {
	if s.sinks.Exporter != nil {
		if err := s.sinks.Exporter.WriteFeatures(result.Features); err != nil {
			util.Warn("feature export failed", util.ErrorField(err))
		}
		if err := s.sinks.Exporter.WriteMergedFeatures(result.Merged); err != nil {
			util.Warn("merged feature export failed", util.ErrorField(err))
		}
		if err := s.sinks.Exporter.WriteScores(result.Scores); err != nil {
			util.Warn("score export failed", util.ErrorField(err))
		}
	}

	if s.sinks.Analytics != nil {
		if err := s.sinks.Analytics.SaveMergedFeatures(ctx, result.RunID, result.Merged); err != nil {
			util.Warn("analytics feature save failed", util.ErrorField(err))
		}
		if err := s.sinks.Analytics.SaveScores(ctx, result.RunID, result.Scores); err != nil {
			util.Warn("analytics score save failed", util.ErrorField(err))
		}
	}

	if s.sinks.Cache != nil {
		if err := s.sinks.Cache.SetResult(ctx, result); err != nil {
			util.Warn("result caching failed", util.ErrorField(err))
		}
	}

	if s.sinks.Alerts != nil {
		if err := s.sinks.Alerts.PublishHighRisk(ctx, result.RunID, result.Scores, s.config.Risk.Threshold); err != nil {
			util.Warn("alert publishing failed", util.ErrorField(err))
		}
	}

	if s.sinks.RiskIndexer != nil {
		if err := s.sinks.RiskIndexer.IndexRisk(ctx, result.RunID, result.Risk); err != nil {
			util.Warn("risk indexing failed", util.ErrorField(err))
		}
	}
}
