package service

import (
	"sync"

	"ueba-service/internal/bucketing"
	"ueba-service/internal/config"
	"ueba-service/internal/features"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// ServiceFactory builds application services from their repository and
// client dependencies.
type ServiceFactory struct {
	config      *config.Config
	source      model.EventSource
	partitioner *bucketing.Manager
	sinks       Sinks

	mu       sync.Mutex
	pipeline *PipelineService
}

func NewServiceFactory(
	cfg *config.Config,
	source model.EventSource,
	partitioner *bucketing.Manager,
	sinks Sinks,
) *ServiceFactory {
	return &ServiceFactory{
		config:      cfg,
		source:      source,
		partitioner: partitioner,
		sinks:       sinks,
	}
}

func (f *ServiceFactory) PipelineService() *PipelineService {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pipeline == nil {
		f.pipeline = NewPipelineService(
			f.config,
			f.source,
			features.NewBehavioralExtractor(f.partitioner),
			features.NewContentExtractor(features.NeutralSentiment),
			f.sinks,
		)
		util.Info("pipeline service initialized",
			util.String("data_source", f.config.Data.Source),
			util.Float64("risk_threshold", f.config.Risk.Threshold),
		)
	}
	return f.pipeline
}

func (f *ServiceFactory) Cleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pipeline = nil
}
