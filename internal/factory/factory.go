package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ueba-service/internal/alert"
	"ueba-service/internal/bucketing"
	"ueba-service/internal/client"
	"ueba-service/internal/config"
	"ueba-service/internal/model"
	clickhouserepo "ueba-service/internal/repository/clickhouse"
	"ueba-service/internal/repository/csvlog"
	redisrepo "ueba-service/internal/repository/redis"
	"ueba-service/internal/repository/scylla"
	"ueba-service/internal/service"
	"ueba-service/internal/util"
)

// Factory manages the lifecycle of all application dependencies. Every
// external system is optional; the pipeline always works against a local
// CSV directory with no backing services at all.
type Factory struct {
	config *config.Config

	// Clients
	redisClient      *client.RedisClient
	scyllaClient     *scylla.ScyllaClient
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient

	bucketingManager *bucketing.Manager

	eventSource    model.EventSource
	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory loads configuration and initializes every enabled dependency.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	factory.bucketingManager = bucketing.NewManager(cfg)

	if err := factory.initializeEventSource(); err != nil {
		return nil, err
	}

	util.Info("factory initialized",
		util.String("environment", cfg.Environment),
		util.String("data_source", cfg.Data.Source),
		util.Bool("clickhouse_enabled", cfg.Clickhouse.Enabled),
		util.Bool("redis_enabled", cfg.Redis.Enabled),
		util.Bool("kafka_enabled", cfg.Kafka.Enabled),
		util.Bool("elasticsearch_enabled", cfg.Elasticsearch.Enabled),
	)

	return factory, nil
}

// initializeClients brings up every enabled external client. In production
// a failed client aborts startup; in development it degrades to a warning
// and the corresponding sink is skipped. Kafka is always best-effort.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	if f.config.Redis.Enabled {
		if c, err := client.NewRedisClient(f.config); err != nil {
			initErrors = append(initErrors, fmt.Errorf("redis: %w", err))
		} else {
			f.redisClient = c
			if err := f.redisClient.HealthCheck(ctx); err != nil {
				initErrors = append(initErrors, fmt.Errorf("redis health check: %w", err))
			}
		}
	}

	if f.config.Scylla.Enabled {
		if c, err := scylla.NewScyllaClient(f.config); err != nil {
			initErrors = append(initErrors, fmt.Errorf("scylla: %w", err))
		} else {
			f.scyllaClient = c
			if err := f.scyllaClient.HealthCheck(); err != nil {
				initErrors = append(initErrors, fmt.Errorf("scylla health check: %w", err))
			}
		}
	}

	if f.config.Kafka.Enabled {
		if producer, err := client.NewKafkaProducer(f.config); err != nil {
			util.Warn("Kafka producer initialization failed, proceeding without alerts", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
		}
	}

	if f.config.Elasticsearch.Enabled {
		if c, err := client.NewElasticsearchClient(f.config); err != nil {
			initErrors = append(initErrors, fmt.Errorf("elasticsearch: %w", err))
		} else {
			f.esClient = c
		}
	}

	if f.config.Clickhouse.Enabled {
		if c, err := client.NewClickHouseClient(f.config); err != nil {
			initErrors = append(initErrors, fmt.Errorf("clickhouse: %w", err))
		} else {
			f.clickhouseClient = c
			if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
				initErrors = append(initErrors, fmt.Errorf("clickhouse health check: %w", err))
			}
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

func (f *Factory) initializeEventSource() error {
	switch f.config.Data.Source {
	case "scylla":
		if f.scyllaClient == nil {
			return fmt.Errorf("data source is scylla but the scylla client is unavailable")
		}
		f.eventSource = scylla.NewEventRepository(f.scyllaClient, f.bucketingManager)
	case "csv":
		f.eventSource = csvlog.NewReader(f.config)
	default:
		return fmt.Errorf("unknown data source %q", f.config.Data.Source)
	}
	return nil
}

// ServiceFactory wires the pipeline service with whatever sinks the enabled
// clients support.
func (f *Factory) ServiceFactory() *service.ServiceFactory {
	if f.serviceFactory == nil {
		sinks := service.Sinks{
			Exporter: csvlog.NewWriter(f.config),
		}
		if f.clickhouseClient != nil {
			sinks.Analytics = clickhouserepo.NewAnalyticsStore(f.clickhouseClient)
		}
		if f.redisClient != nil {
			sinks.Cache = redisrepo.NewResultCache(f.redisClient)
		}
		if f.kafkaProducer != nil {
			sinks.Alerts = alert.NewPublisher(f.kafkaProducer, f.config.Kafka.AlertsTopic)
		}
		if f.esClient != nil {
			sinks.RiskIndexer = alert.NewRiskIndexer(f.esClient, f.config.Elasticsearch.RiskIndex)
		}

		f.serviceFactory = service.NewServiceFactory(
			f.config,
			f.eventSource,
			f.bucketingManager,
			sinks,
		)
	}
	return f.serviceFactory
}

// HealthCheck reports the state of every initialized dependency.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.config.Redis.Enabled {
		if f.redisClient == nil {
			healthErrors["redis"] = fmt.Errorf("redis client not initialized")
		} else if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	}

	if f.config.Scylla.Enabled {
		if f.scyllaClient == nil {
			healthErrors["scylla"] = fmt.Errorf("scylla client not initialized")
		} else if err := f.scyllaClient.HealthCheck(); err != nil {
			healthErrors["scylla"] = err
		}
	}

	if f.config.Elasticsearch.Enabled {
		if f.esClient == nil {
			healthErrors["elasticsearch"] = fmt.Errorf("elasticsearch client not initialized")
		} else if err := f.esClient.HealthCheck(); err != nil {
			healthErrors["elasticsearch"] = err
		}
	}

	if f.config.Clickhouse.Enabled {
		if f.clickhouseClient == nil {
			healthErrors["clickhouse"] = fmt.Errorf("clickhouse client not initialized")
		} else if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	return healthErrors
}

func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	// Alerts degrade gracefully; a broken broker never fails readiness.
	delete(healthErrors, "kafka")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("shutting down factory")

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("failed to close ClickHouse client", util.ErrorField(err))
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("failed to close Kafka producer", util.ErrorField(err))
			}
		}

		if f.serviceFactory != nil {
			f.serviceFactory.Cleanup()
		}

		if f.scyllaClient != nil {
			f.scyllaClient.Close()
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("failed to close Redis client", util.ErrorField(err))
			}
		}

		util.Sync()
		util.Info("factory shutdown completed")
	})

	return nil
}

func (f *Factory) WaitForClose() {
	<-f.closed
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) BucketingManager() *bucketing.Manager {
	return f.bucketingManager
}

func (f *Factory) EventSource() model.EventSource {
	return f.eventSource
}
