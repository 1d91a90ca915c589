package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	Server        ServerConfig
	Logging       LoggingConfig
	Data          DataConfig
	Detector      DetectorConfig
	Risk          RiskConfig
	Bucketing     BucketingConfig
	Scylla        ScyllaConfig
	Clickhouse    ClickhouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// DataConfig selects where event logs come from and where derived tables go.
// Source is either "csv" (local log directory) or "scylla".
type DataConfig struct {
	Source    string
	LogDir    string
	OutputDir string
}

type DetectorConfig struct {
	Seed          int64
	ForestTrees   int
	ForestSamples int
	BoundaryNu    float64
	HiddenSizes   []int
	Epochs        int
	LearningRate  float64
}

type RiskConfig struct {
	Threshold float64
}

type BucketingConfig struct {
	UserBuckets  int
	EventBuckets int
	Workers      int
}

type ScyllaConfig struct {
	Enabled  bool
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type ClickhouseConfig struct {
	Enabled  bool
	URL      string
	Database string
	Username string
	Password string
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	AlertsTopic string
}

type ElasticsearchConfig struct {
	Enabled   bool
	URL       string
	Username  string
	Password  string
	RiskIndex string
}

var (
	instance *Config
	once     sync.Once
)

// LoadConfig reads configuration from the environment, loading a local .env
// file first when present.
func LoadConfig() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		instance = &Config{
			Environment: getEnv("ENVIRONMENT", "development"),
			Server: ServerConfig{
				Host:         getEnv("SERVER_HOST", "0.0.0.0"),
				Port:         getEnvInt("SERVER_PORT", 8080),
				ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
				WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
				IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
			Data: DataConfig{
				Source:    getEnv("DATA_SOURCE", "csv"),
				LogDir:    getEnv("DATA_LOG_DIR", "data"),
				OutputDir: getEnv("DATA_OUTPUT_DIR", "data"),
			},
			Detector: DetectorConfig{
				Seed:          int64(getEnvInt("DETECTOR_SEED", 42)),
				ForestTrees:   getEnvInt("DETECTOR_FOREST_TREES", 100),
				ForestSamples: getEnvInt("DETECTOR_FOREST_SAMPLES", 256),
				BoundaryNu:    getEnvFloat("DETECTOR_BOUNDARY_NU", 0.1),
				HiddenSizes:   getEnvInts("DETECTOR_HIDDEN_SIZES", []int{8, 4, 8}),
				Epochs:        getEnvInt("DETECTOR_EPOCHS", 1000),
				LearningRate:  getEnvFloat("DETECTOR_LEARNING_RATE", 0.01),
			},
			Risk: RiskConfig{
				Threshold: getEnvFloat("RISK_THRESHOLD", 1.0),
			},
			Bucketing: BucketingConfig{
				UserBuckets:  getEnvInt("BUCKETING_USER_BUCKETS", 16),
				EventBuckets: getEnvInt("BUCKETING_EVENT_BUCKETS", 64),
				Workers:      getEnvInt("BUCKETING_WORKERS", 8),
			},
			Scylla: ScyllaConfig{
				Enabled:  getEnvBool("SCYLLA_ENABLED", false),
				Nodes:    getEnvList("SCYLLA_NODES", []string{"127.0.0.1:9042"}),
				Keyspace: getEnv("SCYLLA_KEYSPACE", "ueba"),
				Username: getEnv("SCYLLA_USERNAME", ""),
				Password: getEnv("SCYLLA_PASSWORD", ""),
			},
			Clickhouse: ClickhouseConfig{
				Enabled:  getEnvBool("CLICKHOUSE_ENABLED", false),
				URL:      getEnv("CLICKHOUSE_URL", "http://127.0.0.1:8123"),
				Database: getEnv("CLICKHOUSE_DATABASE", "ueba"),
				Username: getEnv("CLICKHOUSE_USERNAME", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Enabled:  getEnvBool("REDIS_ENABLED", false),
				URL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
				PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
			},
			Kafka: KafkaConfig{
				Enabled:     getEnvBool("KAFKA_ENABLED", false),
				Brokers:     getEnvList("KAFKA_BROKERS", []string{"127.0.0.1:9092"}),
				AlertsTopic: getEnv("KAFKA_ALERTS_TOPIC", "ueba.alerts"),
			},
			Elasticsearch: ElasticsearchConfig{
				Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", false),
				URL:       getEnv("ELASTICSEARCH_URL", "http://127.0.0.1:9200"),
				Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
				Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
				RiskIndex: getEnv("ELASTICSEARCH_RISK_INDEX", "ueba-risk"),
			},
		}
	})

	return instance
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	return LoadConfig()
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return !c.IsProduction()
}

func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}

func getEnvInts(key string, fallback []int) []int {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return fallback
			}
			out = append(out, n)
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
