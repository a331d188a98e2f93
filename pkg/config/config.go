package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Network    NetworkConfig
	Probe      ProbeConfig
	Redis      RedisConfig
	NATS       NATSConfig
	CloudWatch CloudWatchConfig
	Archive    ArchiveConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NetworkConfig holds the monitoring thresholds and cadences.
// Read-only after startup.
type NetworkConfig struct {
	BandwidthThresholdMbps     float64
	LatencyThresholdMs         float64
	PacketLossThresholdPercent float64
	CollectionInterval         time.Duration
	PersistInterval            time.Duration
	LearningWindow             int
	AnomalyThresholdStdDev     float64
	WindowCapacity             int
}

type ProbeConfig struct {
	Target  string
	Count   int
	Timeout time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	TTL          time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type NATSConfig struct {
	Enabled bool
	URL     string
}

type CloudWatchConfig struct {
	MetricsEnabled           bool
	LogsEnabled              bool
	Region                   string
	Endpoint                 string
	AccessKeyID              string
	SecretAccessKey          string
	MetricsNamespace         string
	MetricsDimensions        map[string]string
	MetricsBufferSize        int
	MetricsFlushInterval     time.Duration
	MetricsStorageResolution int32
	LogGroupName             string
	LogStreamName            string
	LogsBufferSize           int
	LogsFlushInterval        time.Duration
}

type ArchiveConfig struct {
	Enabled         bool
	Interval        time.Duration
	RetentionDays   int
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	URLMode         string
	PresignedTTL    time.Duration
	IndexEnabled    bool
	IndexTable      string
	IndexRegion     string
	IndexEndpoint   string
	IndexTTLDays    int
}

type SecurityConfig struct {
	AllowedOrigins []string
	AuthEnabled    bool
	AuthToken      string
}

func Load() (*Config, error) {
	// Ignore a missing .env file; variables may come from the environment.
	_ = godotenv.Load()

	bandwidthThreshold, err := getEnvFloat("BANDWIDTH_THRESHOLD_MBPS", 80.0)
	if err != nil {
		return nil, err
	}
	latencyThreshold, err := getEnvFloat("LATENCY_THRESHOLD_MS", 100.0)
	if err != nil {
		return nil, err
	}
	packetLossThreshold, err := getEnvFloat("PACKET_LOSS_THRESHOLD_PERCENT", 5.0)
	if err != nil {
		return nil, err
	}
	anomalyThreshold, err := getEnvFloat("ANOMALY_THRESHOLD_STDDEV", 2.5)
	if err != nil {
		return nil, err
	}

	collectionInterval, err := getEnvDuration("MONITORING_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	persistInterval, err := getEnvDuration("PERSIST_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	learningWindow, err := getEnvInt("LEARNING_WINDOW", 100)
	if err != nil {
		return nil, err
	}
	windowCapacity, err := getEnvInt("HISTORY_WINDOW_CAPACITY", 1000)
	if err != nil {
		return nil, err
	}

	probeCount, err := getEnvInt("PROBE_COUNT", 5)
	if err != nil {
		return nil, err
	}
	probeTimeout, err := getEnvDuration("PROBE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	redisTTL, err := getEnvDuration("REDIS_TTL", time.Minute)
	if err != nil {
		return nil, err
	}

	cwMetricsBuffer, err := getEnvInt("CLOUDWATCH_METRICS_BUFFER_SIZE", 100)
	if err != nil {
		return nil, err
	}
	cwMetricsFlush, err := getEnvDuration("CLOUDWATCH_METRICS_FLUSH_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cwLogsBuffer, err := getEnvInt("CLOUDWATCH_LOGS_BUFFER_SIZE", 50)
	if err != nil {
		return nil, err
	}
	cwLogsFlush, err := getEnvDuration("CLOUDWATCH_LOGS_FLUSH_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	archiveInterval, err := getEnvDuration("ARCHIVE_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	retentionDays, err := getEnvInt("HISTORY_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}
	indexTTLDays, err := getEnvInt("ARCHIVE_INDEX_TTL_DAYS", 90)
	if err != nil {
		return nil, err
	}
	presignedTTL, err := getEnvDuration("ARCHIVE_S3_PRESIGNED_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	rateLimitRPS, err := getEnvFloat("API_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	rateLimitBurst, err := getEnvInt("API_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    rateLimitRPS,
			RateLimitBurst:  rateLimitBurst,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "netpulse"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Network: NetworkConfig{
			BandwidthThresholdMbps:     bandwidthThreshold,
			LatencyThresholdMs:         latencyThreshold,
			PacketLossThresholdPercent: packetLossThreshold,
			CollectionInterval:         collectionInterval,
			PersistInterval:            persistInterval,
			LearningWindow:             learningWindow,
			AnomalyThresholdStdDev:     anomalyThreshold,
			WindowCapacity:             windowCapacity,
		},
		Probe: ProbeConfig{
			Target:  getEnv("PROBE_TARGET", "8.8.8.8:53"),
			Count:   probeCount,
			Timeout: probeTimeout,
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           redisDB,
			TTL:          redisTTL,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		NATS: NATSConfig{
			Enabled: getEnvBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		CloudWatch: CloudWatchConfig{
			MetricsEnabled:           getEnvBool("CLOUDWATCH_METRICS_ENABLED", false),
			LogsEnabled:              getEnvBool("CLOUDWATCH_LOGS_ENABLED", false),
			Region:                   getEnv("CLOUDWATCH_REGION", "us-east-1"),
			Endpoint:                 getEnv("CLOUDWATCH_ENDPOINT", ""),
			AccessKeyID:              getEnv("CLOUDWATCH_ACCESS_KEY_ID", ""),
			SecretAccessKey:          getEnv("CLOUDWATCH_SECRET_ACCESS_KEY", ""),
			MetricsNamespace:         getEnv("CLOUDWATCH_METRICS_NAMESPACE", "NetPulse/Network"),
			MetricsDimensions:        parseDimensions(getEnv("CLOUDWATCH_METRICS_DIMENSIONS", "")),
			MetricsBufferSize:        cwMetricsBuffer,
			MetricsFlushInterval:     cwMetricsFlush,
			MetricsStorageResolution: 60,
			LogGroupName:             getEnv("CLOUDWATCH_LOG_GROUP", "/netpulse/api"),
			LogStreamName:            getEnv("CLOUDWATCH_LOG_STREAM", "netpulse"),
			LogsBufferSize:           cwLogsBuffer,
			LogsFlushInterval:        cwLogsFlush,
		},
		Archive: ArchiveConfig{
			Enabled:         getEnvBool("ARCHIVE_ENABLED", false),
			Interval:        archiveInterval,
			RetentionDays:   retentionDays,
			Bucket:          getEnv("ARCHIVE_S3_BUCKET", ""),
			Region:          getEnv("ARCHIVE_S3_REGION", "us-east-1"),
			Endpoint:        getEnv("ARCHIVE_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("ARCHIVE_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("ARCHIVE_S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvBool("ARCHIVE_S3_USE_PATH_STYLE", true),
			URLMode:         getEnv("ARCHIVE_S3_URL_MODE", "presigned"),
			PresignedTTL:    presignedTTL,
			IndexEnabled:    getEnvBool("ARCHIVE_INDEX_ENABLED", false),
			IndexTable:      getEnv("ARCHIVE_INDEX_TABLE", ""),
			IndexRegion:     getEnv("ARCHIVE_INDEX_REGION", "us-east-1"),
			IndexEndpoint:   getEnv("ARCHIVE_INDEX_ENDPOINT", ""),
			IndexTTLDays:    indexTTLDays,
		},
		Security: SecurityConfig{
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
			AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
			AuthToken:      getEnv("AUTH_BEARER_TOKEN", ""),
		},
	}

	if cfg.Security.AuthEnabled && cfg.Security.AuthToken == "" {
		return nil, fmt.Errorf("AUTH_BEARER_TOKEN is required when AUTH_ENABLED=true")
	}
	if cfg.Network.CollectionInterval <= 0 {
		return nil, fmt.Errorf("MONITORING_INTERVAL must be positive")
	}
	if cfg.Network.LearningWindow <= 0 || cfg.Network.WindowCapacity < cfg.Network.LearningWindow {
		return nil, fmt.Errorf("HISTORY_WINDOW_CAPACITY must be at least LEARNING_WINDOW")
	}
	if cfg.Probe.Count <= 0 {
		return nil, fmt.Errorf("PROBE_COUNT must be positive")
	}
	if cfg.Archive.Enabled && cfg.Archive.Bucket == "" {
		return nil, fmt.Errorf("ARCHIVE_S3_BUCKET is required when ARCHIVE_ENABLED=true")
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// parseDimensions parses "Key=Value,Key2=Value2" into a map.
func parseDimensions(raw string) map[string]string {
	dims := make(map[string]string)
	for _, pair := range splitCSV(raw) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && kv[0] != "" && kv[1] != "" {
			dims[kv[0]] = kv[1]
		}
	}
	return dims
}
