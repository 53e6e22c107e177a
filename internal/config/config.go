package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Row store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDynamo   = "dynamodb"
	BackendRemote   = "remote"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	RowStore     RowStoreConfig
	Postgres     PostgresConfig
	Dynamo       DynamoConfig
	AWS          AWSConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Kafka        KafkaConfig
	Notification NotificationConfig
	CORS         CORSConfig
	Schema       Schema
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	DemoSeed              bool
}

// RowStoreConfig selects and addresses the tabular backend.
type RowStoreConfig struct {
	Backend              string
	DisputeTables        []string
	CredentialsTable     string
	ActivityTable        string
	AttachmentsTable     string
	RemoteURL            string
	RemoteTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// DynamoConfig names the single table holding every sheet.
type DynamoConfig struct {
	Table string
}

// AWSConfig holds shared AWS settings.
type AWSConfig struct {
	Region            string
	EndpointURL       string
	AttachmentBucket  string
	PresignTTLSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	DemoLogins            bool
}

// KafkaConfig configures the dispute event stream.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// CORSConfig controls cross-origin access for the portal API.
type CORSConfig struct {
	AllowOrigins string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := strings.ToLower(getEnv("ROWSTORE_BACKEND", BackendMemory))
	switch backend {
	case BackendMemory, BackendPostgres, BackendDynamo, BackendRemote:
	default:
		return nil, fmt.Errorf("invalid ROWSTORE_BACKEND %q", backend)
	}

	schema, err := LoadSchema(os.Getenv("SCHEMA_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dispute-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			DemoSeed:              getEnvAsBool("DEMO_SEED", false),
		},
		RowStore: RowStoreConfig{
			Backend:              backend,
			DisputeTables:        getEnvAsList("ROWSTORE_DISPUTE_TABLES", []string{"Disputes", "Supplier Disputes", "Dispute Log"}),
			CredentialsTable:     getEnv("ROWSTORE_CREDENTIALS_TABLE", "Suppliers"),
			ActivityTable:        getEnv("ROWSTORE_ACTIVITY_TABLE", "Login Activity"),
			AttachmentsTable:     getEnv("ROWSTORE_ATTACHMENTS_TABLE", "Attachment Uploads"),
			RemoteURL:            os.Getenv("ROWSTORE_REMOTE_URL"),
			RemoteTimeoutSeconds: getEnvAsInt("ROWSTORE_REMOTE_TIMEOUT_SECONDS", 15),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Dynamo: DynamoConfig{
			Table: getEnv("DDB_TABLE", "dispute-sheets"),
		},
		AWS: AWSConfig{
			Region:            getEnv("AWS_REGION", "us-east-1"),
			EndpointURL:       os.Getenv("AWS_ENDPOINT_URL"),
			AttachmentBucket:  os.Getenv("S3_ATTACHMENT_BUCKET"),
			PresignTTLSeconds: getEnvAsInt("PRESIGN_TTL_SECONDS", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "dispute-portal"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			DemoLogins:            getEnvAsBool("AUTH_DEMO_LOGINS", false),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_DISPUTE_TOPIC", "dispute-events"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Schema: schema,
	}

	if len(cfg.RowStore.DisputeTables) == 0 {
		return nil, fmt.Errorf("ROWSTORE_DISPUTE_TABLES must name at least one table")
	}
	if backend == BackendRemote && cfg.RowStore.RemoteURL == "" {
		return nil, fmt.Errorf("ROWSTORE_REMOTE_URL is required for the remote backend")
	}
	if backend == BackendPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
	}

	return cfg, nil
}

// PrimaryTable is the dispute table reads are served from.
func (r RowStoreConfig) PrimaryTable() string {
	return r.DisputeTables[0]
}

// RemoteTimeout returns the remote store client timeout.
func (r RowStoreConfig) RemoteTimeout() time.Duration {
	if r.RemoteTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(r.RemoteTimeoutSeconds) * time.Second
}

// PresignTTL returns the lifetime of presigned upload URLs.
func (a AWSConfig) PresignTTL() time.Duration {
	if a.PresignTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.PresignTTLSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of issued tokens and sessions.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
