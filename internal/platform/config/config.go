package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	strutil "terralegit/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	DatabaseURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	AWS           AWSConfig
	Compliance    ComplianceConfig
	RateLimit     RateLimitConfig
}

// RedisConfig configures the Redis client used for entity locks.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LockTTL      time.Duration
	LockWait     time.Duration
}

// KafkaConfig configures the audit outbox relay.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayBatch    int
	RelayInterval time.Duration
}

// AWSConfig configures document storage and notifications.
type AWSConfig struct {
	Region        string
	S3Bucket      string
	SNSTopicARN   string
	S3EndpointURL string
}

// ComplianceConfig holds the document types the lifecycle guards check.
type ComplianceConfig struct {
	RuleSeedFile         string
	ListingHealthDocType string
	ShipmentRequiredDocs []string
	DocumentURLPrefix    string
}

// RateLimitConfig bounds anonymous writes per client address. A zero limit
// disables the check.
type RateLimitConfig struct {
	AnonymousWrites int
	Window          time.Duration
}

// DefaultLockTTL bounds how long a crashed writer can hold an entity lock.
var DefaultLockTTL = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Server{
		Addr:          envOr("TERRALEGIT_ADDR", ":8080"),
		Environment:   envOr("TERRALEGIT_ENV", "development"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			LockTTL:      envDuration("LOCK_TTL", DefaultLockTTL),
			LockWait:     envDuration("LOCK_WAIT", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       envList("KAFKA_BROKERS"),
			AuditTopic:    envOr("KAFKA_AUDIT_TOPIC", "terralegit.audit"),
			RelayBatch:    envInt("OUTBOX_RELAY_BATCH", 100),
			RelayInterval: envDuration("OUTBOX_RELAY_INTERVAL", time.Second),
		},
		AWS: AWSConfig{
			Region:        envOr("AWS_REGION", "us-east-1"),
			S3Bucket:      os.Getenv("DOCUMENTS_BUCKET"),
			SNSTopicARN:   os.Getenv("NOTIFY_SNS_TOPIC_ARN"),
			S3EndpointURL: os.Getenv("S3_ENDPOINT_URL"),
		},
		Compliance: ComplianceConfig{
			RuleSeedFile:         os.Getenv("COUNTRY_RULES_FILE"),
			ListingHealthDocType: envOr("LISTING_HEALTH_DOC_TYPE", "health_certificate"),
			ShipmentRequiredDocs: envListOr("SHIPMENT_REQUIRED_DOCS", []string{"transport_manifest", "welfare_plan"}),
			DocumentURLPrefix:    envOr("DOCUMENT_URL_PREFIX", "memory://documents/"),
		},
		RateLimit: RateLimitConfig{
			AnonymousWrites: envInt("RATE_LIMIT_ANON_WRITES", 30),
			Window:          envDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if cfg.JWTSigningKey == "" {
		if cfg.Environment == "production" {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required in production")
		}
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envList(key string) []string {
	return envListOr(key, nil)
}

func envListOr(key string, fallback []string) []string {
	out := strutil.DedupeAndTrim(strings.Split(os.Getenv(key), ","))
	if len(out) == 0 {
		return fallback
	}
	return out
}
