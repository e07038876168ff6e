package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	CacheDriverRedis = "redis"
	CacheDriverNoop  = "noop"
)

type Config struct {
	HTTPPort    string
	ServiceName string

	StoreDriver  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSslMode    string
	DBReaderHost string

	CacheDriver   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheFence    time.Duration

	KafkaEnabled           bool
	KafkaHost              []string
	KafkaOrderChangedTopic string

	RiderMaxActiveOrders int
	DealExpireSchedule   string

	LogLevel       string
	LogEncoding    string
	TracingEnabled bool
}

var loadEnvOnce sync.Once

// LoadConfig reads .env when present, then the environment, and validates the result.
func LoadConfig() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load(".env")
	})

	cfg := Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "marketplace"),

		StoreDriver:  getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", "marketplace"),
		DBSslMode:    getEnv("DB_SSLMODE", "disable"),
		DBReaderHost: getEnv("DB_READER_HOST", ""),

		CacheDriver:   getEnv("CACHE_DRIVER", CacheDriverNoop),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 30*time.Second),
		CacheFence:    getEnvAsDuration("CACHE_FENCE", 2*time.Second),

		KafkaEnabled:           getEnvAsBool("KAFKA_ENABLED", false),
		KafkaHost:              getEnvAsStringSlice("KAFKA_HOST", []string{"127.0.0.1:9092"}),
		KafkaOrderChangedTopic: getEnv("KAFKA_ORDER_CHANGED_TOPIC", "orders.status-changed"),

		RiderMaxActiveOrders: getEnvAsInt("RIDER_MAX_ACTIVE_ORDERS", 1),
		DealExpireSchedule:   getEnv("DEAL_EXPIRE_SCHEDULE", "0 * * * * *"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogEncoding:    getEnv("LOG_ENCODING", "json"),
		TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unsupported drivers and out of range values.
func (c Config) Validate() error {
	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port <= 0 {
		return fmt.Errorf("invalid HTTP_PORT: %q", c.HTTPPort)
	}

	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported store driver: %s", c.StoreDriver)
	}

	switch c.CacheDriver {
	case CacheDriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("missing REDIS_ADDR for redis cache")
		}
	case CacheDriverNoop:
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.CacheDriver)
	}

	if c.KafkaEnabled && (len(c.KafkaHost) == 0 || c.KafkaOrderChangedTopic == "") {
		return fmt.Errorf("kafka enabled without KAFKA_HOST or KAFKA_ORDER_CHANGED_TOPIC")
	}

	if c.RiderMaxActiveOrders < 1 {
		return fmt.Errorf("RIDER_MAX_ACTIVE_ORDERS must be at least 1, got %d", c.RiderMaxActiveOrders)
	}

	return nil
}

// WriterDSN is the connection string of the primary database.
func (c Config) WriterDSN() string {
	return c.dsn(c.DBHost)
}

// ReaderDSN points at the read replica, or the primary when no replica is configured.
func (c Config) ReaderDSN() string {
	if c.DBReaderHost == "" {
		return c.WriterDSN()
	}
	return c.dsn(c.DBReaderHost)
}

func (c Config) dsn(host string) string {
	return fmt.Sprintf("host=%v port=%v user=%v password=%v dbname=%v sslmode=%v",
		host, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, ok := os.LookupEnv(key); ok {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaults []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		filtered := make([]string, 0, len(parts))
		for _, part := range parts {
			if p := strings.TrimSpace(part); p != "" {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}
	return defaults
}
