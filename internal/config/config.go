package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewMembershipRulesHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthJWTSecret   string
	AuthTokenTTLMin int64

	LogLevel  string
	LogFormat string

	OTLPEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OTLPSamplingRatio float64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	CORSAllowedOrigins []string

	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type RateLimitConfig struct {
	SignInRate  float64
	SignInBurst int
}

type BootstrapConfig struct {
	AdminEmail       string
	AdminPassword    string
	AdminDisplayName string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getenv("APP_SERVICE", "branchops"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		AuthJWTSecret:      strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AuthTokenTTLMin:    getenvInt64("AUTH_TOKEN_TTL_MINUTES", 60),
		LogLevel:           strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		OTLPEnabled:        getenvBool("OTEL_ENABLED", true),
		OTLPEndpoint:       getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
		OTLPProtocol:       strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
		OTLPSamplingRatio:  getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "postgres"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:      int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:      int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime:  int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime:  int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getenv("KAFKA_BROKERS", "")),
			Topic:   getenv("KAFKA_TOPIC", "branchops.membership"),
		},
		RateLimit: RateLimitConfig{
			SignInRate:  getenvFloat("SIGNIN_RATE_PER_SEC", 0.2),
			SignInBurst: int(getenvInt64("SIGNIN_BURST", 5)),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:       strings.ToLower(strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_EMAIL", ""))),
			AdminPassword:    getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
			AdminDisplayName: getenv("BOOTSTRAP_ADMIN_NAME", "Administrador"),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
