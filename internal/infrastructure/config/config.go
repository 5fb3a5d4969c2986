package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-decision/internal/domain/valueobject"
	pkgkafka "github.com/bibbank/loan-decision/pkg/kafka"
	pkgpostgres "github.com/bibbank/loan-decision/pkg/postgres"
)

// Directory backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendKafka    = "kafka"
)

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	Migrations string
}

type KafkaConfig struct {
	Brokers       []string
	ProfileTopic  string
	TLS           bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type RedisConfig struct {
	URL string
	TTL time.Duration
}

type PolicyConfig struct {
	MinAmount string
	MaxAmount string
	MinPeriod int
	MaxPeriod int
}

type JWTConfig struct {
	Secret         string
	PublicKeyPEM   string
	PrivateKeyPEM  string
	PublicKeyFile  string
	PrivateKeyFile string
	Issuer         string
	Expiration     time.Duration
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Config holds all configuration for the decision service.
type Config struct {
	GRPCPort         int
	HTTPPort         int
	ServiceName      string
	LogLevel         string
	LogFormat        string
	Policy           PolicyConfig
	DirectoryBackend string
	SeedFile         string
	DB               DatabaseConfig
	Redis            RedisConfig
	Kafka            KafkaConfig
	JWT              JWTConfig
	AuthUsers        string
	RateLimit        int
	OTLPEndpoint     string
	TLS              TLSConfig
	GRPCReflection   bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		GRPCPort:    getEnvInt("GRPC_PORT", 9091),
		HTTPPort:    getEnvInt("HTTP_PORT", 8091),
		ServiceName: getEnv("SERVICE_NAME", "loan-decision"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		Policy: PolicyConfig{
			MinAmount: getEnv("POLICY_MIN_AMOUNT", valueobject.DefaultMinAmount.String()),
			MaxAmount: getEnv("POLICY_MAX_AMOUNT", valueobject.DefaultMaxAmount.String()),
			MinPeriod: getEnvInt("POLICY_MIN_PERIOD", valueobject.DefaultMinPeriod),
			MaxPeriod: getEnvInt("POLICY_MAX_PERIOD", valueobject.DefaultMaxPeriod),
		},
		DirectoryBackend: strings.ToLower(getEnv("DIRECTORY_BACKEND", BackendMemory)),
		SeedFile:         getEnv("SEED_FILE", ""),
		DB: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "bib"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "bib_decision"),
			SSLMode:    getEnv("DB_SSLMODE", "require"),
			Migrations: getEnv("DB_MIGRATIONS", "file://internal/infrastructure/persistence/postgres/migrations"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			ProfileTopic:  getEnv("KAFKA_PROFILE_TOPIC", "credit-profiles"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", ""),
			PublicKeyPEM:   getEnv("JWT_PUBLIC_KEY", ""),
			PrivateKeyPEM:  getEnv("JWT_PRIVATE_KEY", ""),
			PublicKeyFile:  getEnv("JWT_PUBLIC_KEY_FILE", ""),
			PrivateKeyFile: getEnv("JWT_PRIVATE_KEY_FILE", ""),
			Issuer:         getEnv("JWT_ISSUER", "bib-decision"),
			Expiration:     getEnvDuration("JWT_EXPIRATION", time.Hour),
		},
		AuthUsers:    getEnv("AUTH_USERS", ""),
		RateLimit:    getEnvInt("RATE_LIMIT", 100),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TLS: TLSConfig{
			CertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			KeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
		},
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
	}
}

// Validate reports every configuration problem found, joined.
func (c Config) Validate() error {
	var errs []error

	if _, err := c.LoanPolicy(); err != nil {
		errs = append(errs, err)
	}

	switch c.DirectoryBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for the postgres directory"))
		}
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.ProfileTopic == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_PROFILE_TOPIC are required for the kafka directory"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DIRECTORY_BACKEND %q", c.DirectoryBackend))
	}

	if c.JWT.Secret == "" && c.JWT.PublicKeyPEM == "" && c.JWT.PublicKeyFile == "" &&
		c.JWT.PrivateKeyPEM == "" && c.JWT.PrivateKeyFile == "" {
		errs = append(errs, errors.New("one of JWT_SECRET, JWT_PRIVATE_KEY(_FILE) or JWT_PUBLIC_KEY(_FILE) is required"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT must be positive"))
	}

	return errors.Join(errs...)
}

// LoanPolicy builds the decision policy from the configured bounds.
func (c Config) LoanPolicy() (valueobject.LoanPolicy, error) {
	minAmount, err := decimal.NewFromString(c.Policy.MinAmount)
	if err != nil {
		return valueobject.LoanPolicy{}, fmt.Errorf("POLICY_MIN_AMOUNT: %w", err)
	}
	maxAmount, err := decimal.NewFromString(c.Policy.MaxAmount)
	if err != nil {
		return valueobject.LoanPolicy{}, fmt.Errorf("POLICY_MAX_AMOUNT: %w", err)
	}
	return valueobject.NewLoanPolicy(minAmount, maxAmount, c.Policy.MinPeriod, c.Policy.MaxPeriod)
}

// Postgres returns the connection settings for the profile database. The
// service only reads profiles, so sessions are read-only.
func (c Config) Postgres() pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		Database: c.DB.Name,
		SSLMode:  c.DB.SSLMode,
		ReadOnly: true,
	}
}

// KafkaClient returns the broker connection settings.
func (c Config) KafkaClient() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.Kafka.Brokers,
		TLS:           c.Kafka.TLS,
		SASLEnabled:   c.Kafka.SASLMechanism != "",
		SASLMechanism: c.Kafka.SASLMechanism,
		SASLUsername:  c.Kafka.SASLUsername,
		SASLPassword:  c.Kafka.SASLPassword,
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
