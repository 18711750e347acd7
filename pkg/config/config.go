package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Storage backends selectable for the follow graph and for content.
const (
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
	BackendMongo    = "mongo"
)

type Config struct {
	Env      string `validate:"oneof=development production test"`
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`

	PostgresURL    string `validate:"required"`
	DBMaxOpenConns int    `validate:"min=1"`

	GraphBackend   string `validate:"oneof=postgres neo4j"`
	ContentBackend string `validate:"oneof=postgres mongo"`

	MongoURI      string `validate:"required_if=ContentBackend mongo"`
	MongoDatabase string `validate:"required_if=ContentBackend mongo"`

	Neo4jURI      string `validate:"required_if=GraphBackend neo4j"`
	Neo4jUser     string
	Neo4jPassword string

	FeedDefaultPageSize int `validate:"min=1,ltefield=FeedMaxPageSize"`
	FeedMaxPageSize     int `validate:"min=1,max=500"`

	BcryptCost   int           `validate:"min=4,max=31"`
	StoreTimeout time.Duration `validate:"gte=0"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []string

	cfg := &Config{
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", ""),
		PostgresURL:         getEnv("POSTGRES_CONN_STR", ""),
		DBMaxOpenConns:      getEnvInt("DB_MAX_OPEN_CONNS", 10, &errs),
		GraphBackend:        strings.ToLower(getEnv("GRAPH_BACKEND", BackendPostgres)),
		ContentBackend:      strings.ToLower(getEnv("CONTENT_BACKEND", BackendPostgres)),
		MongoURI:            getEnv("MONGO_URI", ""),
		MongoDatabase:       getEnv("MONGO_DATABASE", "socialmedia"),
		Neo4jURI:            getEnv("NEO4J_URI", ""),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", ""),
		FeedDefaultPageSize: getEnvInt("FEED_DEFAULT_PAGE_SIZE", 10, &errs),
		FeedMaxPageSize:     getEnvInt("FEED_MAX_PAGE_SIZE", 50, &errs),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10, &errs),
		StoreTimeout:        getEnvDuration("STORE_TIMEOUT", 5*time.Second, &errs),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field rules and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]string) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s'", key, value))
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration, got '%s'", key, value))
		return defaultValue
	}
	return d
}
