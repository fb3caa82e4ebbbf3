package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL  string
	TxMaxRetries int

	JWTSecret     []byte
	JWTCookieName string
	JWTExpiration time.Duration
	CSRFEnabled   bool

	KafkaBrokers []string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	RedisAddr string

	SeedFile string
}

// LoadDotenv reads path into the environment when the file exists. Values
// already set in the environment win.
func LoadDotenv(path string) (bool, error) {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Load reads the environment and exits when a required value is missing.
func Load() Config {
	cfg := Config{
		ServiceName: config.EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  config.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    config.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TxMaxRetries: config.EnvIntDefault("TX_MAX_RETRIES", 3),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		JWTCookieName: config.EnvDefault("JWT_COOKIE_NAME", "accessToken"),
		JWTExpiration: config.EnvDurationDefault("JWT_EXPIRATION", 24*time.Hour),
		CSRFEnabled:   config.EnvDefault("CSRF_ENABLED", "false") == "true",

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    config.EnvDefault("ELASTIC_INDEX", "products"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		SeedFile: os.Getenv("SEED_FILE"),
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}
