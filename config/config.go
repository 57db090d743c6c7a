package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	ServerHost string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"foodshare"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET"`

	// S3Bucket is optional; without it images are kept in process memory,
	// which only makes sense for local development.
	S3Bucket  string `env:"S3_BUCKET_NAME"`
	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`

	// PublicHost is used when building absolute short links.
	PublicHost string `env:"PUBLIC_HOST"`
}

// Load builds a Config for the current environment. Development and test
// read a .env file plus the process environment; production overlays Docker
// secrets on top of the environment.
func Load() (*Config, error) {
	cfg := &Config{}

	switch GetEnvironment() {
	case Development, Test:
		// Missing .env is fine, the process environment still applies.
		_ = godotenv.Load()
	case Production:
		loadSecrets(cfg)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DBPassword == "" && IsProduction() {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required configuration is not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// loadSecrets promotes Docker secrets into the environment so env.Parse
// picks them up with the same precedence rules everywhere.
func loadSecrets(cfg *Config) {
	secrets := map[string]string{
		"db_user":        "DB_USER",
		"db_password":    "DB_PASSWORD",
		"jwt_secret":     "JWT_SECRET",
		"redis_password": "REDIS_PASSWORD",
	}
	for name, envVar := range secrets {
		if value := readSecret(name); value != "" {
			_ = os.Setenv(envVar, value)
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
