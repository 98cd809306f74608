package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	Issuer         string
}

// UPIConfig describes the shop's collection VPA. The amount and order
// reference are filled in per purchase when the deep link is built.
type UPIConfig struct {
	PayeeVPA  string
	PayeeName string
}

// SMTPConfig drives the admin payment notification mail. An empty
// Password disables sending entirely.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	AdminEmail string
}

type Config struct {
	Repositories RepositoriesConfig
	JWT          JWTConfig
	UPI          UPIConfig
	SMTP         SMTPConfig
	ServerPort   string
	MetricsPort  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "nopaper"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		JWT: JWTConfig{
			SecretKey:      getEnvOrDefault("JWT_SECRET_KEY", ""),
			AccessTokenTTL: getEnvDurationOrDefault("JWT_ACCESS_TTL", 24*time.Hour),
			Issuer:         getEnvOrDefault("JWT_ISSUER", "nopaper"),
		},
		UPI: UPIConfig{
			PayeeVPA:  getEnvOrDefault("UPI_PAYEE_VPA", "shop@upi"),
			PayeeName: getEnvOrDefault("UPI_PAYEE_NAME", "NoPaper Book Shop"),
		},
		SMTP: SMTPConfig{
			Host:       getEnvOrDefault("SMTP_SERVER", "smtp.gmail.com"),
			Port:       getEnvIntOrDefault("SMTP_PORT", 587),
			User:       getEnvOrDefault("EMAIL_USER", ""),
			Password:   getEnvOrDefault("EMAIL_PASSWORD", ""),
			AdminEmail: getEnvOrDefault("ADMIN_EMAIL", ""),
		},
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8000"),
		MetricsPort: getEnvOrDefault("METRICS_PORT", "9092"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
