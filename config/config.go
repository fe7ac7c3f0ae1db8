package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Escrow   EscrowConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type EscrowConfig struct {
	// SweepInterval is the cron cadence for cancelling stale pending
	// bookings; the TTL itself lives in system settings so admins can tune
	// it without a deploy.
	SweepInterval string
	LeaseTTL      time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8090"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  envDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: envDuration("WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "allure:allure@tcp(localhost:3306)/allure?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  envDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: envDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        env("JWT_ISSUER", "allure"),
		},
		Escrow: EscrowConfig{
			SweepInterval: env("ESCROW_SWEEP_CRON", "*/10 * * * *"),
			LeaseTTL:      envDuration("ESCROW_SWEEP_LEASE_TTL", 5*time.Minute),
		},
		Admin: AdminConfig{
			Email:    env("ADMIN_EMAIL", "admin@allure.local"),
			Password: env("ADMIN_PASSWORD", "change-me-admin"),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
