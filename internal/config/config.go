// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBPath         string `mapstructure:"DB_PATH"`
	DBBackend      string `mapstructure:"DB_BACKEND"`
	MediaDir       string `mapstructure:"MEDIA_DIR"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	SecureCookies  bool   `mapstructure:"SECURE_COOKIES"`
	ProtectedEmail string `mapstructure:"PROTECTED_EMAIL"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
	TracingEnabled bool   `mapstructure:"TRACING_ENABLED"`
	SMTPHost       string `mapstructure:"SMTP_HOST"`
	SMTPPort       int    `mapstructure:"SMTP_PORT"`
	SMTPUser       string `mapstructure:"SMTP_USER"`
	SMTPPass       string `mapstructure:"SMTP_PASS"`
	SMTPFrom       string `mapstructure:"SMTP_FROM"`
	AdminEmail     string `mapstructure:"ADMIN_EMAIL"`
}

// Load reads configuration from an optional config.yml and the environment.
// Environment variables win.
func Load() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env-only deployments are fine
	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Loaded config file")
	}

	viper.SetDefault("PORT", "18920")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_PATH", "data/tribune.db")
	viper.SetDefault("DB_BACKEND", "bolt")
	viper.SetDefault("MEDIA_DIR", "data/media")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-in-production")
	viper.SetDefault("SECURE_COOKIES", false)
	viper.SetDefault("PROTECTED_EMAIL", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures required values are present and flags insecure production
// settings.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBBackend != "bolt" && c.DBBackend != "sqlite" {
		return fmt.Errorf("DB_BACKEND must be bolt or sqlite, got %q", c.DBBackend)
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.JWTSecret == "dev-secret-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if !c.SecureCookies {
			log.Warn().Msg("SECURE_COOKIES is disabled in production")
		}
		if c.ProtectedEmail == "" {
			log.Warn().Msg("PROTECTED_EMAIL is not set; no account is protected from moderation")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Warn().Msg("JWT_SECRET is shorter than 32 characters; use a stronger secret in production")
	}

	return nil
}
