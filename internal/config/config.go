// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/radif/assetstore/internal/storage"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	DatabaseURL string // empty disables the asset ledger

	// Local fallback storage
	LocalStoragePath string
	LocalURLPrefix   string // URL path images are served under, e.g. "/content/images"

	// Themes
	ThemesPath  string
	ActiveTheme string

	MaxUploadBytes int64

	// StorageConfigFile is an optional YAML file with constructor-level
	// storage options. ASSETSTORE_S3_* variables still override it.
	StorageConfigFile string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./content/images"),
		LocalURLPrefix:   getEnv("LOCAL_URL_PREFIX", "/content/images"),

		ThemesPath:  getEnv("THEMES_PATH", "./content/themes"),
		ActiveTheme: getEnv("ACTIVE_THEME", "casper"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),

		StorageConfigFile: getEnv("STORAGE_CONFIG_FILE", ""),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// StorageOptions reads StorageConfigFile. Without a file, all options are
// unset and storage falls back to env and defaults.
func (c *Config) StorageOptions() (storage.Options, error) {
	var opts storage.Options
	if c.StorageConfigFile == "" {
		return opts, nil
	}
	data, err := os.ReadFile(c.StorageConfigFile)
	if err != nil {
		return opts, fmt.Errorf("read storage config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse storage config %s: %w", c.StorageConfigFile, err)
	}
	return opts, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring non-numeric env value")
		return fallback
	}
	return n
}
