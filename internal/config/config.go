package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds runtime configuration, sourced from the environment.
type Config struct {
	DBHost        string `mapstructure:"DB_HOST"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	DBSSLMode     string `mapstructure:"DB_SSLMODE"`
	ServerPort    string `mapstructure:"SERVER_PORT"`
	MigrationsURL string `mapstructure:"MIGRATIONS_URL"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "agrimarket")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MIGRATIONS_URL", "file://migrations")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults cover every field, so unmarshal can only fail on a
		// malformed override. Fall back to the defaults, but say so.
		slog.Error("Ignoring malformed configuration override, using defaults", "error", err)
		return &Config{
			DBHost:        "localhost",
			DBPort:        "5432",
			DBUser:        "postgres",
			DBPassword:    "postgres",
			DBName:        "agrimarket",
			DBSSLMode:     "disable",
			ServerPort:    "8080",
			MigrationsURL: "file://migrations",
		}
	}
	return &cfg
}

// GetDBConnectionString builds the lib/pq connection string.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// GetDBURL builds the URL form used by golang-migrate.
func (c *Config) GetDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
