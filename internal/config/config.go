package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

const (
	defaultEnv       = "development"
	defaultDBPath    = "./dev.db"
	defaultPort      = "8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env        string
	Port       string
	DBPath     string
	RatesPath  string
	LogLevel   string
	LogFormat  string
	AdminEmail string
	SeedDemo   bool
}

// Load reads the environment (and a local .env file, if any) and returns a populated Config.
func Load() (Config, error) {
	// Best-effort: production should use real env injection.
	_ = loadDotEnv(".env")
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("port", defaultPort)
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("rates_path", "")
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_format", defaultLogFormat)
	v.SetDefault("admin_email", "")
	v.SetDefault("seed_demo", false)
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:        v.GetString("app_env"),
		Port:       v.GetString("port"),
		DBPath:     v.GetString("db_path"),
		RatesPath:  v.GetString("rates_path"),
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		AdminEmail: v.GetString("admin_email"),
		SeedDemo:   v.GetBool("seed_demo"),
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT must be a valid TCP port, got %q", cfg.Port)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Warnings lists settings that are missing but not fatal.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set; exported quotes will have no contact address")
	}
	if c.RatesPath == "" {
		warnings = append(warnings, "RATES_PATH is not set; using built-in rate table")
	}
	return warnings
}
