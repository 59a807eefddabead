package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ganot/shipdash/internal/odoo"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Odoo      odoo.Settings   `yaml:"odoo"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects "http" or "stdio" (MCP only).
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DashboardConfig controls which orders are fetched and how they are shown.
type DashboardConfig struct {
	Websites       []string `yaml:"websites"`
	LocalCity      string   `yaml:"local_city"`
	RecordsPerPage int      `yaml:"records_per_page"`
}

// Load reads configuration from an optional YAML file and environment variables.
// The ERP connection settings are required; when any is missing Load returns
// an *odoo.ConfigurationError naming all of them.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "shipdash.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Odoo: odoo.Settings{
			LoginTimeout: 5 * time.Second,
			CallTimeout:  15 * time.Second,
			MaxRetries:   odoo.Retries(3),
		},
		Dashboard: DashboardConfig{
			Websites:       []string{"Pure Form", "Limit-X Nutrition", "APX Energy"},
			LocalCity:      "Tijuana",
			RecordsPerPage: 4,
		},
	}

	if path := os.Getenv("SHIPDASH_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Transport.Mode != "http" && cfg.Transport.Mode != "stdio" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	if cfg.Dashboard.RecordsPerPage <= 0 {
		return Config{}, fmt.Errorf("invalid records per page %d", cfg.Dashboard.RecordsPerPage)
	}
	if err := cfg.Odoo.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("SHIPDASH_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SHIPDASH_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SHIPDASH_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("SHIPDASH_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("SHIPDASH_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("SHIPDASH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if enabled := os.Getenv("SHIPDASH_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid SHIPDASH_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}

	if url := os.Getenv("ODOO_URL"); url != "" {
		cfg.Odoo.URL = url
	}
	if db := os.Getenv("ODOO_DB"); db != "" {
		cfg.Odoo.Database = db
	}
	if username := os.Getenv("ODOO_USERNAME"); username != "" {
		cfg.Odoo.Username = username
	}
	if password := os.Getenv("ODOO_PASSWORD"); password != "" {
		cfg.Odoo.Password = password
	}
	if retries := os.Getenv("ODOO_MAX_RETRIES"); retries != "" {
		n, err := strconv.Atoi(retries)
		if err != nil {
			return fmt.Errorf("invalid ODOO_MAX_RETRIES: %w", err)
		}
		cfg.Odoo.MaxRetries = odoo.Retries(n)
	}
	if rps := os.Getenv("ODOO_REQUESTS_PER_SECOND"); rps != "" {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return fmt.Errorf("invalid ODOO_REQUESTS_PER_SECOND: %w", err)
		}
		cfg.Odoo.RequestsPerSecond = v
	}
	if timeout := os.Getenv("ODOO_CALL_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid ODOO_CALL_TIMEOUT: %w", err)
		}
		cfg.Odoo.CallTimeout = d
	}
	if timeout := os.Getenv("ODOO_LOGIN_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid ODOO_LOGIN_TIMEOUT: %w", err)
		}
		cfg.Odoo.LoginTimeout = d
	}

	if websites := os.Getenv("SHIPDASH_WEBSITES"); websites != "" {
		cfg.Dashboard.Websites = splitList(websites)
	}
	if city := os.Getenv("SHIPDASH_LOCAL_CITY"); city != "" {
		cfg.Dashboard.LocalCity = city
	}
	if perPage := os.Getenv("SHIPDASH_RECORDS_PER_PAGE"); perPage != "" {
		n, err := strconv.Atoi(perPage)
		if err != nil {
			return fmt.Errorf("invalid SHIPDASH_RECORDS_PER_PAGE: %w", err)
		}
		cfg.Dashboard.RecordsPerPage = n
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
