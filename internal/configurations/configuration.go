package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/zdziszkee/swift-registry/internal/database"
	"github.com/zdziszkee/swift-registry/internal/logging"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

const envPrefix = "APP_"

type Config struct {
	AppName  string          `koanf:"app_name"`
	Server   ServerConfig    `koanf:"server"`
	Log      logging.Config  `koanf:"log"`
	Database database.Config `koanf:"database"`
	Data     DataConfig      `koanf:"data"`
	Registry RegistryConfig  `koanf:"registry"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DataConfig struct {
	SwiftCodesFile string `koanf:"swift_codes_file"`
	AutoLoad       bool   `koanf:"auto_load"`
}

type RegistryConfig struct {
	// CountryNameMatch is how a submitted country name is compared with the
	// stored one: "exact" or "case_insensitive".
	CountryNameMatch string `koanf:"country_name_match"`
}

// DefaultConfig returns the default configuration for swift-registry
func DefaultConfig() *Config {
	return &Config{
		AppName: "swift-registry",
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
		Database: database.Config{
			Type:            "sqlite",
			Path:            "swift_registry.db",
			Port:            5432,
			SSLMode:         "disable",
			Catalog:         "swift_catalog",
			Schema:          "default_schema",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 1 * time.Hour,
		},
		Data: DataConfig{
			SwiftCodesFile: "/app/swift_codes.csv",
			AutoLoad:       false,
		},
		Registry: RegistryConfig{
			CountryNameMatch: string(validation.NameMatchExact),
		},
	}
}

// Load loads the configuration from defaults, a TOML file and APP_ prefixed
// environment variables, in that order.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Load default values.
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Load from config file if specified.
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("error checking config file: %w", err)
		}
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading TOML config file: %w", err)
		}
	} else {
		commonPaths := []string{
			"./config.toml",
			"./config/config.toml",
			"/etc/swift-registry/config.toml",
		}
		for _, path := range commonPaths {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading TOML config file from %s: %w", path, err)
				}
				break
			}
		}
	}

	// APP_DATABASE__SERVER_URI becomes database.server_uri.
	callback := func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		parts := strings.Split(s, "__")
		for i, part := range parts {
			parts[i] = strings.ToLower(part)
		}
		return strings.Join(parts, ".")
	}
	if err := k.Load(env.Provider(envPrefix, ".", callback), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validateConfig checks required fields.
func validateConfig(config *Config) error {
	if config.Server.Addr == "" {
		return errors.New("server addr cannot be empty")
	}
	if config.Server.ShutdownTimeout < 0 {
		return errors.New("server shutdown_timeout cannot be negative")
	}

	if err := validateDatabase(&config.Database); err != nil {
		return err
	}

	if err := config.Log.Validate(); err != nil {
		return err
	}

	if config.Data.AutoLoad && config.Data.SwiftCodesFile == "" {
		return errors.New("data.swift_codes_file cannot be empty when auto_load is enabled")
	}

	if _, err := validation.ParseNameMatch(config.Registry.CountryNameMatch); err != nil {
		return fmt.Errorf("registry country_name_match: %w", err)
	}

	return nil
}

func validateDatabase(db *database.Config) error {
	dialect, err := database.ParseDialect(db.Type)
	if err != nil {
		return fmt.Errorf("database type: %w", err)
	}

	switch dialect {
	case database.DialectSQLite:
		if db.Path == "" {
			return errors.New("database path cannot be empty for sqlite")
		}
	case database.DialectPostgres:
		if db.Host == "" {
			return errors.New("database host cannot be empty for postgres")
		}
		if db.Name == "" {
			return errors.New("database name cannot be empty for postgres")
		}
		if db.Port <= 0 || db.Port > 65535 {
			return fmt.Errorf("database port out of range: %d", db.Port)
		}
	case database.DialectTrino:
		if db.ServerURI == "" {
			return errors.New("database server_uri cannot be empty")
		}
		if !strings.HasPrefix(db.ServerURI, "http://") && !strings.HasPrefix(db.ServerURI, "https://") {
			return fmt.Errorf("database server_uri must start with 'http://' or 'https://', got '%s'", db.ServerURI)
		}
		if db.Catalog == "" {
			return errors.New("database catalog cannot be empty")
		}
		if db.Schema == "" {
			return errors.New("database schema cannot be empty")
		}
	}

	// Connection pool validations.
	if db.MaxOpenConns < 0 {
		return errors.New("max open connections cannot be negative")
	}
	if db.MaxIdleConns < 0 {
		return errors.New("max idle connections cannot be negative")
	}
	if db.ConnMaxLifetime < 0 {
		return errors.New("connection max lifetime cannot be negative")
	}
	return nil
}
