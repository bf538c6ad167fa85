package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is read by Load when present.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for dpdp-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Extraction pipeline inputs
	Extraction ExtractionConfig `yaml:"extraction"`

	// Compliance rule tables
	Compliance ComplianceConfig `yaml:"compliance"`

	// Requirement catalog cache
	Cache CacheConfig `yaml:"cache"`

	// Rules is loaded from Compliance.RulesFile (or defaults) after the main config.
	Rules *ComplianceRules `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"dpdp"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"dpdp_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ExtractionConfig points at the plain-text renderings of the legal documents.
type ExtractionConfig struct {
	RulesTextPath string `yaml:"rules_text_path" env:"DPDP_RULES_TEXT_PATH" env-default:"data/processed/dpdp_rules_2025.txt"`
	// ActTextPath is recorded for verification only; segmentation runs on the rules text.
	ActTextPath string `yaml:"act_text_path" env:"DPDP_ACT_TEXT_PATH" env-default:"data/processed/dpdp_act_2023.txt"`
}

// ComplianceConfig locates the optional override file for compliance rule tables.
type ComplianceConfig struct {
	// RulesFile is a YAML document decoded into ComplianceRules. Empty means built-in defaults.
	RulesFile string `yaml:"rules_file" env:"DPDP_COMPLIANCE_RULES_FILE" env-default:""`
}

// CacheConfig holds requirement catalog cache settings.
type CacheConfig struct {
	CatalogTTL time.Duration `yaml:"catalog_ttl" env:"DPDP_CATALOG_TTL" env-default:"5m"`
	// CatalogSize bounds the number of cached catalog snapshots (one per schedule set).
	CatalogSize int `yaml:"catalog_size" env:"DPDP_CATALOG_SIZE" env-default:"4"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// When config.yaml is absent, configuration comes from the environment alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultConfigPath, version)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	if cfg.Cache.CatalogTTL <= 0 {
		return nil, fmt.Errorf("cache.catalog_ttl must be positive, got %s", cfg.Cache.CatalogTTL)
	}
	if cfg.Cache.CatalogSize <= 0 {
		return nil, fmt.Errorf("cache.catalog_size must be positive, got %d", cfg.Cache.CatalogSize)
	}

	rules, err := LoadComplianceRules(cfg.Compliance.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load compliance rules: %w", err)
	}
	cfg.Rules = rules

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
