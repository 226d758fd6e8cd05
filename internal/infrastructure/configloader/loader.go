package configloader

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server configurations.
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MorphoConfig holds Morpho GraphQL API specific configurations.
type MorphoConfig struct {
	GraphQLURL           string  `yaml:"graphqlURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
	MaxRetries           int     `yaml:"maxRetries"`
	RetryDelayMillis     int64   `yaml:"retryDelayMillis"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
}

// PriceServiceConfig holds configuration for the token price service.
type PriceServiceConfig struct {
	MaxTokensPerBatchRequest int   `yaml:"maxTokensPerBatchRequest"`
	CacheTTLMinutes          int   `yaml:"cacheTTLMinutes"`
	RequestTimeoutMillis     int64 `yaml:"requestTimeoutMillis"`
}

// ReportConfig holds default toggles for report generation. Request query
// parameters override these per call.
type ReportConfig struct {
	Chains           []string `yaml:"chains"`
	BorrowOnly       bool     `yaml:"borrowOnly"`
	RepriceUSD       bool     `yaml:"repriceUsd"`
	IncludeUntrusted bool     `yaml:"includeUntrusted"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
}

// WalletsConfig holds wallet source configurations.
type WalletsConfig struct {
	FilePath string `yaml:"filePath"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Morpho       MorphoConfig       `yaml:"morpho"`
	DEXScreener  DEXScreenerConfig  `yaml:"dexScreener"`
	PriceService PriceServiceConfig `yaml:"priceService"`
	Report       ReportConfig       `yaml:"report"`
	Performance  PerformanceConfig  `yaml:"performance"`
	Wallets      WalletsConfig      `yaml:"wallets"`
}

// Load reads the YAML configuration file from the given path, unmarshals it
// and fills in defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	logrus.WithFields(logrus.Fields{
		"path":   path,
		"port":   cfg.Server.Port,
		"chains": cfg.Report.Chains,
	}).Info("Configuration loaded")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Morpho.GraphQLURL == "" {
		cfg.Morpho.GraphQLURL = "https://api.morpho.org/graphql"
	}
	if cfg.Morpho.RequestTimeoutMillis <= 0 {
		cfg.Morpho.RequestTimeoutMillis = 15000
	}
	if cfg.Morpho.RequestsPerSecond <= 0 {
		cfg.Morpho.RequestsPerSecond = 5
	}
	if cfg.Morpho.MaxRetries <= 0 {
		cfg.Morpho.MaxRetries = 3
	}
	if cfg.Morpho.RetryDelayMillis <= 0 {
		cfg.Morpho.RetryDelayMillis = 500
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}
	if cfg.DEXScreener.RequestsPerSecond <= 0 {
		cfg.DEXScreener.RequestsPerSecond = 3
	}

	if cfg.PriceService.MaxTokensPerBatchRequest <= 0 {
		cfg.PriceService.MaxTokensPerBatchRequest = 30 // DEXScreener limit
	}
	if cfg.PriceService.CacheTTLMinutes <= 0 {
		cfg.PriceService.CacheTTLMinutes = 10
	}
	if cfg.PriceService.RequestTimeoutMillis <= 0 {
		cfg.PriceService.RequestTimeoutMillis = cfg.DEXScreener.RequestTimeoutMillis
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}

	if cfg.Wallets.FilePath == "" {
		cfg.Wallets.FilePath = "data/wallets.txt"
	}
}
