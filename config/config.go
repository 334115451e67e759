package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mezonai/poldrop/errors"
	"github.com/mezonai/poldrop/logx"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration: Polygon mainnet, plain transfers
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			RPCURL:              DefaultRPCURL,
			ChainID:             DefaultChainID,
			GasLimit:            DefaultGasLimit,
			Symbol:              DefaultSymbol,
			CallTimeout:         DefaultCallTimeout,
			ReceiptTimeout:      DefaultReceiptTimeout,
			ReceiptPollInterval: DefaultReceiptPollInterval,

			MaxRequestsPerSecond: DefaultMaxRequests,
		},
		Files: FilesConfig{
			PrivateKeyFile: DefaultPrivateKeyFile,
			OutputDir:      DefaultOutputDir,
			LogDir:         DefaultLogDir,
		},
	}
}

// Load builds the effective config: defaults, then the optional file at path,
// then a .env file in the working directory, then process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, fmt.Sprintf("load config %s", path))
		}
		logx.Info("CONFIG", "Loaded config file ", path)
	}

	// A missing .env is the normal case
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logx.Warn("CONFIG", "Ignoring unreadable .env: ", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		return loadINI(path, cfg)
	default:
		return loadYAML(path, cfg)
	}
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	return decoder.Decode(cfg)
}

// loadINI reads [network], [files] and [metrics] sections
func loadINI(path string, cfg *Config) error {
	file, err := ini.Load(path)
	if err != nil {
		return err
	}
	if err := file.Section("network").MapTo(&cfg.Network); err != nil {
		return err
	}
	if err := file.Section("files").MapTo(&cfg.Files); err != nil {
		return err
	}
	return file.Section("metrics").MapTo(&cfg.Metrics)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvRPCURL); v != "" {
		cfg.Network.RPCURL = v
	}
	if v := os.Getenv(EnvChainID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, EnvChainID)
		}
		cfg.Network.ChainID = id
	}
	if v := os.Getenv(EnvGasLimit); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, EnvGasLimit)
		}
		cfg.Network.GasLimit = limit
	}
	if v := os.Getenv(EnvPrivateKeyFile); v != "" {
		cfg.Files.PrivateKeyFile = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Files.OutputDir = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.Files.LogDir = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	return nil
}

// Validate rejects configs the distributor cannot run with
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Network.RPCURL) == "":
		return errors.NewError(errors.ErrCodeInvalidConfig, "network.rpc_url is required")
	case c.Network.ChainID <= 0:
		return errors.NewError(errors.ErrCodeInvalidConfig, "network.chain_id must be positive")
	case c.Network.GasLimit == 0:
		return errors.NewError(errors.ErrCodeInvalidConfig, "network.gas_limit must be positive")
	case c.Network.Symbol == "":
		return errors.NewError(errors.ErrCodeInvalidConfig, "network.symbol is required")
	case c.Network.CallTimeout <= 0, c.Network.ReceiptTimeout <= 0, c.Network.ReceiptPollInterval <= 0:
		return errors.NewError(errors.ErrCodeInvalidConfig, "network timeouts must be positive")
	case c.Network.MaxRequestsPerSecond < 0:
		return errors.NewError(errors.ErrCodeInvalidConfig, "network.max_requests_per_second must not be negative")
	}
	return nil
}
