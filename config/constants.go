package config

import "time"

const (
	DefaultRPCURL              = "https://polygon-rpc.com"
	DefaultChainID             = 137
	DefaultGasLimit            = 21000
	DefaultSymbol              = "POL"
	DefaultCallTimeout         = 15 * time.Second
	DefaultReceiptTimeout      = 120 * time.Second
	DefaultReceiptPollInterval = time.Second
	DefaultMaxRequests         = 10
	DefaultPrivateKeyFile      = "privatekey.txt"
	DefaultOutputDir           = "."
	DefaultLogDir              = "."
)

// Environment overrides, applied after the config file
const (
	EnvRPCURL         = "POLDROP_RPC_URL"
	EnvChainID        = "POLDROP_CHAIN_ID"
	EnvGasLimit       = "POLDROP_GAS_LIMIT"
	EnvPrivateKeyFile = "POLDROP_PRIVATE_KEY_FILE"
	EnvOutputDir      = "POLDROP_OUTPUT_DIR"
	EnvLogDir         = "POLDROP_LOG_DIR"
	EnvMetricsAddr    = "POLDROP_METRICS_ADDR"
)
