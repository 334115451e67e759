package config

import "time"

// NetworkConfig describes the single chain a run talks to
type NetworkConfig struct {
	RPCURL              string        `yaml:"rpc_url" ini:"rpc_url"`
	ChainID             int64         `yaml:"chain_id" ini:"chain_id"`
	GasLimit            uint64        `yaml:"gas_limit" ini:"gas_limit"`
	Symbol              string        `yaml:"symbol" ini:"symbol"`
	CallTimeout         time.Duration `yaml:"call_timeout" ini:"call_timeout"`
	ReceiptTimeout      time.Duration `yaml:"receipt_timeout" ini:"receipt_timeout"`
	ReceiptPollInterval time.Duration `yaml:"receipt_poll_interval" ini:"receipt_poll_interval"`

	// MaxRequestsPerSecond throttles RPC calls, 0 means unlimited
	MaxRequestsPerSecond int `yaml:"max_requests_per_second" ini:"max_requests_per_second"`
}

// FilesConfig holds default locations for inputs and outputs
type FilesConfig struct {
	PrivateKeyFile string `yaml:"private_key_file" ini:"private_key_file"`
	OutputDir      string `yaml:"output_dir" ini:"output_dir"`
	LogDir         string `yaml:"log_dir" ini:"log_dir"`
}

type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr" ini:"listen_addr"`
}

// Config is the top-level structure for poldrop.yml
type Config struct {
	Network NetworkConfig `yaml:"network"`
	Files   FilesConfig   `yaml:"files"`
	Metrics MetricsConfig `yaml:"metrics"`
}
