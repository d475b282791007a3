// Package config loads coordinator configuration from the environment, with
// an optional YAML file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the coordinator.
type Config struct {
	// HTTP listeners
	API APIConfig `mapstructure:"api"`
	WS  WSConfig  `mapstructure:"ws"`

	// Upstream quote provider
	OneInch OneInchConfig `mapstructure:"oneinch"`

	// Chain RPC endpoints
	EVM EVMConfig `mapstructure:"evm"`
	Sui SuiConfig `mapstructure:"sui"`

	// Coordinator tunables
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`

	// DevMode serves a fixed quote template instead of proxying upstream.
	DevMode bool `mapstructure:"dev_mode"`
}

// APIConfig configures the REST listener.
type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// WSConfig configures the WebSocket listener.
type WSConfig struct {
	Port           int           `mapstructure:"port"`
	OutboxCapacity int           `mapstructure:"outbox_capacity"`
	WriteDeadline  time.Duration `mapstructure:"write_deadline"`
}

// OneInchConfig points at the upstream quote aggregator.
type OneInchConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EVMConfig holds the EVM chain connection.
type EVMConfig struct {
	RPCURL        string `mapstructure:"rpc_url"`
	EscrowFactory string `mapstructure:"escrow_factory"`
}

// SuiConfig holds the Sui chain connection.
type SuiConfig struct {
	RPCURL        string `mapstructure:"rpc_url"`
	EscrowPackage string `mapstructure:"escrow_package"`
}

// CoordinatorConfig holds state-machine tunables.
type CoordinatorConfig struct {
	QuoteTTL            time.Duration `mapstructure:"quote_ttl"`
	SecretReleaseBuffer time.Duration `mapstructure:"secret_release_buffer"`
	ShutdownTimeout     time.Duration `mapstructure:"shutdown_timeout"`
}

// Load reads configuration from an optional file plus the environment.
func Load(configPath string) (*Config, error) {
	setDefaults()
	bindEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func setDefaults() {
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.read_timeout", "10s")
	viper.SetDefault("api.write_timeout", "30s")

	viper.SetDefault("ws.port", 8081)
	viper.SetDefault("ws.outbox_capacity", 256)
	viper.SetDefault("ws.write_deadline", "100ms")

	viper.SetDefault("oneinch.url", "https://api.1inch.dev/fusion-plus")
	viper.SetDefault("oneinch.timeout", "10s")

	viper.SetDefault("coordinator.quote_ttl", "15m")
	viper.SetDefault("coordinator.secret_release_buffer", "2s")
	viper.SetDefault("coordinator.shutdown_timeout", "5s")

	viper.SetDefault("dev_mode", false)
}

// bindEnv maps the documented environment surface onto config keys. 1INCH_*
// begin with a digit, so automatic env lookup cannot reach them.
func bindEnv() {
	viper.AutomaticEnv()
	_ = viper.BindEnv("api.port", "API_PORT")
	_ = viper.BindEnv("ws.port", "WS_PORT")
	_ = viper.BindEnv("oneinch.url", "1INCH_URL")
	_ = viper.BindEnv("oneinch.api_key", "1INCH_API_KEY")
	_ = viper.BindEnv("evm.rpc_url", "EVM_RPC_URL")
	_ = viper.BindEnv("evm.escrow_factory", "EVM_ESCROW_FACTORY")
	_ = viper.BindEnv("sui.rpc_url", "SUI_RPC_URL")
	_ = viper.BindEnv("sui.escrow_package", "SUI_ESCROW_PACKAGE")
	_ = viper.BindEnv("dev_mode", "DEV_MODE")
}

func validate(config *Config) error {
	if config.API.Port == config.WS.Port {
		return fmt.Errorf("api and ws listeners cannot share port %d", config.API.Port)
	}
	if config.EVM.RPCURL == "" {
		return fmt.Errorf("evm.rpc_url is required")
	}
	if config.Sui.RPCURL == "" {
		return fmt.Errorf("sui.rpc_url is required")
	}
	if !config.DevMode && config.OneInch.URL == "" {
		return fmt.Errorf("oneinch.url is required outside dev mode")
	}
	if config.WS.OutboxCapacity <= 0 {
		return fmt.Errorf("ws.outbox_capacity must be positive")
	}
	return nil
}
