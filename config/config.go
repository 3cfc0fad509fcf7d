package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"okx-dex/pkg/client"
	"okx-dex/pkg/network"
	"okx-dex/pkg/wallet"
)

// Config holds the application configuration
type Config struct {
	APIKey            string
	SecretKey         string
	Passphrase        string
	ProjectID         string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	LogLevel          string

	EVM    EVMConfig
	Solana SolanaConfig
	Sui    SuiConfig

	MetricsAddr string
	HistoryFile string
	Networks    map[string]network.ChainConfig
}

// EVMConfig configures the EVM signer
type EVMConfig struct {
	RPCURL     string
	PrivateKey string
}

// SolanaConfig configures the Solana signer
type SolanaConfig struct {
	RPCURL        string
	PrivateKey    string
	ComputeUnits  uint32
	Commitment    string
	SkipPreflight bool
}

// SuiConfig configures the Sui signer
type SuiConfig struct {
	RPCURL     string
	PrivateKey string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.GetViper()
	v.SetConfigName(".okx-dex")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	// Set default values
	v.SetDefault("base_url", client.DefaultBaseURL)
	v.SetDefault("timeout", client.DefaultTimeout)
	v.SetDefault("requests_per_second", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("solana.commitment", "confirmed")
	v.SetDefault("sui.rpc_url", wallet.SuiMainnetURL)

	// Read from environment variables, e.g. OKX_API_KEY or OKX_EVM_RPC_URL
	v.SetEnvPrefix("OKX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	_ = v.ReadInConfig()

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		APIKey:            v.GetString("api_key"),
		SecretKey:         v.GetString("secret_key"),
		Passphrase:        v.GetString("api_passphrase"),
		ProjectID:         v.GetString("project_id"),
		BaseURL:           v.GetString("base_url"),
		Timeout:           v.GetDuration("timeout"),
		RequestsPerSecond: v.GetFloat64("requests_per_second"),
		LogLevel:          v.GetString("log_level"),
		EVM: EVMConfig{
			RPCURL:     v.GetString("evm.rpc_url"),
			PrivateKey: v.GetString("evm.private_key"),
		},
		Solana: SolanaConfig{
			RPCURL:        v.GetString("solana.rpc_url"),
			PrivateKey:    v.GetString("solana.private_key"),
			ComputeUnits:  v.GetUint32("solana.compute_units"),
			Commitment:    v.GetString("solana.commitment"),
			SkipPreflight: v.GetBool("solana.skip_preflight"),
		},
		Sui: SuiConfig{
			RPCURL:     v.GetString("sui.rpc_url"),
			PrivateKey: v.GetString("sui.private_key"),
		},
		MetricsAddr: v.GetString("metrics.addr"),
		HistoryFile: v.GetString("history_file"),
	}

	if v.IsSet("networks") {
		if err := v.UnmarshalKey("networks", &cfg.Networks); err != nil {
			return nil, fmt.Errorf("invalid networks configuration: %w", err)
		}
	}

	// Validate API credentials
	var missing []string
	for key, val := range map[string]string{
		"OKX_API_KEY":        cfg.APIKey,
		"OKX_SECRET_KEY":     cfg.SecretKey,
		"OKX_API_PASSPHRASE": cfg.Passphrase,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("API credentials not found (%s). Please set the environment variables or create a .okx-dex.yaml config file", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// ClientConfig returns the REST client settings
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		APIKey:            c.APIKey,
		SecretKey:         c.SecretKey,
		Passphrase:        c.Passphrase,
		ProjectID:         c.ProjectID,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
