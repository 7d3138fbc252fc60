package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Funds     FundsConfig     `mapstructure:"funds"`
	Events    EventsConfig    `mapstructure:"events"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr"`
	HTTPAddr string `mapstructure:"http_addr"`
	APIToken string `mapstructure:"api_token"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory or postgres
	DSN    string `mapstructure:"dsn"`
}

// LedgerConfig seeds the operator-settable ledger settings on first start.
type LedgerConfig struct {
	Operators     []string `mapstructure:"operators"`
	LedgerAddress string   `mapstructure:"ledger_address"` // spender identity for the memory funds driver
	FundsAsset    string   `mapstructure:"funds_asset"`
	PlatformFee   string   `mapstructure:"platform_fee"`
	PayoutAddress string   `mapstructure:"payout_address"`
	VestingPool   string   `mapstructure:"vesting_pool"`
	CrowdsalePool string   `mapstructure:"crowdsale_pool"`
}

type FundsConfig struct {
	Driver         string        `mapstructure:"driver"` // memory or erc20
	RPCURL         string        `mapstructure:"rpc_url"`
	PrivateKey     string        `mapstructure:"private_key"`
	ChainID        int64         `mapstructure:"chain_id"`
	ReceiptTimeout time.Duration `mapstructure:"receipt_timeout"`
}

type EventsConfig struct {
	RabbitMQURL string `mapstructure:"rabbitmq_url"` // empty disables broker publishing
	Exchange    string `mapstructure:"exchange"`
}

type SchedulerConfig struct {
	BurnWatchInterval time.Duration `mapstructure:"burn_watch_interval"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads config.yaml from configPath (or . and ./config when empty),
// then applies ESTATE_* environment overrides, e.g. ESTATE_STORAGE_DSN.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix("ESTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.http_addr", ":8081")
	v.SetDefault("server.api_token", "dev-token")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=estateledger sslmode=disable")
	v.SetDefault("ledger.operators", []string{})
	v.SetDefault("ledger.ledger_address", "")
	v.SetDefault("ledger.funds_asset", "")
	v.SetDefault("ledger.platform_fee", "0")
	v.SetDefault("ledger.payout_address", "")
	v.SetDefault("ledger.vesting_pool", "")
	v.SetDefault("ledger.crowdsale_pool", "")
	v.SetDefault("funds.driver", "memory")
	v.SetDefault("funds.rpc_url", "http://localhost:8545")
	v.SetDefault("funds.private_key", "")
	v.SetDefault("funds.chain_id", 31337)
	v.SetDefault("funds.receipt_timeout", 2*time.Minute)
	v.SetDefault("events.rabbitmq_url", "")
	v.SetDefault("events.exchange", "estate.ledger")
	v.SetDefault("scheduler.burn_watch_interval", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Validate checks driver names, addresses and the fee amount.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Funds.Driver {
	case "memory":
	case "erc20":
		if c.Funds.PrivateKey == "" {
			return errors.New("funds.private_key is required for the erc20 driver")
		}
	default:
		return fmt.Errorf("unknown funds driver %q", c.Funds.Driver)
	}

	for _, op := range c.Ledger.Operators {
		if !common.IsHexAddress(op) {
			return fmt.Errorf("invalid operator address %q", op)
		}
	}

	optional := map[string]string{
		"ledger.ledger_address": c.Ledger.LedgerAddress,
		"ledger.funds_asset":    c.Ledger.FundsAsset,
		"ledger.payout_address": c.Ledger.PayoutAddress,
		"ledger.vesting_pool":   c.Ledger.VestingPool,
		"ledger.crowdsale_pool": c.Ledger.CrowdsalePool,
	}
	for key, value := range optional {
		if value != "" && !common.IsHexAddress(value) {
			return fmt.Errorf("invalid address for %s: %q", key, value)
		}
	}

	fee, err := decimal.NewFromString(c.Ledger.PlatformFee)
	if err != nil {
		return fmt.Errorf("invalid ledger.platform_fee: %w", err)
	}
	if fee.IsNegative() {
		return errors.New("ledger.platform_fee must not be negative")
	}

	return nil
}

// OperatorAddresses returns the configured operators as addresses.
func (c *Config) OperatorAddresses() []common.Address {
	out := make([]common.Address, 0, len(c.Ledger.Operators))
	for _, op := range c.Ledger.Operators {
		out = append(out, common.HexToAddress(op))
	}
	return out
}

// PlatformFee returns the validated platform fee.
func (c *Config) PlatformFee() decimal.Decimal {
	return decimal.RequireFromString(c.Ledger.PlatformFee)
}

// Address parses an optional address setting; empty means the zero address.
func Address(value string) common.Address {
	if value == "" {
		return common.Address{}
	}
	return common.HexToAddress(value)
}
