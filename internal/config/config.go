// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/bonk-launcher/internal/transport"
	"github.com/rovshanmuradov/bonk-launcher/internal/types"
)

type TokenConfig struct {
	Name        string `mapstructure:"name"`
	Symbol      string `mapstructure:"symbol"`
	Description string `mapstructure:"description"`
	ImageURL    string `mapstructure:"image_url"`
	ImageFile   string `mapstructure:"image_file"`
	Twitter     string `mapstructure:"twitter"`
	Telegram    string `mapstructure:"telegram"`
	Website     string `mapstructure:"website"`
}

type LaunchConfig struct {
	Decimals     uint8  `mapstructure:"decimals"`
	Supply       uint64 `mapstructure:"supply"`
	BaseSell     uint64 `mapstructure:"base_sell"`
	QuoteRaising uint64 `mapstructure:"quote_raising"`
}

type UploadConfig struct {
	ImageEndpoint string `mapstructure:"image_endpoint"`
	MetaEndpoint  string `mapstructure:"meta_endpoint"`
}

type Config struct {
	RPCURL  string `mapstructure:"rpc_url"`
	Keypair string `mapstructure:"keypair"`

	Token  TokenConfig  `mapstructure:"token"`
	Launch LaunchConfig `mapstructure:"launch"`
	Upload UploadConfig `mapstructure:"upload"`

	InitialBuySOL    float64              `mapstructure:"initial_buy_sol"`
	BalanceBuffer    float64              `mapstructure:"balance_buffer"`
	Slippage         types.SlippageConfig `mapstructure:"slippage"`
	SkipPreflight    bool                 `mapstructure:"skip_preflight"`
	ComputeUnitLimit uint32               `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice uint64               `mapstructure:"compute_unit_price"`
	Priority         types.PriorityLevel  `mapstructure:"priority"`

	ProbeURLs   []string      `mapstructure:"probe_urls"`
	CABundle    string        `mapstructure:"ca_bundle"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	MetricsFile  string `mapstructure:"metrics_file"`
}

const (
	DefaultRPCURL           = "https://api.mainnet-beta.solana.com"
	DefaultInitialBuySOL    = 0.05
	DefaultBalanceBuffer    = 0.1
	DefaultComputeUnitLimit = 1_200_000
	DefaultComputeUnitPrice = 100_000
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultLogFile          = "launcher.log"

	DefaultDecimals     = 6
	DefaultSupply       = 1_000_000_000_000_000
	DefaultBaseSell     = 793_100_000_000_000
	DefaultQuoteRaising = 85_000_000_000

	EnvPrefix = "BONK"
)

var (
	ErrMissingKeypair = errors.New("KEYPAIR environment variable not set")
	ErrMissingToken   = errors.New("token name and symbol are required")
	ErrInvalidRPCURL  = errors.New("invalid RPC URL")
	ErrInvalidAmount  = errors.New("invalid amount")
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"rpc_url": DefaultRPCURL,
		"keypair": "",

		"token.name":        "",
		"token.symbol":      "",
		"token.description": "",
		"token.image_url":   "",
		"token.image_file":  "",
		"token.twitter":     "",
		"token.telegram":    "",
		"token.website":     "",

		"launch.decimals":      DefaultDecimals,
		"launch.supply":        uint64(DefaultSupply),
		"launch.base_sell":     uint64(DefaultBaseSell),
		"launch.quote_raising": uint64(DefaultQuoteRaising),

		"upload.image_endpoint": "",
		"upload.meta_endpoint":  "",

		"initial_buy_sol":    DefaultInitialBuySOL,
		"balance_buffer":     DefaultBalanceBuffer,
		"slippage.type":      string(types.SlippageNone),
		"slippage.value":     0.0,
		"skip_preflight":     true,
		"compute_unit_limit": DefaultComputeUnitLimit,
		"compute_unit_price": DefaultComputeUnitPrice,
		"priority":           "",

		"probe_urls":   []string{"https://ipfs.io"},
		"ca_bundle":    "",
		"http_timeout": DefaultHTTPTimeout,

		"debug_logging": false,
		"log_file":      DefaultLogFile,
		"metrics_file":  "",
	}
}

// LoadConfig reads configuration from defaults, an optional config file, .env files
// and the environment, in increasing priority. Missing env files are ignored.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := loadEnvironmentVariables(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ProbeURLs = cleanList(cfg.ProbeURLs)

	return &cfg, nil
}

// Validate checks the configuration before any network call.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Keypair) == "" {
		return ErrMissingKeypair
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidRPCURL, transport.RedactURL(cfg.RPCURL), err)
	}
	if cfg.Token.Name == "" || cfg.Token.Symbol == "" {
		return ErrMissingToken
	}
	for _, probe := range cfg.ProbeURLs {
		if err := validateURLWithCache(probe, "http"); err != nil {
			return fmt.Errorf("invalid probe URL %q: %v", transport.RedactURL(probe), err)
		}
	}
	for _, endpoint := range []string{cfg.Upload.ImageEndpoint, cfg.Upload.MetaEndpoint} {
		if endpoint == "" {
			continue
		}
		if err := validateURLWithCache(endpoint, "http"); err != nil {
			return fmt.Errorf("invalid upload endpoint %q: %v", endpoint, err)
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if err := cfg.Priority.Validate(); err != nil {
		return err
	}
	return cfg.Slippage.Validate()
}

func validateNumericParams(cfg *Config) error {
	if cfg.InitialBuySOL <= 0 {
		return fmt.Errorf("%w: initial_buy_sol must be positive", ErrInvalidAmount)
	}
	if cfg.BalanceBuffer < 0 {
		return fmt.Errorf("%w: balance_buffer must be non-negative", ErrInvalidAmount)
	}
	if cfg.Launch.Supply == 0 || cfg.Launch.BaseSell == 0 || cfg.Launch.BaseSell > cfg.Launch.Supply {
		return fmt.Errorf("%w: launch.base_sell must be in (0, launch.supply]", ErrInvalidAmount)
	}
	if cfg.Launch.QuoteRaising == 0 {
		return fmt.Errorf("%w: launch.quote_raising must be positive", ErrInvalidAmount)
	}
	if cfg.ComputeUnitLimit == 0 {
		return errors.New("invalid compute_unit_limit")
	}
	if cfg.HTTPTimeout < 0 {
		return errors.New("invalid http_timeout")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	if parsed.Host == "" {
		return errors.New("missing URL host")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// RPC_URL and KEYPAIR are also accepted without the prefix.
	if err := v.BindEnv("rpc_url", EnvPrefix+"_RPC_URL", "RPC_URL"); err != nil {
		return err
	}
	if err := v.BindEnv("keypair", EnvPrefix+"_KEYPAIR", "KEYPAIR"); err != nil {
		return err
	}
	return nil
}

func loadDotEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func cleanList(items []string) []string {
	var clean []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				clean = append(clean, p)
			}
		}
	}
	return clean
}
