package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/balance"
	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/bonk-launcher/internal/blockchain/solbc"
	"github.com/rovshanmuradov/bonk-launcher/internal/config"
	"github.com/rovshanmuradov/bonk-launcher/internal/dex/letsbonk"
	"github.com/rovshanmuradov/bonk-launcher/internal/launcher"
	"github.com/rovshanmuradov/bonk-launcher/internal/logger"
	"github.com/rovshanmuradov/bonk-launcher/internal/metadata"
	"github.com/rovshanmuradov/bonk-launcher/internal/metrics"
	"github.com/rovshanmuradov/bonk-launcher/internal/report"
	"github.com/rovshanmuradov/bonk-launcher/internal/transaction"
	"github.com/rovshanmuradov/bonk-launcher/internal/transport"
	"github.com/rovshanmuradov/bonk-launcher/internal/types"
	"github.com/rovshanmuradov/bonk-launcher/internal/wallet"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130
)

var errPanic = errors.New("unexpected panic")

// configError marks failures detected before any network call.
type configError struct{ err error }

func (e configError) Error() string { return "configuration: " + e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCancelled
	default:
		return exitFailure
	}
}

func launchAction(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"), c.String("env-file"))
	if err != nil {
		return configError{err}
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return configError{err}
	}

	log, err := logger.New(&logger.Config{
		LogFile:    cfg.LogFile,
		MaxSize:    logger.DefaultConfig().MaxSize,
		MaxAge:     logger.DefaultConfig().MaxAge,
		MaxBackups: logger.DefaultConfig().MaxBackups,
		Compress:   true,
		Debug:      cfg.DebugLogging,
	})
	if err != nil {
		return configError{err}
	}
	defer func() { _ = log.Close() }()

	m := metrics.New()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Warn("Failed to write metrics file", zap.String("file", cfg.MetricsFile), zap.Error(err))
			}
		}()
	}

	return run(c.Context, cfg, log, m, report.New(os.Stdout))
}

// run wires the components and executes one launch.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics, out *report.Reporter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Fatal error", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	payer, err := wallet.NewWallet(cfg.Keypair)
	if err != nil {
		return configError{fmt.Errorf("decode keypair: %w", err)}
	}

	httpClient, err := transport.NewHTTPClient(transport.Config{
		CABundle: cfg.CABundle,
		Timeout:  cfg.HTTPTimeout,
	})
	if err != nil {
		return configError{err}
	}

	out.Banner(cfg.RPCURL)

	client := solbc.NewClient(cfg.RPCURL, httpClient, m, log.WithComponent("rpc"))
	assembler := transaction.NewAssembler(client, computebudget.Config{
		Units:     cfg.ComputeUnitLimit,
		UnitPrice: cfg.Priority.UnitPrice(cfg.ComputeUnitPrice),
	}, log.Logger)
	sender := transaction.NewSender(client, transaction.DefaultRetryPolicy(), m, log.Logger)

	dexCfg := letsbonk.GetDefaultConfig()
	dexCfg.SkipPreflight = cfg.SkipPreflight
	dexCfg.Slippage = cfg.Slippage
	dex := letsbonk.NewDEX(client, assembler, sender, dexCfg, log.Logger)

	uploader, err := metadata.NewUploader(metadata.Config{
		ImageEndpoint: cfg.Upload.ImageEndpoint,
		MetaEndpoint:  cfg.Upload.MetaEndpoint,
	}, httpClient, m, log.Logger)
	if err != nil {
		return err
	}

	oracle, err := balance.NewOracle(client, log.Logger)
	if err != nil {
		return err
	}

	l := launcher.New(launcher.Dependencies{
		Balances: oracle,
		Uploader: uploader,
		Launcher: dex,
		Buyer:    dex,
		Prober:   launcher.NewHTTPProber(httpClient),
	}, buildOptions(cfg), payer, m, log.WithOperation("launch"))

	summary, err := l.Run(ctx)
	out.Summary(summary, cfg.Token.Symbol)
	return err
}

func buildOptions(cfg *config.Config) launcher.Options {
	params := letsbonk.DefaultLaunchParams(cfg.Token.Name, cfg.Token.Symbol, "")
	params.Decimals = cfg.Launch.Decimals
	params.Supply = cfg.Launch.Supply
	params.TotalBaseSell = cfg.Launch.BaseSell
	params.TotalQuoteFundRaising = cfg.Launch.QuoteRaising

	probes := append([]string{}, cfg.ProbeURLs...)
	if !slices.Contains(probes, cfg.RPCURL) {
		probes = append(probes, cfg.RPCURL)
	}

	return launcher.Options{
		Token: metadata.Request{
			Name:        cfg.Token.Name,
			Symbol:      cfg.Token.Symbol,
			Description: cfg.Token.Description,
			Twitter:     cfg.Token.Twitter,
			Telegram:    cfg.Token.Telegram,
			Website:     cfg.Token.Website,
			ImageURL:    cfg.Token.ImageURL,
			ImageFile:   cfg.Token.ImageFile,
		},
		Launch:        params,
		InitialBuySOL: cfg.InitialBuySOL,
		BalanceBuffer: cfg.BalanceBuffer,
		ProbeURLs:     probes,
		ProbeTimeout:  launcher.DefaultProbeTimeout,
	}
}

// applyFlags overrides config values with flags set on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	stringFlags := map[string]*string{
		"name":         &cfg.Token.Name,
		"symbol":       &cfg.Token.Symbol,
		"description":  &cfg.Token.Description,
		"image-url":    &cfg.Token.ImageURL,
		"image-file":   &cfg.Token.ImageFile,
		"twitter":      &cfg.Token.Twitter,
		"telegram":     &cfg.Token.Telegram,
		"website":      &cfg.Token.Website,
		"rpc-url":      &cfg.RPCURL,
		"ca-bundle":    &cfg.CABundle,
		"metrics-file": &cfg.MetricsFile,
	}
	for flag, dst := range stringFlags {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.IsSet("buy") {
		cfg.InitialBuySOL = c.Float64("buy")
	}
	if c.IsSet("priority") {
		cfg.Priority = types.PriorityLevel(c.String("priority"))
	}
	if c.IsSet("debug") {
		cfg.DebugLogging = c.Bool("debug")
	}
}
