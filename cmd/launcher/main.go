// ====================================
// File: cmd/launcher/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

func main() {
	// SIGINT/SIGTERM отменяют корневой контекст
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := newApp()
	err := app.RunContext(ctx, os.Args)
	code := exitCode(err)
	if err != nil && ctx.Err() != nil {
		code = exitCancelled
	}
	stop()

	if code != 0 {
		if code == exitCancelled {
			fmt.Fprintln(os.Stderr, "Cancelled by user")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(code)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bonk-launcher",
		Usage: "Launch a token on letsbonk.fun and make the initial buy",
		Description: `Uploads token metadata to IPFS, creates the token and its LaunchLab pool
in one transaction, then buys the configured amount of SOL worth of it.

KEYPAIR (base58, 64 bytes) and RPC_URL are read from the environment or .env.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a JSON or YAML config file",
				EnvVars: []string{"BONK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded before reading the environment",
			},
			&cli.StringFlag{Name: "name", Usage: "Token name"},
			&cli.StringFlag{Name: "symbol", Usage: "Token symbol"},
			&cli.StringFlag{Name: "description", Usage: "Token description"},
			&cli.StringFlag{Name: "image-url", Usage: "Image URL (pinned IPFS URLs are reused as is)"},
			&cli.StringFlag{Name: "image-file", Usage: "Local image file to upload"},
			&cli.StringFlag{Name: "twitter", Usage: "Twitter link"},
			&cli.StringFlag{Name: "telegram", Usage: "Telegram link"},
			&cli.StringFlag{Name: "website", Usage: "Website link"},
			&cli.Float64Flag{
				Name:    "buy",
				Aliases: []string{"b"},
				Usage:   "Initial buy amount in SOL",
			},
			&cli.StringFlag{Name: "rpc-url", Usage: "Solana RPC endpoint"},
			&cli.StringFlag{Name: "priority", Usage: "Priority fee preset: low, medium, high or extreme"},
			&cli.StringFlag{Name: "ca-bundle", Usage: "PEM bundle added to the system roots"},
			&cli.StringFlag{Name: "metrics-file", Usage: "Write Prometheus metrics to this file on exit"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Action: launchAction,
	}
}
