// Package report renders the operator-facing banner and run summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/bonk-launcher/internal/launcher"
	"github.com/rovshanmuradov/bonk-launcher/internal/transport"
)

const explorerTxURL = "https://solscan.io/tx/"

// Reporter writes styled output to w.
type Reporter struct {
	w      io.Writer
	styles Styles
}

// New creates a Reporter with the default palette.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w, styles: NewStyles(DefaultPalette())}
}

// Banner prints the run header. Credentials in the RPC URL are not shown.
func (r *Reporter) Banner(rpcURL string) {
	fmt.Fprintln(r.w, r.styles.Banner.Render("🚀 letsbonk launch + initial buy"))
	fmt.Fprintln(r.w, r.row("RPC URL", transport.RedactURL(rpcURL)))
}

// Summary prints the outcome of a run.
func (r *Reporter) Summary(s *launcher.Summary, symbol string) {
	fmt.Fprintln(r.w, r.styles.Box.Render(r.renderSummary(s, symbol)))
}

func (r *Reporter) renderSummary(s *launcher.Summary, symbol string) string {
	var rows []string

	status := r.styles.Success.Render("✅ Done")
	if !s.Succeeded() {
		status = r.styles.Failure.Render(fmt.Sprintf("❌ Failed at %s", s.State))
	}
	rows = append(rows, status, "")

	rows = append(rows,
		r.row("Run", s.RunID),
		r.row("Duration", s.Duration.Round(time.Millisecond).String()),
	)
	if !s.Payer.IsZero() {
		rows = append(rows, r.row("Payer", s.Payer.String()))
	}
	if !s.Mint.IsZero() {
		rows = append(rows, r.row("Mint", s.Mint.String()))
	}
	for _, probe := range s.Connectivity {
		if probe.Err != nil {
			rows = append(rows, r.styles.Label.Render("Probe")+r.styles.Warning.Render(fmt.Sprintf("%s unreachable", transport.RedactURL(probe.URL))))
			continue
		}
		rows = append(rows, r.row("Probe", fmt.Sprintf("%s -> %d", transport.RedactURL(probe.URL), probe.StatusCode)))
	}
	if s.SOLBalance > 0 {
		rows = append(rows, r.row("Wallet balance", formatAmount(s.SOLBalance, 4)+" SOL"))
	}
	if s.MetadataURI != "" {
		rows = append(rows, r.row("Metadata URI", s.MetadataURI))
	}
	if !s.LaunchSignature.IsZero() {
		rows = append(rows, r.txRow("Launch tx", s.LaunchSignature))
	}
	if !s.BaseTokenAccount.IsZero() {
		rows = append(rows, r.row("Base token account", s.BaseTokenAccount.String()))
	}
	if len(s.PDAs) > 0 {
		names := make([]string, 0, len(s.PDAs))
		for name := range s.PDAs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rows = append(rows, r.styles.Muted.Render(fmt.Sprintf("  %-18s %s", name, s.PDAs[name])))
		}
	}
	if !s.BuySignature.IsZero() {
		rows = append(rows, r.txRow("Buy tx", s.BuySignature))
	}
	switch {
	case s.TokenBalanceKnown:
		rows = append(rows, r.row(symbol+" balance", formatAmount(s.TokenBalance, 6)))
	case s.State == launcher.StateVerifyBalance || s.State == launcher.StateDone:
		rows = append(rows, r.styles.Warning.Render("Could not fetch token balance."))
	}

	if s.Err != nil {
		rows = append(rows, "", r.styles.Failure.Render(s.Err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (r *Reporter) row(label, value string) string {
	return r.styles.Label.Render(label) + r.styles.Value.Render(value)
}

func (r *Reporter) txRow(label string, sig solana.Signature) string {
	return r.styles.Label.Render(label) + r.styles.Link.Render(explorerTxURL+sig.String())
}

func formatAmount(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
