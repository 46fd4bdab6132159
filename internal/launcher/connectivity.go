package launcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/bonk-launcher/internal/transport"
)

// DefaultProbeTimeout bounds each connectivity probe.
const DefaultProbeTimeout = 5 * time.Second

// DefaultProbeURL is checked in addition to the RPC endpoint.
const DefaultProbeURL = "https://ipfs.io"

// HTTPProber probes endpoints with a GET over the shared HTTP client.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober. A nil client uses http.DefaultClient.
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProber{client: client}
}

// Probe issues GET url and returns the status code. Any status counts as reachable.
func (p *HTTPProber) Probe(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("probe request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

// checkConnectivity probes every configured URL. Results are advisory only.
func (l *Launcher) checkConnectivity(ctx context.Context, log *zap.Logger) []ProbeResult {
	if l.deps.Prober == nil {
		return nil
	}

	results := make([]ProbeResult, 0, len(l.opts.ProbeURLs))
	for _, url := range l.opts.ProbeURLs {
		probeCtx, cancel := context.WithTimeout(ctx, l.opts.ProbeTimeout)
		status, err := l.deps.Prober.Probe(probeCtx, url)
		cancel()

		results = append(results, ProbeResult{URL: url, StatusCode: status, Err: err})
		shown := transport.RedactURL(url)
		if err != nil {
			log.Warn("Connectivity check failed", zap.String("url", shown), zap.String("error", transport.RedactURLs(err.Error())))
			continue
		}
		log.Info("Connectivity check", zap.String("url", shown), zap.Int("status", status))
	}
	return results
}
