// Package transport builds the single HTTP client shared by every network call of a run.
//
// TLS settings (custom CA bundle, timeouts) are configured once in main and passed
// explicitly to the RPC adapter, the metadata uploader and the connectivity probe.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const DefaultTimeout = 30 * time.Second

var ErrNoCertificates = errors.New("CA bundle contains no PEM certificates")

// Config describes TLS and timeout settings for outgoing HTTP.
type Config struct {
	// CABundle is a path to a PEM bundle appended to the system pool.
	CABundle string
	Timeout  time.Duration
}

// NewHTTPClient returns a pooled client honouring cfg.
func NewHTTPClient(cfg Config) (*http.Client, error) {
	tlsConfig, err := TLSConfig(cfg)
	if err != nil {
		return nil, err
	}

	tr := cleanhttp.DefaultPooledTransport()
	tr.TLSClientConfig = tlsConfig

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// TLSConfig builds the TLS context. Without a CA bundle the system roots are used.
func TLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CABundle == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(cfg.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle %s: %w", cfg.CABundle, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%s: %w", cfg.CABundle, ErrNoCertificates)
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}
