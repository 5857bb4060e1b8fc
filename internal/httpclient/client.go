// Package httpclient builds the HTTP clients used for all outbound calls,
// with consistent timeout, TLS, User-Agent, and retry behavior.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Config controls the constructed client.
type Config struct {
	// Timeout bounds each request end to end.
	Timeout time.Duration

	// RetryAttempts is the number of retries after the initial try. Only
	// idempotent requests are ever retried.
	RetryAttempts int

	// RetryBackoff is the initial backoff interval between retries.
	RetryBackoff time.Duration

	// UserAgent is injected into every request that does not set its own.
	UserAgent string

	// InsecureSkipVerify disables TLS certificate verification. Only for
	// deployments with private CAs where VERIFY_SSL is switched off.
	InsecureSkipVerify bool
}

// DefaultConfig returns the settings used when the caller has no opinion.
func DefaultConfig() Config {
	return Config{
		Timeout:       10 * time.Second,
		RetryAttempts: 2,
		RetryBackoff:  500 * time.Millisecond,
		UserAgent:     "waldur-mcp/1.0",
	}
}

// Validate checks the configuration for nonsensical values.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts must not be negative, got %d", c.RetryAttempts)
	}
	return nil
}

// New creates an *http.Client from the configuration.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.InsecureSkipVerify, // #nosec G402 -- operator opt-in via VERIFY_SSL
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	var rt http.RoundTripper = base
	if cfg.RetryAttempts > 0 {
		rt = newRetryTransport(rt, cfg)
	}
	rt = &userAgentTransport{base: rt, userAgent: cfg.UserAgent}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: rt,
	}, nil
}

// userAgentTransport sets a default User-Agent header.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
