// Package auth implements the OIDC device-authorization flow used to obtain
// a Waldur API token for the user driving the agent.
//
// The flow is interactive across tool calls: the first call hands the user a
// verification URL and code, later calls check once whether the user has
// finished authorising in the browser. There is no background polling loop;
// each check is bounded and driven by the user confirming "yes".
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ErrPending means the user has not completed the browser authorisation yet.
var ErrPending = errors.New("device authorization pending")

// ErrNoSession means Poll was called without a prior Begin.
var ErrNoSession = errors.New("no device authorization in progress")

// DefaultScopes are requested when the config does not override them.
var DefaultScopes = []string{"openid", "profile", "email"}

// Config describes the OAuth client and where its endpoints come from.
type Config struct {
	// ClientID is the public OAuth client. Individual users authenticate
	// via the device flow; no client secret is involved.
	ClientID string

	// DiscoveryURL is the OIDC discovery document. When set, the device
	// and token endpoints are read from it and the static endpoints below
	// are ignored.
	DiscoveryURL string

	// DeviceEndpoint and TokenEndpoint are used when DiscoveryURL is empty.
	DeviceEndpoint string
	TokenEndpoint  string

	Scopes []string
}

// Authenticator runs the device flow. One authorisation session is tracked
// at a time; a finished session (success or terminal failure) is cleared so
// the next Begin starts fresh.
type Authenticator struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	oauthCfg *oauth2.Config
	session  *oauth2.DeviceAuthResponse
}

// New creates an Authenticator.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Authenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	return &Authenticator{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Begin starts a device authorisation, or returns the current one if it has
// not expired. The response carries the verification URI and user code to
// show the user.
func (a *Authenticator) Begin(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil && (a.session.Expiry.IsZero() || time.Now().Before(a.session.Expiry)) {
		return a.session, nil
	}
	a.session = nil

	cfg, err := a.resolveEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	da, err := cfg.DeviceAuth(a.clientContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	a.logger.Info("device authorization started", "verification_uri", da.VerificationURI)
	a.session = da
	return da, nil
}

// Poll checks once whether the user has completed the authorisation and
// returns the OIDC access token when they have. ErrPending is returned while
// the user has not finished; the session stays alive for the next Poll.
// Terminal errors (expired or denied) clear the session.
func (a *Authenticator) Poll(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return "", ErrNoSession
	}

	cfg, err := a.resolveEndpoints(ctx)
	if err != nil {
		return "", err
	}

	// DeviceAccessToken polls on the advertised interval until its context
	// expires. A window of one interval plus slack bounds it to a single
	// check, which is what the user-confirmed flow wants.
	pollCtx, cancel := context.WithTimeout(a.clientContext(ctx), a.pollWindow())
	defer cancel()

	token, err := cfg.DeviceAccessToken(pollCtx, a.session)
	switch {
	case err == nil:
		a.logger.Info("device authorization completed")
		a.session = nil
		return token.AccessToken, nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The check window elapsed or the caller aborted the tool call.
		// Neither says anything about the authorisation itself, so the
		// session stays alive for the next attempt.
		return "", ErrPending
	default:
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "authorization_pending" {
			return "", ErrPending
		}
		// Expired, denied, or otherwise unrecoverable: start over next time.
		a.logger.Warn("device authorization failed", "error", err)
		a.session = nil
		return "", fmt.Errorf("device authorization failed: %w", err)
	}
}

// Reset drops any in-flight session.
func (a *Authenticator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = nil
}

func (a *Authenticator) pollWindow() time.Duration {
	interval := time.Duration(a.session.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return interval + 2*time.Second
}

// clientContext makes oauth2 use the configured HTTP client.
func (a *Authenticator) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// resolveEndpoints builds the oauth2 config, consulting the discovery
// document on first use. The result is memoized; identity providers do not
// move endpoints within a process lifetime.
func (a *Authenticator) resolveEndpoints(ctx context.Context) (*oauth2.Config, error) {
	if a.oauthCfg != nil {
		return a.oauthCfg, nil
	}

	endpoint := oauth2.Endpoint{
		DeviceAuthURL: a.cfg.DeviceEndpoint,
		TokenURL:      a.cfg.TokenEndpoint,
	}

	if a.cfg.DiscoveryURL != "" {
		issuer := strings.TrimSuffix(a.cfg.DiscoveryURL, "/")
		issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, a.httpClient), issuer)
		if err != nil {
			return nil, fmt.Errorf("fetch discovery document: %w", err)
		}

		var claims struct {
			DeviceAuthorizationEndpoint string `json:"device_authorization_endpoint"`
		}
		if err := provider.Claims(&claims); err != nil {
			return nil, fmt.Errorf("parse discovery document: %w", err)
		}
		if claims.DeviceAuthorizationEndpoint == "" {
			return nil, errors.New("identity provider does not advertise a device authorization endpoint")
		}

		endpoint = provider.Endpoint()
		endpoint.DeviceAuthURL = claims.DeviceAuthorizationEndpoint
	}

	if endpoint.DeviceAuthURL == "" || endpoint.TokenURL == "" {
		return nil, errors.New("device and token endpoints are not configured")
	}

	a.oauthCfg = &oauth2.Config{
		ClientID: a.cfg.ClientID,
		Scopes:   a.cfg.Scopes,
		Endpoint: endpoint,
	}
	return a.oauthCfg, nil
}
