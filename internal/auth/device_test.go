package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdentityProvider mimics the Keycloak endpoints the flow touches.
type fakeIdentityProvider struct {
	srv *httptest.Server

	deviceCalls atomic.Int32
	tokenCalls  atomic.Int32

	// tokenResponse decides what the token endpoint answers. Defaults to
	// authorization_pending.
	tokenResponse func(w http.ResponseWriter, call int32)
}

func newFakeIdentityProvider(t *testing.T) *fakeIdentityProvider {
	t.Helper()
	idp := &fakeIdentityProvider{}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                        idp.srv.URL,
			"authorization_endpoint":        idp.srv.URL + "/auth",
			"token_endpoint":                idp.srv.URL + "/token",
			"device_authorization_endpoint": idp.srv.URL + "/device",
			"jwks_uri":                      idp.srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/device", func(w http.ResponseWriter, _ *http.Request) {
		idp.deviceCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "device-123",
			"user_code":        "ABCD-EFGH",
			"verification_uri": idp.srv.URL + "/verify",
			"expires_in":       600,
			"interval":         1,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "urn:ietf:params:oauth:grant-type:device_code", r.Form.Get("grant_type"))
		require.Equal(t, "device-123", r.Form.Get("device_code"))

		call := idp.tokenCalls.Add(1)
		if idp.tokenResponse != nil {
			idp.tokenResponse(w, call)
			return
		}
		writeTokenError(w, "authorization_pending")
	})

	idp.srv = httptest.NewServer(mux)
	t.Cleanup(idp.srv.Close)
	return idp
}

func writeTokenError(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, `{"error":%q}`, code)
}

func (idp *fakeIdentityProvider) authenticator() *Authenticator {
	return New(Config{
		ClientID:     "homeport-public",
		DiscoveryURL: idp.srv.URL + "/.well-known/openid-configuration",
	}, idp.srv.Client(), nil)
}

func TestBeginResolvesEndpointsFromDiscovery(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	a := idp.authenticator()

	da, err := a.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-EFGH", da.UserCode)
	assert.Equal(t, idp.srv.URL+"/verify", da.VerificationURI)
}

func TestBeginReusesUnexpiredSession(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	a := idp.authenticator()

	first, err := a.Begin(context.Background())
	require.NoError(t, err)
	second, err := a.Begin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.DeviceCode, second.DeviceCode)
	assert.Equal(t, int32(1), idp.deviceCalls.Load(), "no second device-code request while the session is live")
}

func TestPollPendingKeepsSession(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	a := idp.authenticator()

	_, err := a.Begin(context.Background())
	require.NoError(t, err)

	_, err = a.Poll(context.Background())
	assert.ErrorIs(t, err, ErrPending)

	// Session survives a pending poll; Begin must not restart the flow.
	_, err = a.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), idp.deviceCalls.Load())
}

func TestPollCallerAbortKeepsSession(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	a := idp.authenticator()

	_, err := a.Begin(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Poll(ctx)
	assert.ErrorIs(t, err, ErrPending)

	// An aborted tool call is not a failed authorisation; the next Begin
	// must reuse the device code instead of restarting the flow.
	_, err = a.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), idp.deviceCalls.Load())
}

func TestPollSuccessClearsSession(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	idp.tokenResponse = func(w http.ResponseWriter, _ int32) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "oidc-access",
			"token_type":   "Bearer",
			"expires_in":   300,
		})
	}
	a := idp.authenticator()

	_, err := a.Begin(context.Background())
	require.NoError(t, err)

	token, err := a.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "oidc-access", token)

	_, err = a.Poll(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestPollDeniedClearsSession(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	idp.tokenResponse = func(w http.ResponseWriter, _ int32) {
		writeTokenError(w, "access_denied")
	}
	a := idp.authenticator()

	_, err := a.Begin(context.Background())
	require.NoError(t, err)

	_, err = a.Poll(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPending)

	// Cleared session means a fresh Begin requests a new device code.
	_, err = a.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), idp.deviceCalls.Load())
}

func TestStaticEndpointsWithoutDiscovery(t *testing.T) {
	idp := newFakeIdentityProvider(t)
	a := New(Config{
		ClientID:       "homeport-public",
		DeviceEndpoint: idp.srv.URL + "/device",
		TokenEndpoint:  idp.srv.URL + "/token",
	}, idp.srv.Client(), nil)

	da, err := a.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-EFGH", da.UserCode)
}

func TestMissingEndpointsIsAnError(t *testing.T) {
	a := New(Config{ClientID: "homeport-public"}, nil, nil)

	_, err := a.Begin(context.Background())
	assert.ErrorContains(t, err, "not configured")
}
