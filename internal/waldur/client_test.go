package waldur

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openportal-dev/waldur-mcp/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", srv.Client(), nil)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "Token abc123", NormalizeToken("abc123"))
	assert.Equal(t, "Token abc123", NormalizeToken("Token abc123"))
}

func TestListPaginatesUntilEmptyPage(t *testing.T) {
	pages := map[int][]map[string]any{
		1: {{"uuid": "a"}, {"uuid": "b"}},
		2: {{"uuid": "c"}},
		3: {},
	}

	var authHeader string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/projects/", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(pages[page])
	}))

	got, err := client.List(context.Background(), "secret", "projects", nil)
	require.NoError(t, err)

	want := &types.ListResult{
		TotalCount: 3,
		Method:     "projects",
		Data:       []map[string]any{{"uuid": "a"}, {"uuid": "b"}, {"uuid": "c"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Token secret", authHeader)
}

func TestListOverridesCallerPageParam(t *testing.T) {
	var firstPage string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if firstPage == "" {
			firstPage = r.URL.Query().Get("page")
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))

	params := url.Values{}
	params.Set("page", "99")
	params.Set("name", "Quantum Research")

	_, err := client.List(context.Background(), "secret", "projects", params)
	require.NoError(t, err)
	assert.Equal(t, "1", firstPage, "pagination always starts at page 1")
}

func TestListNotFoundMidPaginationIsExhaustion(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_ = json.NewEncoder(w).Encode([]map[string]any{{"uuid": "a"}})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	got, err := client.List(context.Background(), "secret", "projects", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalCount)
}

func TestListUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.List(context.Background(), "bad", "projects", nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t,
		"Authentication failed. Please check your Waldur API token.",
		UserMessage(err, "projects", "not found"))
}

func TestCreatePostsJSONBody(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/projects/", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.Create(context.Background(), "secret", "projects", map[string]any{"short_name": "bri-sci-pro"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "bri-sci-pro", gotBody["short_name"])
}

func TestUpdateMovesUUIDToURL(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	payload := map[string]any{"uuid": "1234", "name": "renamed"}
	err := client.Update(context.Background(), "secret", "projects", "1234", payload)
	require.NoError(t, err)

	assert.Equal(t, "/api/projects/1234/", gotPath)
	assert.NotContains(t, gotBody, "uuid", "uuid must never appear in the body")
	assert.Equal(t, "renamed", gotBody["name"])
	assert.Contains(t, payload, "uuid", "caller's payload is not mutated")
}

func TestDeleteAcceptsAsyncTeardown(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusAccepted} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				require.Equal(t, "/api/projects/1234/", r.URL.Path)
				w.WriteHeader(status)
			}))
			assert.NoError(t, client.Delete(context.Background(), "secret", "projects", "1234"))
		})
	}
}

func TestDeleteNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := client.Delete(context.Background(), "secret", "projects", "1234")
	assert.True(t, IsNotFound(err))
}

func TestWhoAmI(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/openportal/whoami/", r.URL.Path)
		require.Equal(t, "nd@example.com", r.URL.Query().Get("email"))
		_ = json.NewEncoder(w).Encode(types.WhoAmI{Email: "nd@example.com", IsStaff: true})
	}))

	who, err := client.WhoAmI(context.Background(), "secret", "nd@example.com")
	require.NoError(t, err)
	assert.True(t, who.IsStaff)
}

func TestExchangeTokenUsesBearerScheme(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/openportal/get_API_token/", r.URL.Path)
		require.Equal(t, "Bearer oidc-access", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(types.TokenExchange{
			Token:      "waldur-token",
			UserEmail:  "nd@example.com",
			UserAccess: "staff",
		})
	}))

	exchange, err := client.ExchangeToken(context.Background(), "oidc-access")
	require.NoError(t, err)
	assert.Equal(t, "waldur-token", exchange.Token)
	assert.Equal(t, "staff", exchange.UserAccess)
}

func TestUserMessageConnectionError(t *testing.T) {
	client := New("http://127.0.0.1:1/api/", nil, nil)

	_, err := client.WhoAmI(context.Background(), "secret", "")
	require.Error(t, err)
	assert.Contains(t, UserMessage(err, "openportal/whoami", ""), "Error connecting to the server")
}

func TestEndpointForEntity(t *testing.T) {
	endpoint, ok := EndpointForEntity("invoice")
	require.True(t, ok)
	assert.Equal(t, "invoices", endpoint)

	_, ok = EndpointForEntity("starships")
	assert.False(t, ok)
}
