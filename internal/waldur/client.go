// Package waldur provides the REST client for the Waldur API.
package waldur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/openportal-dev/waldur-mcp/pkg/types"
)

// maxPages caps automatic pagination so a misbehaving server cannot spin the
// client forever.
const maxPages = 10000

// Client wraps the Waldur REST API. All calls take the caller's API token
// explicitly: the server holds no ambient credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Waldur client. baseURL must end with a slash.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeToken formats a raw Waldur API token for the Authorization header.
// Tokens that already carry the "Token " scheme pass through unchanged.
func NormalizeToken(token string) string {
	if strings.HasPrefix(token, "Token ") {
		return token
	}
	return "Token " + token
}

// List performs a GET against {endpoint}/ and follows pagination until an
// empty page. The page counter always starts at 1 and overrides any
// caller-supplied page parameter. A 404 partway through means the pages are
// exhausted, not that the request failed.
func (c *Client) List(ctx context.Context, token, endpoint string, params url.Values) (*types.ListResult, error) {
	result := &types.ListResult{Method: endpoint, Data: []map[string]any{}}

	for page := 1; page <= maxPages; page++ {
		query := url.Values{}
		for k, vs := range params {
			query[k] = vs
		}
		query.Set("page", strconv.Itoa(page))

		status, body, err := c.do(ctx, http.MethodGet, endpoint+"/", NormalizeToken(token), query, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			break
		}
		if status != http.StatusOK && status != http.StatusCreated {
			return nil, &APIError{StatusCode: status, Endpoint: endpoint, Body: string(body)}
		}

		var items []map[string]any
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("unexpected response format from %s: %w", endpoint, err)
		}
		if len(items) == 0 {
			break
		}
		result.Data = append(result.Data, items...)
	}

	result.TotalCount = len(result.Data)
	return result, nil
}

// Create performs a POST against {endpoint}/ with a JSON body.
func (c *Client) Create(ctx context.Context, token, endpoint string, payload map[string]any) error {
	status, body, err := c.do(ctx, http.MethodPost, endpoint+"/", NormalizeToken(token), nil, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return &APIError{StatusCode: status, Endpoint: endpoint, Body: string(body)}
	}
	return nil
}

// Update performs a PATCH against {endpoint}/{uuid}/. The uuid travels in the
// URL only; any uuid key in the payload is dropped before sending.
func (c *Client) Update(ctx context.Context, token, endpoint, uuid string, payload map[string]any) error {
	body := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "uuid" {
			continue
		}
		body[k] = v
	}

	status, respBody, err := c.do(ctx, http.MethodPatch, endpoint+"/"+uuid+"/", NormalizeToken(token), nil, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return &APIError{StatusCode: status, Endpoint: endpoint, Body: string(respBody)}
	}
	return nil
}

// Delete performs a DELETE against {endpoint}/{uuid}/. Waldur acknowledges
// deletions with 204 or, for asynchronous teardown, 202.
func (c *Client) Delete(ctx context.Context, token, endpoint, uuid string) error {
	status, body, err := c.do(ctx, http.MethodDelete, endpoint+"/"+uuid+"/", NormalizeToken(token), nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusAccepted {
		return &APIError{StatusCode: status, Endpoint: endpoint, Body: string(body)}
	}
	return nil
}

// do issues one request and returns the status code and body. auth is the
// complete Authorization header value.
func (c *Client) do(ctx context.Context, method, path, auth string, query url.Values, payload any) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("waldur request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &ConnectionError{Err: err}
	}

	c.logger.Debug("waldur response", "method", method, "path", path, "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}

// getJSON performs a single non-paginated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path, auth string, query url.Values, out any) error {
	status, body, err := c.do(ctx, http.MethodGet, path, auth, query, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return &APIError{StatusCode: status, Endpoint: strings.TrimSuffix(path, "/"), Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
