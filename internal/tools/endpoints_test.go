package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openportal-dev/waldur-mcp/internal/endpoints"
)

const toolTestSchema = `openapi: 3.0.0
info:
  title: Waldur
  version: "1.0"
paths:
  /api/projects/:
    get:
      summary: List projects
      description: Retrieve projects visible to the user.
    post:
      summary: Create project
      description: Create a new project under a customer.
  /api/project-permissions/:
    post:
      summary: Add user to project
      description: Grant a user a role in a project.
  /api/customers/:
    get:
      summary: List customers
      description: Retrieve customer organizations.
`

// cachedEndpointService builds a Service whose schema is pre-seeded on disk,
// so no download happens.
func cachedEndpointService(t *testing.T) *endpoints.Service {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "waldur-openapi-schema.yaml"), []byte(toolTestSchema), 0o644))
	return endpoints.NewService("http://127.0.0.1:1/schema", dir, nil, nil)
}

func TestRetrieveAPIEndpointRequiresArguments(t *testing.T) {
	ts := newToolServer(t, http.NewServeMux())
	ts.endpoints = cachedEndpointService(t)

	result, err := ts.handleRetrieveAPIEndpoint(context.Background(), callReq(map[string]any{
		"query": "add user to project",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "query, method, and target_entity are required.", resultText(t, result))
}

func TestRetrieveAPIEndpointFindsRoute(t *testing.T) {
	ts := newToolServer(t, http.NewServeMux())
	ts.endpoints = cachedEndpointService(t)

	result, err := ts.handleRetrieveAPIEndpoint(context.Background(), callReq(map[string]any{
		"query":         "add user to project",
		"method":        "POST",
		"target_entity": "project-permissions",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var response struct {
		Query   string             `json:"query"`
		Results []endpoints.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotEmpty(t, response.Results)
	assert.Equal(t, "/api/project-permissions/", response.Results[0].Path)
	assert.Equal(t, "POST", response.Results[0].Method)
}

func TestRetrieveAPIEndpointFiltersByMethod(t *testing.T) {
	ts := newToolServer(t, http.NewServeMux())
	ts.endpoints = cachedEndpointService(t)

	result, err := ts.handleRetrieveAPIEndpoint(context.Background(), callReq(map[string]any{
		"query":         "list projects",
		"method":        "GET",
		"target_entity": "projects",
	}))
	require.NoError(t, err)

	var response struct {
		Results []endpoints.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotEmpty(t, response.Results)
	for _, r := range response.Results {
		assert.Equal(t, "GET", r.Method)
	}
}

func TestRetrieveAPIEndpointNoMatch(t *testing.T) {
	ts := newToolServer(t, http.NewServeMux())
	ts.endpoints = cachedEndpointService(t)

	result, err := ts.handleRetrieveAPIEndpoint(context.Background(), callReq(map[string]any{
		"query":         "launch rockets",
		"method":        "POST",
		"target_entity": "rockets",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var response struct {
		Results []endpoints.Result `json:"results"`
		Message string             `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Empty(t, response.Results)
	assert.Contains(t, response.Message, "No relevant API endpoint found")
}

func TestRetrieveAPIEndpointSchemaLoadFailure(t *testing.T) {
	ts := newToolServer(t, http.NewServeMux())
	// Empty cache directory and an unreachable schema URL.
	ts.endpoints = endpoints.NewService("http://127.0.0.1:1/schema", t.TempDir(), nil, nil)

	result, err := ts.handleRetrieveAPIEndpoint(context.Background(), callReq(map[string]any{
		"query":         "list projects",
		"method":        "GET",
		"target_entity": "projects",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Could not load the Waldur API schema")
}
