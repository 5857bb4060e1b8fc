package tools

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/openportal-dev/waldur-mcp/internal/waldur"
	"github.com/openportal-dev/waldur-mcp/pkg/types"
)

// newToolServer wires a ToolServer against a fake Waldur API.
func newToolServer(t *testing.T, handler http.Handler) *ToolServer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &ToolServer{
		waldurClient: waldur.New(srv.URL+"/api/", srv.Client(), logger),
		logger:       logger,
	}
}

// newClosedClient returns a Waldur client pointed at a server that is no
// longer listening, to exercise connection-error paths.
func newClosedClient(t *testing.T, url string) *waldur.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return waldur.New(url+"/api/", http.DefaultClient, logger)
}

// callReq builds a tool call with the given arguments.
func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// intentArgs wraps a parsed intent the way the agent sends it.
func intentArgs(intent map[string]any) map[string]any {
	return map[string]any{"parsed_intent": intent}
}

// resultText extracts the text content of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

// decodeElicitation asserts the result is an elicitation payload and
// returns it.
func decodeElicitation(t *testing.T, result *mcp.CallToolResult) types.Elicitation {
	t.Helper()
	var e types.Elicitation
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &e))
	require.Equal(t, "elicitation/create", e.Type)
	return e
}

// paginated serves one page of items then empty pages, like Waldur does.
func paginated(t *testing.T, items []map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			_ = json.NewEncoder(w).Encode([]map[string]any{})
			return
		}
		_ = json.NewEncoder(w).Encode(items)
	}
}

// staffWhoAmI answers the whoami endpoint with the given staff flag.
func staffWhoAmI(isStaff bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(types.WhoAmI{Email: "staff@example.com", IsStaff: isStaff})
	}
}
