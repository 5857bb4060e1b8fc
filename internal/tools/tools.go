// Package tools provides the MCP tool implementations for the Waldur API.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/auth"
	"github.com/openportal-dev/waldur-mcp/internal/config"
	"github.com/openportal-dev/waldur-mcp/internal/endpoints"
	mcpserver "github.com/openportal-dev/waldur-mcp/internal/server"
	"github.com/openportal-dev/waldur-mcp/internal/waldur"
	"github.com/openportal-dev/waldur-mcp/pkg/types"
)

// ToolServer holds the dependencies for tool handlers.
type ToolServer struct {
	server        *mcpserver.Server
	waldurClient  *waldur.Client
	authenticator *auth.Authenticator
	endpoints     *endpoints.Service
	logger        *slog.Logger
}

// RegisterAll registers the tools for the selected toolset with the MCP
// server. The read-only toolset covers retrieval, authentication, and
// discovery; the full toolset adds the mutating tools.
func RegisterAll(s *mcpserver.Server, toolset config.Toolset) {
	ts := &ToolServer{
		server:        s,
		waldurClient:  s.WaldurClient(),
		authenticator: s.Authenticator(),
		endpoints:     s.Endpoints(),
		logger:        s.Logger(),
	}

	// Retrieval tools
	ts.registerGetUUID()
	ts.registerGetFromWaldur()

	// Authentication
	ts.registerGetWaldurAPIToken()

	// Endpoint discovery
	ts.registerRetrieveAPIEndpoint()

	// Conversation helpers
	ts.registerGreetUser()
	ts.registerCheckQueryType()
	ts.registerInferHTTPMethod()

	// OpenPortal lookups
	ts.registerGetUserInfo()
	ts.registerGetProjectShortName()
	ts.registerGetCustomerSpendInfo()
	ts.registerGetProjectUsers()

	// Mutation tools
	if toolset == config.ToolsetFull {
		ts.registerPostToWaldur()
		ts.registerPatchToWaldur()
		ts.registerDeleteFromWaldur()
	}
}

// elicit serializes an elicitation payload as the tool result, asking the
// user for a single required string field.
func elicit(message, field, description string) (*mcp.CallToolResult, error) {
	payload := types.NewElicitation(message, field, description)
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode elicitation: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// stringArg reads an optional string argument.
func stringArg(req mcp.CallToolRequest, name string) string {
	v, _ := req.Params.Arguments[name].(string)
	return v
}

// parsedIntent decodes the parsed_intent object argument.
func parsedIntent(req mcp.CallToolRequest) (*types.ParsedIntent, error) {
	raw, ok := req.Params.Arguments["parsed_intent"]
	if !ok {
		return nil, fmt.Errorf("parsed_intent is required")
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid parsed_intent: %w", err)
	}
	var intent types.ParsedIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("invalid parsed_intent: %w", err)
	}
	if intent.Token == "" {
		return nil, fmt.Errorf("parsed_intent is missing WALDUR_API_TOKEN")
	}
	if intent.Method == "" {
		return nil, fmt.Errorf("parsed_intent is missing method")
	}
	if intent.Payload == nil {
		intent.Payload = map[string]any{}
	}
	return &intent, nil
}

// accessDeniedMessage is returned whenever a mutating tool is used by a
// non-staff user. The declared access level in the intent is a shortcut for
// refusal only; permission is always verified against Waldur itself.
const accessDeniedMessage = "Access denied. You are not a staff user. Overriding this check is not permitted."

// requireStaff enforces the staff gate for mutating tools. A non-nil result
// means the caller must return it instead of proceeding.
func (ts *ToolServer) requireStaff(ctx context.Context, intent *types.ParsedIntent) *mcp.CallToolResult {
	if intent.UserAccess == "not a staff" {
		return mcp.NewToolResultError(accessDeniedMessage)
	}

	who, err := ts.waldurClient.WhoAmI(ctx, intent.Token, intent.Email)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not verify user access: %s",
			waldur.UserMessage(err, "openportal/whoami", "User not found.")))
	}
	if !who.IsStaff {
		return mcp.NewToolResultError(accessDeniedMessage)
	}
	return nil
}
