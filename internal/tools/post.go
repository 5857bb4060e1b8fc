package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// registerPostToWaldur registers the post_to_waldur tool.
func (ts *ToolServer) registerPostToWaldur() {
	tool := mcp.NewTool("post_to_waldur",
		mcp.WithDescription("Make a POST request to the Waldur API using a parsed intent. Staff access is verified first. "+
			"parsed_intent needs WALDUR_API_TOKEN, email, user_access ('staff' or 'not a staff'), method, http_method 'POST', "+
			"and payload. Creating a project requires short_name and customer; the customer value must be the full API URL "+
			"(resolve a customer name with get_uuid first, then build {base}/customers/{uuid}/). "+
			"User invitations require a role; list roles with get_from_waldur when missing."),
		mcp.WithObject("parsed_intent",
			mcp.Required(),
			mcp.Description("Parsed request: {WALDUR_API_TOKEN, email, user_access, method, http_method, payload}"),
		),
	)

	ts.server.AddTool(tool, ts.handlePostToWaldur)
}

func (ts *ToolServer) handlePostToWaldur(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := parsedIntent(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if denied := ts.requireStaff(ctx, intent); denied != nil {
		return denied, nil
	}

	// Project creation has two mandatory fields the agent often lacks up
	// front; elicit them instead of letting the API reject the request.
	if intent.Method == "projects" {
		if !hasValue(intent.Payload, "short_name") {
			return elicit("What is the short name of the project?",
				"short_name", "The short name of the project (e.g., bri-sci-pr)")
		}
		if !hasValue(intent.Payload, "customer") {
			return elicit("Which customer/organization is this project for?",
				"customer", "The customer name (e.g., Bristol University)")
		}
	}

	if intent.Method == "user-invitations" && !hasValue(intent.Payload, "role") {
		return elicit("Which role do you want to assign to the user?",
			"role", "The role of the user (e.g., PROJECT.ADMIN (Project Administrator))")
	}

	if err := ts.waldurClient.Create(ctx, intent.Token, intent.Method, intent.Payload); err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, intent.Method,
			fmt.Sprintf("The %s endpoint was not found.", intent.Method))), nil
	}

	ts.logger.Info("resource created", "endpoint", intent.Method)
	return mcp.NewToolResultText(fmt.Sprintf("Success! Your %s request was created.", intent.Method)), nil
}

// hasValue reports whether the payload has a non-empty value for key.
func hasValue(payload map[string]any, key string) bool {
	v, ok := payload[key]
	if !ok || v == nil {
		return false
	}
	s, isString := v.(string)
	return !isString || s != ""
}
