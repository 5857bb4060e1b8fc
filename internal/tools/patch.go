package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// registerPatchToWaldur registers the patch_to_waldur tool.
func (ts *ToolServer) registerPatchToWaldur() {
	tool := mcp.NewTool("patch_to_waldur",
		mcp.WithDescription("Make a PATCH request to the Waldur API using a parsed intent. Staff access is verified first. "+
			"A PATCH always requires the resource UUID in payload.uuid; resolve it with get_uuid when only a short name "+
			"is known. The UUID is used in the URL and removed from the request body."),
		mcp.WithObject("parsed_intent",
			mcp.Required(),
			mcp.Description("Parsed request: {WALDUR_API_TOKEN, email, user_access, method, http_method, payload}"),
		),
	)

	ts.server.AddTool(tool, ts.handlePatchToWaldur)
}

func (ts *ToolServer) handlePatchToWaldur(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := parsedIntent(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if denied := ts.requireStaff(ctx, intent); denied != nil {
		return denied, nil
	}

	id, _ := intent.Payload["uuid"].(string)
	if id == "" {
		return elicit(fmt.Sprintf("I need the UUID to update this %s. Could you provide it?", intent.Method),
			"uuid", fmt.Sprintf("The UUID of the %s to update", intent.Method))
	}
	if err := uuid.Validate(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'%s' is not a valid UUID. Use get_uuid to look it up.", id)), nil
	}

	if err := ts.waldurClient.Update(ctx, intent.Token, intent.Method, id, intent.Payload); err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, intent.Method,
			fmt.Sprintf("The %s with UUID %s was not found.", intent.Method, id))), nil
	}

	ts.logger.Info("resource updated", "endpoint", intent.Method)
	return mcp.NewToolResultText(fmt.Sprintf("Success! Your %s request with UUID %s was updated.", intent.Method, id)), nil
}
