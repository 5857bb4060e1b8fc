package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// registerDeleteFromWaldur registers the delete_from_waldur tool.
func (ts *ToolServer) registerDeleteFromWaldur() {
	tool := mcp.NewTool("delete_from_waldur",
		mcp.WithDescription("Delete a resource from Waldur using a parsed intent. Staff access is verified first. "+
			"A DELETE always requires the resource UUID in payload.uuid; resolve it from a short name with get_uuid. "+
			"The user must explicitly confirm with 'Yes' before anything is deleted."),
		mcp.WithObject("parsed_intent",
			mcp.Required(),
			mcp.Description("Parsed request: {WALDUR_API_TOKEN, email, user_access, method, http_method, payload}"),
		),
		mcp.WithString("confirm",
			mcp.Description("'Yes' to go ahead with the deletion, 'No' to cancel"),
		),
	)

	ts.server.AddTool(tool, ts.handleDeleteFromWaldur)
}

func (ts *ToolServer) handleDeleteFromWaldur(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := parsedIntent(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if denied := ts.requireStaff(ctx, intent); denied != nil {
		return denied, nil
	}

	id, _ := intent.Payload["uuid"].(string)
	if id == "" {
		if !hasValue(intent.Payload, "short_name") {
			return elicit("Please provide the short name.",
				"short_name", "The short name (e.g., if it's a project bri-sci-pro)")
		}
		return mcp.NewToolResultError(fmt.Sprintf(
			"I need the UUID to delete this %s. Call get_uuid with the short name first, then retry with the UUID in the payload.",
			intent.Method)), nil
	}
	if err := uuid.Validate(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'%s' is not a valid UUID. Use get_uuid to look it up.", id)), nil
	}

	switch strings.ToLower(stringArg(req, "confirm")) {
	case "yes":
		// confirmed, proceed below
	case "no":
		return mcp.NewToolResultText("Deletion cancelled as per your request."), nil
	default:
		return elicit("Are you sure you want to go ahead with deletion?",
			"confirm", fmt.Sprintf("Say Yes or No whether you want to go ahead with deletion of uuid %s", id))
	}

	if err := ts.waldurClient.Delete(ctx, intent.Token, intent.Method, id); err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, intent.Method,
			fmt.Sprintf("The %s with UUID %s was not found.", intent.Method, id))), nil
	}

	ts.logger.Info("resource deleted", "endpoint", intent.Method)
	return mcp.NewToolResultText(fmt.Sprintf("Success! The %s with the UUID %s was deleted.", intent.Method, id)), nil
}
