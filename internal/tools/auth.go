package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/auth"
	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// registerGetWaldurAPIToken registers the get_waldur_api_token tool.
//
// The flow spans multiple calls: the first call starts a device
// authorisation and asks the user to visit the verification URL; once the
// user confirms with authorised='yes', a single check against the identity
// provider either yields an OIDC token (exchanged for a Waldur API token)
// or re-prompts.
func (ts *ToolServer) registerGetWaldurAPIToken() {
	tool := mcp.NewTool("get_waldur_api_token",
		mcp.WithDescription("Obtain a Waldur API token via the OIDC device authorisation flow. "+
			"Call with authorised='no' first: the user gets a verification URL and code for their browser. "+
			"After the user confirms they have authorised, call again with authorised='yes'. "+
			"Returns the Waldur API token together with the user's email and access level (staff or read-only)."),
		mcp.WithString("authorised",
			mcp.Description("'yes' once the user has completed the browser authorisation, 'no' otherwise"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetWaldurAPIToken)
}

func (ts *ToolServer) handleGetWaldurAPIToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := ts.authenticator.Begin(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start device authorisation: %v", err)), nil
	}

	if !strings.EqualFold(stringArg(req, "authorised"), "yes") {
		return elicit(fmt.Sprintf(
			"Please authorise yourself in your browser. Visit %s and enter code %s. "+
				"Confirm here once you have authorised.",
			session.VerificationURI, session.UserCode),
			"authorised", "Type 'yes' after completing authorisation")
	}

	oidcToken, err := ts.authenticator.Poll(ctx)
	if errors.Is(err, auth.ErrPending) {
		return elicit(fmt.Sprintf(
			"You haven't completed authorisation yet. Please visit %s and enter code %s. Then try again with 'yes'.",
			session.VerificationURI, session.UserCode),
			"retry", "Type 'yes' after completing authorisation")
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Authorization error: %v", err)), nil
	}

	exchange, err := ts.waldurClient.ExchangeToken(ctx, oidcToken)
	if err != nil {
		if waldur.IsStatus(err, http.StatusUnauthorized) {
			return mcp.NewToolResultError("Invalid token."), nil
		}
		return mcp.NewToolResultError(waldur.UserMessage(err, "openportal/get_API_token", "Token exchange endpoint not found.")), nil
	}

	ts.logger.Info("waldur token issued", "access", exchange.UserAccess)

	if exchange.UserAccess == "staff" {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Successfully authorised! You are a staff user. Token %s and Email %s.",
			exchange.Token, exchange.UserEmail)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Successfully authorised! But you have read-only access. Token %s and Email %s.",
		exchange.Token, exchange.UserEmail)), nil
}
