package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// The OpenPortal tools wrap the portal-specific reporting endpoints. Each
// one is pinned to a single endpoint so the agent cannot wander off into
// the general API for data these answer directly.

// registerGetUserInfo registers the get_user_info tool.
func (ts *ToolServer) registerGetUserInfo() {
	tool := mcp.NewTool("get_user_info",
		mcp.WithDescription("Retrieve user information from the whoami endpoint. "+
			"Answer only from what this tool returns."),
		mcp.WithString("WALDUR_API_TOKEN",
			mcp.Required(),
			mcp.Description("Waldur API token"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email of the user (e.g., nd@example.com)"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetUserInfo)
}

func (ts *ToolServer) handleGetUserInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := stringArg(req, "WALDUR_API_TOKEN")
	if token == "" {
		return mcp.NewToolResultError("Missing Waldur API token."), nil
	}
	email := stringArg(req, "email")
	if email == "" {
		return mcp.NewToolResultError("Missing required parameter: email."), nil
	}

	who, err := ts.waldurClient.WhoAmI(ctx, token, email)
	if err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, "openportal/whoami", "Resource not found.")), nil
	}

	out, err := json.MarshalIndent(who, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Here is the user information: %s", out)), nil
}

// registerGetProjectShortName registers the get_project_short_name tool.
func (ts *ToolServer) registerGetProjectShortName() {
	tool := mcp.NewTool("get_project_short_name",
		mcp.WithDescription("Retrieve the short name of a project given its name and owning customer."),
		mcp.WithString("WALDUR_API_TOKEN",
			mcp.Required(),
			mcp.Description("Waldur API token"),
		),
		mcp.WithString("project_name",
			mcp.Required(),
			mcp.Description("Project name (e.g., 'Maths research')"),
		),
		mcp.WithString("customer_name",
			mcp.Required(),
			mcp.Description("Customer/organization name (e.g., 'Bangor University')"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetProjectShortName)
}

func (ts *ToolServer) handleGetProjectShortName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := stringArg(req, "WALDUR_API_TOKEN")
	projectName := stringArg(req, "project_name")
	customerName := stringArg(req, "customer_name")
	if token == "" || projectName == "" || customerName == "" {
		return mcp.NewToolResultError("WALDUR_API_TOKEN, project_name, and customer_name are required."), nil
	}

	result, err := ts.waldurClient.ProjectShortName(ctx, token, projectName, customerName)
	if err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, "openportal/project_short_name",
			fmt.Sprintf("The project '%s' or customer '%s' does not exist.", projectName, customerName))), nil
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Here is the short name of the project %s in the organization %s: %s.",
		projectName, customerName, out)), nil
}

// registerGetCustomerSpendInfo registers the get_customer_spend_info tool.
func (ts *ToolServer) registerGetCustomerSpendInfo() {
	tool := mcp.NewTool("get_customer_spend_info",
		mcp.WithDescription("Retrieve customer spending information."),
		mcp.WithString("WALDUR_API_TOKEN",
			mcp.Required(),
			mcp.Description("Waldur API token"),
		),
		mcp.WithString("customer",
			mcp.Description("Customer name (e.g., 'Bristol University')"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetCustomerSpendInfo)
}

func (ts *ToolServer) handleGetCustomerSpendInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := stringArg(req, "WALDUR_API_TOKEN")
	if token == "" {
		return mcp.NewToolResultError("Missing Waldur API token."), nil
	}

	customer := stringArg(req, "customer")
	if customer == "" {
		return elicit("Which customer would you like spending info for?",
			"customer", "The name of the customer or institution (e.g., ABC University)")
	}

	info, err := ts.waldurClient.CustomerSpendInfo(ctx, token, customer)
	if err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, "openportal/customer_spend_info",
			fmt.Sprintf("Customer '%s' not found.", customer))), nil
	}

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// registerGetProjectUsers registers the get_project_users tool.
func (ts *ToolServer) registerGetProjectUsers() {
	tool := mcp.NewTool("get_project_users",
		mcp.WithDescription("Retrieve the users of a given project."),
		mcp.WithString("WALDUR_API_TOKEN",
			mcp.Required(),
			mcp.Description("Waldur API token"),
		),
		mcp.WithString("project_name",
			mcp.Required(),
			mcp.Description("Project name (e.g., 'Maths research')"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetProjectUsers)
}

func (ts *ToolServer) handleGetProjectUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := stringArg(req, "WALDUR_API_TOKEN")
	if token == "" {
		return mcp.NewToolResultError("Missing Waldur API token."), nil
	}
	projectName := stringArg(req, "project_name")
	if projectName == "" {
		return mcp.NewToolResultError("Missing required parameter: project name."), nil
	}

	users, err := ts.waldurClient.ProjectUsers(ctx, token, projectName)
	if err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, "openportal/list_project_users",
			fmt.Sprintf("Project '%s' not found.", projectName))), nil
	}

	out, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Here is the project users information: %s", out)), nil
}
