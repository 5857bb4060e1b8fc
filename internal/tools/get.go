package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/waldur"
)

// registerGetUUID registers the get_uuid tool.
func (ts *ToolServer) registerGetUUID() {
	tool := mcp.NewTool("get_uuid",
		mcp.WithDescription("Retrieve the UUID of a Waldur entity (e.g. a project, customer, or user) given its short name. "+
			"Supported entities: projects, users, customers, customer-credits, project-credits, roles, slurm-allocations, "+
			"slurm-jobs, user-invitations, invoice, marketplace-service-providers, marketplace-offerings, marketplace-orders, "+
			"marketplace-resource, marketplace-plans, marketplace-provider-offerings, marketplace-offering-permissions."),
		mcp.WithString("WALDUR_API_TOKEN",
			mcp.Required(),
			mcp.Description("Waldur API token"),
		),
		mcp.WithString("entity",
			mcp.Description("Type of entity, e.g. projects, customers, users"),
		),
		mcp.WithString("short_name",
			mcp.Description("Short name of the entity (different from its display name)"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetUUID)
}

func (ts *ToolServer) handleGetUUID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := stringArg(req, "WALDUR_API_TOKEN")
	if token == "" {
		return mcp.NewToolResultError("Missing Waldur API token."), nil
	}

	entity := stringArg(req, "entity")
	if entity == "" {
		return elicit("For which entity do you want the UUID?",
			"entity", "The name of the entity (e.g., projects)")
	}

	shortName := stringArg(req, "short_name")
	if shortName == "" && (entity == "projects" || entity == "customers") {
		return elicit(fmt.Sprintf("Please provide the short name of the %s.", entity),
			"short_name", fmt.Sprintf("The short name of the %s (e.g., bri-sci-pro)", entity))
	}

	endpoint, ok := waldur.EndpointForEntity(entity)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Sorry, I do not recognise the entity type '%s'.", entity)), nil
	}

	params := url.Values{}
	if shortName != "" {
		params.Set("short_name", shortName)
	}

	notFound := fmt.Sprintf("No %s found matching the criteria.", entity)
	if shortName != "" {
		notFound = fmt.Sprintf("No %s found with short_name '%s'.", entity, shortName)
	}

	result, err := ts.waldurClient.List(ctx, token, endpoint, params)
	if err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, endpoint, notFound)), nil
	}
	if result.TotalCount == 0 {
		return mcp.NewToolResultError(notFound), nil
	}

	uuid, _ := result.Data[0]["uuid"].(string)
	if uuid == "" {
		return mcp.NewToolResultError(fmt.Sprintf("I found %s but it has no UUID field.", entity)), nil
	}
	return mcp.NewToolResultText(uuid), nil
}

// registerGetFromWaldur registers the get_from_waldur tool.
func (ts *ToolServer) registerGetFromWaldur() {
	tool := mcp.NewTool("get_from_waldur",
		mcp.WithDescription("Make a GET request to the Waldur API using a parsed intent. "+
			"parsed_intent needs WALDUR_API_TOKEN, method (the endpoint, e.g. 'projects'), http_method 'GET', "+
			"and payload (query parameters for filtering, e.g. {\"name\": \"Quantum Research\"}). "+
			"Pagination is automatic. By default only essential fields are returned to save tokens; "+
			"request specific fields with payload {\"field\": [\"uuid\", \"name\"]}. "+
			"When users mention 'Project X in Organisation Y', look up the organisation first and then the "+
			"project within it; never search for the concatenated phrase as a single name."),
		mcp.WithObject("parsed_intent",
			mcp.Required(),
			mcp.Description("Parsed request: {WALDUR_API_TOKEN, method, http_method, payload}"),
		),
	)

	ts.server.AddTool(tool, ts.handleGetFromWaldur)
}

func (ts *ToolServer) handleGetFromWaldur(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent, err := parsedIntent(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := queryParams(intent.Payload)

	// Inject the essential field list unless the agent asked for specific
	// fields itself.
	if _, requested := params["field"]; !requested {
		if fields, ok := waldur.EssentialFields(intent.Method); ok {
			params["field"] = fields
			ts.logger.Debug("injected essential fields", "endpoint", intent.Method)
		}
	}

	result, err := ts.waldurClient.List(ctx, intent.Token, intent.Method, params)
	if err != nil {
		return mcp.NewToolResultError(waldur.UserMessage(err, intent.Method,
			fmt.Sprintf("No %s found matching the criteria.", intent.Method))), nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// queryParams flattens a JSON payload into query parameters. List values
// become repeated parameters, which is how Waldur accepts field filters.
func queryParams(payload map[string]any) url.Values {
	params := url.Values{}
	for key, value := range payload {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				params.Add(key, fmt.Sprint(item))
			}
		case nil:
			// skip
		default:
			params.Set(key, fmt.Sprint(v))
		}
	}
	return params
}
