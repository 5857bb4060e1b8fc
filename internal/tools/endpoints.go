package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openportal-dev/waldur-mcp/internal/endpoints"
)

// searchCandidates is how many hits the lexical search keeps before the
// method/entity filter narrows them down.
const searchCandidates = 20

// maxEndpointResults caps what is returned to the agent.
const maxEndpointResults = 10

// registerRetrieveAPIEndpoint registers the retrieve_api_endpoint tool.
func (ts *ToolServer) registerRetrieveAPIEndpoint() {
	tool := mcp.NewTool("retrieve_api_endpoint",
		mcp.WithDescription("Find the most relevant Waldur API endpoint for a given action. "+
			"Use short, action-based phrases such as 'add user to project', 'create marketplace-offering', "+
			"'delete customer', or 'list support requests' - not full sentences. "+
			"Main entities: customers, projects, users, marketplace, marketplace-orders, marketplace-resource, "+
			"marketplace-plans, marketplace-service-providers, marketplace-provider-offerings, "+
			"marketplace-offering-permissions, user-invitations, roles, support, billing."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Short, keyword-rich phrase (e.g., 'add user to project')"),
		),
		mcp.WithString("method",
			mcp.Required(),
			mcp.Description("HTTP method (GET, POST, PATCH, DELETE)"),
		),
		mcp.WithString("target_entity",
			mcp.Required(),
			mcp.Description("Entity like 'customers', 'projects', etc."),
		),
	)

	ts.server.AddTool(tool, ts.handleRetrieveAPIEndpoint)
}

type endpointSearchResponse struct {
	Query   string             `json:"query"`
	Results []endpoints.Result `json:"results"`
	Message string             `json:"message,omitempty"`
}

func (ts *ToolServer) handleRetrieveAPIEndpoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := stringArg(req, "query")
	method := stringArg(req, "method")
	targetEntity := stringArg(req, "target_entity")
	if query == "" || method == "" || targetEntity == "" {
		return mcp.NewToolResultError("query, method, and target_entity are required."), nil
	}

	catalog, err := ts.endpoints.Catalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not load the Waldur API schema: %v", err)), nil
	}

	candidates := catalog.Search(query, searchCandidates)
	results := endpoints.Filter(candidates, method, targetEntity, maxEndpointResults)

	response := endpointSearchResponse{
		Query:   query,
		Results: results,
	}
	if len(results) == 0 {
		response.Results = []endpoints.Result{}
		response.Message = fmt.Sprintf("No relevant API endpoint found for: '%s'. Try simplifying the query.", query)
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
