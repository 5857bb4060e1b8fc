package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerInferHTTPMethod registers the infer_http_method tool.
func (ts *ToolServer) registerInferHTTPMethod() {
	tool := mcp.NewTool("infer_http_method",
		mcp.WithDescription("Infer the HTTP method (GET, POST, PATCH, DELETE) from the user's query. "+
			"POST for create/add/submit/post/new/invite, PATCH for update/edit/modify/change, "+
			"DELETE for delete/remove, GET for get/list/retrieve/show."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("User query text"),
		),
	)

	ts.server.AddTool(tool, ts.handleInferHTTPMethod)
}

// methodKeywords is checked in order: a query like "add user to list" must
// resolve to POST, not GET.
var methodKeywords = []struct {
	method   string
	keywords []string
}{
	{"POST", []string{"create", "add", "submit", "post", "new", "invite"}},
	{"PATCH", []string{"update", "edit", "modify", "patch", "change"}},
	{"DELETE", []string{"delete", "remove"}},
	{"GET", []string{"get", "list", "retrieve", "show"}},
}

func (ts *ToolServer) handleInferHTTPMethod(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.ToLower(stringArg(req, "query"))
	if query == "" {
		return mcp.NewToolResultError("Empty query provided."), nil
	}

	for _, entry := range methodKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(query, keyword) {
				return mcp.NewToolResultText(fmt.Sprintf(`{"method": %q}`, entry.method)), nil
			}
		}
	}
	return mcp.NewToolResultError("Could not infer HTTP method from query."), nil
}

// registerCheckQueryType registers the check_query_type tool.
func (ts *ToolServer) registerCheckQueryType() {
	tool := mcp.NewTool("check_query_type",
		mcp.WithDescription("Ask whether the user's query requires READ-ONLY or READ-WRITE access. "+
			"Only the exact values READ-ONLY and READ-WRITE are accepted."),
		mcp.WithString("query_type",
			mcp.Description("Query type (e.g., READ-ONLY)"),
		),
	)

	ts.server.AddTool(tool, ts.handleCheckQueryType)
}

func (ts *ToolServer) handleCheckQueryType(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queryType := stringArg(req, "query_type")
	if queryType == "" {
		return elicit("Is your query READ-ONLY or READ-WRITE? Please type exactly READ-ONLY or READ-WRITE",
			"query_type", "Query type (e.g., READ-ONLY)")
	}
	if queryType != "READ-ONLY" && queryType != "READ-WRITE" {
		return mcp.NewToolResultError("Invalid choice. Please type READ-ONLY or READ-WRITE."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"query_type": %q}`, queryType)), nil
}

// registerGreetUser registers the greet_user tool.
func (ts *ToolServer) registerGreetUser() {
	tool := mcp.NewTool("greet_user",
		mcp.WithDescription("Greet the user and confirm their intent by repeating the query back to them."),
		mcp.WithString("user_query",
			mcp.Required(),
			mcp.Description("Raw user query"),
		),
	)

	ts.server.AddTool(tool, ts.handleGreetUser)
}

func (ts *ToolServer) handleGreetUser(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userQuery := stringArg(req, "user_query")
	return elicit(fmt.Sprintf("Hello! I'm here to help. Just to confirm: is your query about - '%s'?", userQuery),
		"confirm", "Please type 'Yes' to confirm or 'No' to correct it.")
}
