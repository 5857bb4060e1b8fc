// Package prompts registers the MCP prompts that guide the agent through
// tool ordering.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	mcpserver "github.com/openportal-dev/waldur-mcp/internal/server"
)

// Register adds all prompts to the MCP server.
func Register(s *mcpserver.Server) {
	s.AddPrompt(taskPlannerPrompt(), handleTaskPlanner)
}

func taskPlannerPrompt() mcp.Prompt {
	return mcp.NewPrompt("task_planner",
		mcp.WithPromptDescription("Plan which Waldur tools to use, in order, for a user request."),
		mcp.WithArgument("user_query",
			mcp.ArgumentDescription("The user request to plan for"),
			mcp.RequiredArgument(),
		),
	)
}

func handleTaskPlanner(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	userQuery := req.Params.Arguments["user_query"]

	text := fmt.Sprintf(`You are a smart Tool Planner in the MCP system. Your job is to read a user query and return a list of MCP tools (from the available ones) that should be used to complete the user request.

Each tool should be listed with its name and a short reason why it's being used. USE ONLY THE TOOLS PROVIDED. Also use PAGINATION for any query where relevant, as Waldur supports pagination.

Available Tools (alphabetical order):
- check_query_type: Ask the user if their request is READ-ONLY or READ-WRITE and validate input.
- delete_from_waldur: Delete parsed data from Waldur.
- get_customer_spend_info: Get customer spending information.
- get_from_waldur: General GET request to Waldur, after parsing the endpoint and parameters.
- get_project_short_name: Get the short name of a project.
- get_project_users: Get the list of users in a project.
- get_user_info: Get user information from Waldur.
- get_uuid: Get UUID required for any queries related to users, projects, customers, customer-credits, project-credits, roles, slurm allocations, slurm-jobs, or user-invitations.
- get_waldur_api_token: Performs the OIDC device flow and exchanges the OIDC token for a Waldur token.
- greet_user: Greets the user and confirms their intent.
- infer_http_method: Infer the HTTP method (GET/POST/PATCH/DELETE) needed from the user's query.
- patch_to_waldur: Patch parsed data to Waldur.
- post_to_waldur: Post data to Waldur. Must be used only after parsing the data properly.
- retrieve_api_endpoint: Retrieves the most relevant API endpoint to make the HTTP request.

## Example:

Input: Add user Emma Smith to my Project "Bristol Science Project".
Output:
The very first MCP tool to use is always greet_user to greet the user, then list the next relevant MCP tools:
1. greet_user: Greets the user and confirms intent from their request.
2. check_query_type: confirm READ-ONLY vs READ-WRITE.
3. get_waldur_api_token: Authorise the user and get the Waldur API token to further access info from Waldur.
Step 4 depends on the query:
  - If checking existing entities, use get_from_waldur.
  - If making a new or less direct request, use retrieve_api_endpoint.
4. Either:
    - get_from_waldur: Check if the user and project exist in the system.
    - retrieve_api_endpoint: Find the relevant API endpoint to make the request.
5. get_uuid: Retrieve UUIDs for both the user and the project.
6. infer_http_method: Infer which REST method to use.
7. post_to_waldur: Use the UUIDs to add the user to the project.
IMPORTANT: If you do not know the exact link to make the request, always make sure to use retrieve_api_endpoint to find the right API endpoint.

input: %s
output: Return a list of tools with reasons, numbered and in order. Do not invent new tools. Then PROCESS the user query.`, userQuery)

	return mcp.NewGetPromptResult(
		"Task Planner",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
