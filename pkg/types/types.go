// Package types defines the Waldur API payload types shared by the client and tools.
package types

// WhoAmI is the response of the OpenPortal whoami endpoint.
type WhoAmI struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	IsStaff  bool   `json:"is_staff,omitempty"`
}

// TokenExchange is the response of the OpenPortal get_API_token endpoint,
// mapping an OIDC access token to a Waldur API token.
type TokenExchange struct {
	Token      string `json:"token"`
	UserEmail  string `json:"user_email,omitempty"`
	UserAccess string `json:"user_access,omitempty"` // "staff" or "read-only"
}

// ListResult wraps a paginated GET so the agent sees the result size up front.
type ListResult struct {
	TotalCount int              `json:"total_count"`
	Method     string           `json:"method"`
	Data       []map[string]any `json:"data"`
}

// ParsedIntent is the structured argument the agent passes to the verb tools
// after parsing a user request.
type ParsedIntent struct {
	Token      string         `json:"WALDUR_API_TOKEN"`
	Email      string         `json:"email,omitempty"`
	UserAccess string         `json:"user_access,omitempty"` // "staff" or "not a staff"
	Method     string         `json:"method"`
	HTTPMethod string         `json:"http_method,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Elicitation is the payload returned to the agent when a tool needs more
// input from the user before it can proceed. The wire shape matches the MCP
// elicitation/create convention.
type Elicitation struct {
	Type   string            `json:"type"`
	Params ElicitationParams `json:"params"`
}

// ElicitationParams carries the message shown to the user and the schema of
// the requested answer.
type ElicitationParams struct {
	Message         string       `json:"message"`
	RequestedSchema ObjectSchema `json:"requestedSchema"`
}

// ObjectSchema is a minimal JSON schema for a single-object answer.
type ObjectSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// PropertySchema describes one requested field.
type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// NewElicitation builds an elicitation asking the user for a single required
// string field.
func NewElicitation(message, field, description string) Elicitation {
	return Elicitation{
		Type: "elicitation/create",
		Params: ElicitationParams{
			Message: message,
			RequestedSchema: ObjectSchema{
				Type: "object",
				Properties: map[string]PropertySchema{
					field: {Type: "string", Description: description},
				},
				Required: []string{field},
			},
		},
	}
}
