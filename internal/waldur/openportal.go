package waldur

import (
	"context"
	"net/url"

	"github.com/openportal-dev/waldur-mcp/pkg/types"
)

// OpenPortal is the Waldur extension used by the HPC portal. Its endpoints
// cover identity, access level, and reporting lookups the core API does not
// expose directly.

// WhoAmI resolves the user behind a token, including the staff flag that
// gates every mutating tool.
func (c *Client) WhoAmI(ctx context.Context, token, email string) (*types.WhoAmI, error) {
	params := url.Values{}
	if email != "" {
		params.Set("email", email)
	}

	var who types.WhoAmI
	if err := c.getJSON(ctx, "openportal/whoami/", NormalizeToken(token), params, &who); err != nil {
		return nil, err
	}
	return &who, nil
}

// ExchangeToken swaps an OIDC access token for a Waldur API token. This is
// the only call authenticated with a Bearer header instead of a Waldur token.
func (c *Client) ExchangeToken(ctx context.Context, oidcAccessToken string) (*types.TokenExchange, error) {
	var exchange types.TokenExchange
	if err := c.getJSON(ctx, "openportal/get_API_token/", "Bearer "+oidcAccessToken, nil, &exchange); err != nil {
		return nil, err
	}
	return &exchange, nil
}

// ProjectShortName looks up a project's short name by project and customer
// name.
func (c *Client) ProjectShortName(ctx context.Context, token, projectName, customerName string) (map[string]any, error) {
	params := url.Values{}
	params.Set("project_name", projectName)
	params.Set("customer_name", customerName)

	var out map[string]any
	if err := c.getJSON(ctx, "openportal/project_short_name/", NormalizeToken(token), params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CustomerSpendInfo reports a customer's spending summary.
func (c *Client) CustomerSpendInfo(ctx context.Context, token, customer string) (map[string]any, error) {
	params := url.Values{}
	params.Set("customer", customer)

	var out map[string]any
	if err := c.getJSON(ctx, "openportal/customer_spend_info/", NormalizeToken(token), params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectUsers lists the members of a project by project name.
func (c *Client) ProjectUsers(ctx context.Context, token, projectName string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("project_name", projectName)

	var out []map[string]any
	if err := c.getJSON(ctx, "openportal/list_project_users/", NormalizeToken(token), params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
