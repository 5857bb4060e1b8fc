package waldur

// endpointByEntity maps the entity names the agent uses to the API endpoints
// behind them.
var endpointByEntity = map[string]string{
	"projects":                         "projects",
	"users":                            "users",
	"customers":                        "customers",
	"customer-credits":                 "customer-credits",
	"project-credits":                  "project-credits",
	"roles":                            "roles",
	"slurm-allocations":                "slurm-allocations",
	"slurm-jobs":                       "slurm-jobs",
	"user-invitations":                 "user-invitations",
	"invoice":                          "invoices",
	"marketplace-service-providers":    "marketplace-service-providers",
	"marketplace-offerings":            "marketplace-offerings",
	"marketplace-orders":               "marketplace-orders",
	"marketplace-resource":             "marketplace-resources",
	"marketplace-plans":                "marketplace-plans",
	"marketplace-provider-offerings":   "marketplace-provider-offerings",
	"marketplace-offering-permissions": "marketplace-offering-permissions",
}

// EndpointForEntity resolves an entity name to its API endpoint.
func EndpointForEntity(entity string) (string, bool) {
	endpoint, ok := endpointByEntity[entity]
	return endpoint, ok
}

// essentialFields lists the fields requested by default for well-known
// endpoints, keeping responses small enough for an LLM context window.
var essentialFields = map[string][]string{
	"customers":             {"uuid", "name", "abbreviation", "projects_count", "users_count", "email"},
	"projects":              {"uuid", "name", "short_name", "customer_name", "created", "start_date", "end_date"},
	"users":                 {"uuid", "username", "email", "full_name", "is_staff"},
	"user-invitations":      {"email", "created", "state"},
	"marketplace-resources": {"uuid", "name", "state", "project_name", "customer_name", "offering_name", "plan_name"},
	"marketplace-orders":    {"uuid", "state", "type", "resource_name", "offering_name", "project_name", "created"},
	"roles":                 {"uuid", "name", "description", "is_active"},
}

// EssentialFields returns the default field list for an endpoint, if one is
// defined.
func EssentialFields(endpoint string) ([]string, bool) {
	fields, ok := essentialFields[endpoint]
	return fields, ok
}
