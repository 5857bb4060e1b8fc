// Package endpoints indexes the Waldur OpenAPI schema so the agent can look
// up which route serves an intended action.
package endpoints

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// intentKeywords enriches each route with the verbs users reach for, so a
// query like "add user to project" lands on the POST route.
var intentKeywords = map[string]string{
	"POST":   "create add new insert register assign link provision",
	"PUT":    "update modify replace edit overwrite",
	"PATCH":  "update modify partial change adjust",
	"DELETE": "remove delete destroy unlink detach",
	"GET":    "retrieve get fetch list read show search",
}

// Parameter is one operation parameter worth showing to the agent.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Route is one path+method of the schema, prepared for lexical search.
type Route struct {
	Path        string      `json:"path"`
	Method      string      `json:"method"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`

	// entity is the second path segment, e.g. "projects" in
	// /api/projects/{uuid}/.
	entity string

	// termWeights maps each searchable term to its weight. Path and
	// summary terms count more than description text.
	termWeights map[string]float64
}

// Catalog holds the indexed routes of one schema.
type Catalog struct {
	routes []Route
}

// NewCatalog parses an OpenAPI 3.x schema (YAML or JSON) and indexes every
// get/post/put/patch/delete operation.
func NewCatalog(schema []byte) (*Catalog, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(schema)
	if err != nil {
		return nil, fmt.Errorf("parse openapi schema: %w", err)
	}
	if doc.Paths == nil {
		return &Catalog{}, nil
	}

	var routes []Route
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			if _, ok := intentKeywords[method]; !ok {
				continue
			}
			routes = append(routes, newRoute(path, method, op))
		}
	}
	return &Catalog{routes: routes}, nil
}

// Len returns the number of indexed routes.
func (c *Catalog) Len() int {
	return len(c.routes)
}

func newRoute(path, method string, op *openapi3.Operation) Route {
	r := Route{
		Path:   path,
		Method: method,
	}
	if op != nil {
		r.Summary = op.Summary
		r.Description = op.Description
		for _, ref := range op.Parameters {
			if ref == nil || ref.Value == nil {
				continue
			}
			r.Parameters = append(r.Parameters, Parameter{
				Name:        ref.Value.Name,
				Description: ref.Value.Description,
			})
		}
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 1 {
		r.entity = segments[1]
	}

	r.termWeights = map[string]float64{}
	addTerms := func(text string, weight float64) {
		for _, term := range tokenize(text) {
			if r.termWeights[term] < weight {
				r.termWeights[term] = weight
			}
		}
	}
	addTerms(path, 3)
	addTerms(r.entity, 3)
	addTerms(r.Summary, 2)
	addTerms(intentKeywords[method], 2)
	addTerms(r.Description, 1)
	for _, p := range r.Parameters {
		addTerms(p.Name, 1)
		addTerms(p.Description, 1)
	}
	return r
}

// tokenize lowercases and splits on everything that is not a letter or
// digit, so "marketplace-resources/{uuid}" yields marketplace, resources,
// uuid.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}
