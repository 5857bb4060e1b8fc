package endpoints

import (
	"sort"
	"strings"
)

// Result is one search hit. Higher scores are better matches.
type Result struct {
	Path        string  `json:"path"`
	Method      string  `json:"method"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Search scores every route against the query by weighted term overlap and
// returns the top k. Singular and plural query terms match the same route
// ("project" hits "projects").
func (c *Catalog) Search(query string, k int) []Result {
	terms := tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return nil
	}

	results := make([]Result, 0, len(c.routes))
	for i := range c.routes {
		route := &c.routes[i]
		score := 0.0
		for _, term := range terms {
			score += route.matchTerm(term)
		}
		if score > 0 {
			results = append(results, Result{
				Path:        route.Path,
				Method:      route.Method,
				Description: route.Description,
				Score:       score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Filter keeps results matching the HTTP method whose path mentions the
// target entity, capped at max. Mirrors the agent-facing contract: the
// search casts wide, the filter pins down verb and entity.
func Filter(results []Result, method, targetEntity string, max int) []Result {
	method = strings.ToUpper(strings.TrimSpace(method))
	targetEntity = strings.ToLower(strings.TrimSpace(targetEntity))

	var filtered []Result
	for _, r := range results {
		if !strings.EqualFold(r.Method, method) {
			continue
		}
		if targetEntity != "" && !strings.Contains(strings.ToLower(r.Path), "/"+targetEntity) {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if max > 0 && len(filtered) > max {
		filtered = filtered[:max]
	}
	return filtered
}

// matchTerm returns the weight of the term in this route, trying the exact
// term and its trivial singular/plural variants.
func (r *Route) matchTerm(term string) float64 {
	if w, ok := r.termWeights[term]; ok {
		return w
	}
	if w, ok := r.termWeights[term+"s"]; ok {
		return w
	}
	if trimmed, found := strings.CutSuffix(term, "s"); found {
		if w, ok := r.termWeights[trimmed]; ok {
			return w
		}
	}
	return 0
}
