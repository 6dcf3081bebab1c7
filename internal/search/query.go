package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Search limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search query.
type Params struct {
	Query string    // User's search text; empty matches everything
	Types []DocType // Document types to include (empty = all)

	// Filters
	GenreSlugs []string // Books with any of these genres
	MinYear    int
	MaxYear    int

	Limit  int
	Offset int

	// SortBy is "relevance" (default), "name", "year" or "recent".
	SortBy    string
	SortOrder string // "asc" or "desc"

	IncludeFacets bool
	Highlight     bool
}

// normalize clamps pagination to sane bounds.
func (p Params) normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	p.Limit = min(p.Limit, MaxLimit)
	p.Offset = max(p.Offset, 0)
	p.Query = strings.TrimSpace(p.Query)
	return p
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitzero"`
}

// Hit is a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Author     string            `json:"author,omitempty"`
	Year       int               `json:"year,omitempty"`
	GenreSlugs []string          `json:"genre_slugs,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts.
type Facets struct {
	Types  []FacetCount `json:"types,omitempty"`
	Genres []FacetCount `json:"genres,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	params = params.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("type", bleve.NewFacetRequest("type", 10))
		req.AddFacet("genre_slugs", bleve.NewFacetRequest("genre_slugs", 20))
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("author")
	}
	req.Fields = []string{"type", "name", "author", "year", "genre_slugs"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if t, ok := h.Fields["type"].(string); ok {
			hit.Type = DocType(t)
		}
		if n, ok := h.Fields["name"].(string); ok {
			hit.Name = n
		}
		if a, ok := h.Fields["author"].(string); ok {
			hit.Author = a
		}
		if y, ok := h.Fields["year"].(float64); ok {
			hit.Year = int(y)
		}
		hit.GenreSlugs = stringsField(h.Fields["genre_slugs"])

		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}

	return result, nil
}

// stringsField reads a stored field that holds one or many strings.
func stringsField(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// buildQuery combines the text query with the filters using AND.
//
// Text matches titles and author names most strongly, then descriptions
// and biographies. A fuzzy clause tolerates one typo in the name and a
// prefix clause serves autocomplete.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		match := func(field string, boost float64) query.Query {
			q := bleve.NewMatchQuery(params.Query)
			q.SetField(field)
			q.SetBoost(boost)
			return q
		}

		text := []query.Query{
			match("name", 3.0),
			match("author", 1.5),
			match("description", 0.5),
			match("biography", 0.5),
		}

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if len(params.Query) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if len(params.GenreSlugs) > 0 {
		genreQueries := make([]query.Query, len(params.GenreSlugs))
		for i, slug := range params.GenreSlugs {
			gq := bleve.NewTermQuery(slug)
			gq.SetField("genre_slugs")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 9999
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("year")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order. Relevance is the default.
func addSorting(req *bleve.SearchRequest, params Params) {
	desc := params.SortOrder == "desc"
	field := ""
	switch params.SortBy {
	case "name", "title":
		field = "name"
	case "year":
		field = "year"
	case "recent":
		field = "created_at"
		desc = params.SortOrder != "asc"
	default:
		req.SortBy([]string{"-_score"})
		return
	}
	if desc {
		field = "-" + field
	}
	req.SortBy([]string{field, "_id"})
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	var facets Facets

	if f, ok := result.Facets["type"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if f, ok := result.Facets["genre_slugs"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return facets
}
