// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/deep-researcher/internal/httputil"
	"github.com/pdiddy/deep-researcher/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared as
// a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,url,venue"

// semanticMaxResults is the per-request result cap imposed by the API.
const semanticMaxResults = 100

// SemanticScholarBackend queries the Semantic Scholar API. An API key is
// optional; without one the API applies stricter rate limits, which the
// shared retry helper absorbs.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
	Config types.SearchConfig
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// semanticResponse is the JSON reply from GET /paper/search.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title   string           `json:"title"`
	Year    int              `json:"year"`
	URL     string           `json:"url"`
	Venue   string           `json:"venue"`
	Authors []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

// Search queries the Semantic Scholar API and normalizes the reply into
// paper records, preserving the API's result order. The API reports no
// relevance score, so records get a position-based score: the first result
// scores 1.0, the last 0.1.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, limit int) ([]types.PaperRecord, error) {
	if limit <= 0 {
		limit = types.DefaultMaxResults
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(min(limit, semanticMaxResults))},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling Semantic Scholar API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	total := len(sr.Data)
	var papers []types.PaperRecord
	for i, p := range sr.Data {
		papers = append(papers, types.PaperRecord{
			Title:     orPlaceholder(p.Title),
			Authors:   semanticAuthors(p.Authors),
			Year:      p.Year,
			Source:    semanticSource(p),
			URL:       p.URL,
			Relevance: positionScore(i, total),
		})
		if len(papers) == limit {
			break
		}
	}
	return papers, nil
}

// semanticAuthors maps API author entries to names, substituting the
// placeholder when the paper carries none.
func semanticAuthors(authors []semanticAuthor) []string {
	var names []string
	for _, a := range authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return []string{types.PlaceholderField}
	}
	return names
}

// semanticSource prefers the publication venue, falling back to the host of
// the paper URL.
func semanticSource(p semanticPaper) string {
	if p.Venue != "" {
		return p.Venue
	}
	return sourceHost(p.URL)
}

// positionScore assigns a rank-based relevance score from 1.0 down to 0.1.
func positionScore(i, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(total-1)*0.9
}
