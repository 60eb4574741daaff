// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/deep-researcher/internal/httputil"
	"github.com/pdiddy/deep-researcher/pkg/types"
)

// tavilyAPIBase is the Tavily API root. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com"

// tavilyMaxResults is the per-request result cap imposed by the API.
const tavilyMaxResults = 20

// academicDomains is the allowlist of venues sent to the API and used to
// filter results whose URL does not look like an academic source.
var academicDomains = []string{
	"scholar.google.com",
	"arxiv.org",
	"chemrxiv.org",
	"biorxiv.org",
	"medrxiv.org",
	"semanticscholar.org",
	"sciencedirect.com",
	"springer.com",
	"springeropen.com",
	"link.springer.com",
	"nature.com",
	"science.org",
	"wiley.com",
	"onlinelibrary.wiley.com",
	"frontiersin.org",
	"plos.org",
	"hindawi.com",
	"pubs.acs.org",
	"pubs.rsc.org",
	"pubs.aip.org",
	"ieeexplore.ieee.org",
	"iopscience.iop.org",
	"tandfonline.com",
}

// TavilyBackend queries the Tavily search API for academic papers.
type TavilyBackend struct {
	Client *http.Client
	APIKey string
	Config types.SearchConfig
}

// Name returns the backend identifier.
func (b *TavilyBackend) Name() string { return "tavily" }

// tavilyRequest is the JSON body for POST /search.
type tavilyRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeDomains    []string `json:"include_domains"`
	MaxResults        int      `json:"max_results"`
}

// tavilyResponse is the JSON reply from POST /search.
type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search posts the query to the Tavily API and normalizes the reply into
// paper records, preserving the API's result order. Records missing fields
// get placeholder values rather than being dropped; entries whose URL does
// not match the academic allowlist are filtered out.
func (b *TavilyBackend) Search(ctx context.Context, query string, limit int) ([]types.PaperRecord, error) {
	if b.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if limit <= 0 {
		limit = types.DefaultMaxResults
	}

	depth := b.Config.SearchDepth
	if depth == "" {
		depth = types.DefaultSearchDepth
	}

	reqBody := tavilyRequest{
		Query:             query,
		SearchDepth:       depth,
		IncludeAnswer:     false,
		IncludeRawContent: true,
		IncludeDomains:    academicDomains,
		MaxResults:        min(limit, tavilyMaxResults),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase+"/search", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling Tavily API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}

	var papers []types.PaperRecord
	for _, r := range tr.Results {
		if !isAcademicSource(r.URL) {
			continue
		}
		papers = append(papers, types.PaperRecord{
			Title:     orPlaceholder(r.Title),
			Authors:   extractAuthors(r.Content),
			Year:      extractYear(r.Content),
			Source:    sourceHost(r.URL),
			URL:       r.URL,
			Relevance: r.Score,
		})
		if len(papers) == limit {
			break
		}
	}
	return papers, nil
}

// isAcademicSource reports whether the URL matches the academic allowlist.
// Best-effort string matching, no formal relevance model.
func isAcademicSource(rawURL string) bool {
	for _, domain := range academicDomains {
		if strings.Contains(rawURL, domain) {
			return true
		}
	}
	return false
}

// sourceHost extracts the host from a URL, stripping a "www." prefix.
// Returns the placeholder when the URL is absent or unparseable.
func sourceHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return types.PlaceholderField
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Publication year extraction patterns, tried in order before the generic
// any-year scan.
var pubYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`published in (\d{4})`),
	regexp.MustCompile(`published .*?(\d{4})`),
	regexp.MustCompile(`\((\d{4})\)`),
	regexp.MustCompile(`©\s*(\d{4})`),
	regexp.MustCompile(`copyright\s*(\d{4})`),
}

var anyYearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// extractYear pulls a publication year out of free-text content. Explicit
// publication markers win; otherwise the most recent plausible year is used.
// Returns 0 when nothing plausible is found.
func extractYear(content string) int {
	lower := strings.ToLower(content)
	maxYear := time.Now().Year() + 1

	for _, pattern := range pubYearPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			year, _ := strconv.Atoi(m[1])
			if year >= 1900 && year <= maxYear {
				return year
			}
		}
	}

	best := 0
	for _, m := range anyYearPattern.FindAllString(content, -1) {
		year, _ := strconv.Atoi(m)
		if year >= 1900 && year <= maxYear && year > best {
			best = year
		}
	}
	return best
}

var authorsPattern = regexp.MustCompile(`(?i)(?:by|authors?:)\s+([^.]+)`)

// extractAuthors pulls author names out of free-text content by matching
// "by ..." or "Authors: ..." phrases. When nothing matches, the placeholder
// stands in so the record is kept rather than dropped.
func extractAuthors(content string) []string {
	m := authorsPattern.FindStringSubmatch(content)
	if m == nil {
		return []string{types.PlaceholderField}
	}

	var authors []string
	for _, part := range strings.Split(m[1], ",") {
		name := strings.TrimSpace(part)
		if len(name) > 2 {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		return []string{types.PlaceholderField}
	}
	return authors
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.PlaceholderField
	}
	return s
}
