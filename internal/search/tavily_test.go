// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/deep-researcher/pkg/types"
)

// withTavilyServer points the backend at an httptest server for the duration
// of one test.
func withTavilyServer(t *testing.T, handler http.HandlerFunc) *TavilyBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	orig := tavilyAPIBase
	tavilyAPIBase = ts.URL
	t.Cleanup(func() { tavilyAPIBase = orig })

	return &TavilyBackend{Client: ts.Client(), APIKey: "test-key"}
}

func tavilyReply(results ...tavilyResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tavilyResponse{Results: results})
	}
}

func TestTavilySearchNormalizesResults(t *testing.T) {
	backend := withTavilyServer(t, tavilyReply(
		tavilyResult{
			Title:   "Paper A",
			URL:     "https://arxiv.org/abs/2301.00001",
			Content: "By Alice Anders, Bob Brown. This study was published in 2023.",
			Score:   0.91,
		},
		tavilyResult{
			Title:   "Paper B",
			URL:     "https://www.nature.com/articles/xyz",
			Content: "A second study with no attribution details.",
			Score:   0.84,
		},
	))

	papers, err := backend.Search(context.Background(), "cancer genomics", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}

	// API order is preserved, no re-sorting by score.
	if papers[0].Title != "Paper A" || papers[1].Title != "Paper B" {
		t.Errorf("order = [%s, %s], want [Paper A, Paper B]", papers[0].Title, papers[1].Title)
	}

	a := papers[0]
	if strings.Join(a.Authors, ";") != "Alice Anders;Bob Brown" {
		t.Errorf("paper A authors = %v", a.Authors)
	}
	if a.Year != 2023 {
		t.Errorf("paper A year = %d, want 2023", a.Year)
	}
	if a.Source != "arxiv.org" {
		t.Errorf("paper A source = %q", a.Source)
	}
	if a.Relevance != 0.91 {
		t.Errorf("paper A relevance = %v", a.Relevance)
	}

	b := papers[1]
	if strings.Join(b.Authors, ";") != types.PlaceholderField {
		t.Errorf("paper B authors = %v, want placeholder", b.Authors)
	}
	if b.Year != 0 {
		t.Errorf("paper B year = %d, want 0", b.Year)
	}
	if b.Source != "nature.com" {
		t.Errorf("paper B source = %q, want www. stripped", b.Source)
	}
}

func TestTavilySearchRequestBody(t *testing.T) {
	var gotAuth string
	var gotBody tavilyRequest
	backend := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(tavilyResponse{})
	})

	if _, err := backend.Search(context.Background(), "quantum error correction", 50); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Query != "quantum error correction" {
		t.Errorf("query = %q", gotBody.Query)
	}
	if gotBody.SearchDepth != types.DefaultSearchDepth {
		t.Errorf("search_depth = %q, want %q", gotBody.SearchDepth, types.DefaultSearchDepth)
	}
	if gotBody.IncludeAnswer {
		t.Error("include_answer should be false")
	}
	if !gotBody.IncludeRawContent {
		t.Error("include_raw_content should be true")
	}
	if gotBody.MaxResults != tavilyMaxResults {
		t.Errorf("max_results = %d, want the API cap %d", gotBody.MaxResults, tavilyMaxResults)
	}
	if len(gotBody.IncludeDomains) == 0 {
		t.Error("include_domains should carry the academic allowlist")
	}
}

func TestTavilySearchMissingAPIKey(t *testing.T) {
	calls := 0
	backend := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	backend.APIKey = ""

	_, err := backend.Search(context.Background(), "anything", 5)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
	if calls != 0 {
		t.Errorf("server was hit %d time(s) despite missing key", calls)
	}
}

func TestTavilySearchHTTPError(t *testing.T) {
	backend := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := backend.Search(context.Background(), "anything", 5)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", reqErr.Status)
	}
}

func TestTavilySearchZeroResults(t *testing.T) {
	backend := withTavilyServer(t, tavilyReply())

	papers, err := backend.Search(context.Background(), "nothing matches this", 5)
	if err != nil {
		t.Fatalf("zero results must not be an error, got %v", err)
	}
	if len(papers) != 0 {
		t.Errorf("got %d papers, want 0", len(papers))
	}
}

func TestTavilySearchFiltersNonAcademicSources(t *testing.T) {
	backend := withTavilyServer(t, tavilyReply(
		tavilyResult{Title: "Blog post", URL: "https://example.com/post", Score: 0.99},
		tavilyResult{Title: "Real paper", URL: "https://ieeexplore.ieee.org/document/1", Score: 0.5},
	))

	papers, err := backend.Search(context.Background(), "signal processing", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 || papers[0].Title != "Real paper" {
		t.Errorf("papers = %+v, want only the allowlisted source", papers)
	}
}

func TestTavilySearchCapsAtLimit(t *testing.T) {
	var results []tavilyResult
	for i := 0; i < 5; i++ {
		results = append(results, tavilyResult{
			Title: "Paper " + string(rune('A'+i)),
			URL:   "https://arxiv.org/abs/2301.0000" + string(rune('1'+i)),
		})
	}
	backend := withTavilyServer(t, tavilyReply(results...))

	papers, err := backend.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 3 {
		t.Errorf("got %d papers, want 3", len(papers))
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"This paper was published in 2021 by the group.", 2021},
		{"Proc. Natl. Acad. Sci. (2019) 116:1-9", 2019},
		{"© 2020 Elsevier B.V.", 2020},
		{"Mentions 2015 and later 2022 without markers.", 2022},
		{"An 1850 survey of the field.", 0},
		{"No year anywhere.", 0},
	}
	for _, tt := range tests {
		if got := extractYear(tt.content); got != tt.want {
			t.Errorf("extractYear(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestExtractAuthors(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"by John Smith, Jane Doe. Published in Nature.", []string{"John Smith", "Jane Doe"}},
		{"Authors: Maria Garcia. A detailed study.", []string{"Maria Garcia"}},
		{"No attribution in this snippet.", []string{types.PlaceholderField}},
	}
	for _, tt := range tests {
		got := extractAuthors(tt.content)
		if strings.Join(got, ";") != strings.Join(tt.want, ";") {
			t.Errorf("extractAuthors(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestSourceHost(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.nature.com/articles/1", "nature.com"},
		{"https://arxiv.org/abs/1", "arxiv.org"},
		{"", types.PlaceholderField},
	}
	for _, tt := range tests {
		if got := sourceHost(tt.url); got != tt.want {
			t.Errorf("sourceHost(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
