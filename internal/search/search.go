// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries an external search API for academic papers and
// normalizes the results into paper records.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdiddy/deep-researcher/pkg/types"
)

// ErrMissingAPIKey is returned before any network call when no Tavily API
// key is configured.
var ErrMissingAPIKey = errors.New("TAVILY_API_KEY is not set: add it to .env, the environment, or .secrets/tavily-api-key")

// RequestError reports a non-2xx reply from the search API. Fatal for the
// current run; a zero-result reply is not an error.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("search API returned HTTP %d: %s", e.Status, e.Message)
}

// Backend searches a single external API. Implementations normalize raw
// results into PaperRecords, preserving the API's result order.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.PaperRecord, error)
}

// searchRecord is one entry in the manager's search history.
type searchRecord struct {
	Query   string
	Results int
	Backend string
}

// Stats summarizes the searches performed by one Manager.
type Stats struct {
	TotalSearches     int
	TotalUniquePapers int
}

// Manager runs literature searches against a backend. Across the queries of
// one run it skips papers already returned by an earlier query; within a
// single API response nothing is deduplicated.
type Manager struct {
	backend Backend
	seen    map[string]bool
	history []searchRecord
}

// NewManager returns a Manager for the given backend.
func NewManager(backend Backend) *Manager {
	return &Manager{
		backend: backend,
		seen:    make(map[string]bool),
	}
}

// Search runs one query and returns the papers in API order. An empty
// result set is not an error.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]types.PaperRecord, error) {
	papers, err := m.backend.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	fresh := papers[:0:0]
	for _, p := range papers {
		key := paperKey(p)
		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		fresh = append(fresh, p)
	}

	m.history = append(m.history, searchRecord{
		Query:   query,
		Results: len(fresh),
		Backend: m.backend.Name(),
	})
	return fresh, nil
}

// SearchAll runs the queries in sequence and concatenates the results,
// writing one progress line per query to w. Any failed query aborts the run.
func (m *Manager) SearchAll(ctx context.Context, queries []string, perQuery int, w io.Writer) ([]types.PaperRecord, error) {
	var all []types.PaperRecord
	for _, q := range queries {
		papers, err := m.Search(ctx, q, perQuery)
		if err != nil {
			return nil, fmt.Errorf("searching %q: %w", q, err)
		}
		fmt.Fprintf(w, "  %-50s %d paper(s)\n", truncate(q, 50), len(papers))
		all = append(all, papers...)
	}
	return all, nil
}

// Stats returns totals for the searches performed so far.
func (m *Manager) Stats() Stats {
	return Stats{
		TotalSearches:     len(m.history),
		TotalUniquePapers: len(m.seen),
	}
}

// paperKey builds a stable key from the normalized title and authors so the
// same paper returned by two queries is reported once.
func paperKey(p types.PaperRecord) string {
	h := sha256.New()
	h.Write([]byte(normalizeTitle(p.Title)))
	for _, a := range p.Authors {
		h.Write([]byte(strings.ToLower(a)))
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers []types.PaperRecord, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-7s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-7s  %-6.2f  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), p.YearString(), p.Relevance, p.Source)
	}

	fmt.Fprintf(w, "\n%d paper(s)\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.PaperRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return types.PlaceholderField
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes. Counting runes keeps multi-byte titles
// valid UTF-8.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
