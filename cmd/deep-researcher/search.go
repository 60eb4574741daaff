// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-researcher/internal/search"
	"github.com/pdiddy/deep-researcher/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search academic literature without running the pipeline",
	Long: `Search queries the configured search API for academic papers matching the
given query and prints the normalized records. No model calls are made.`,
	RunE: runSearch,
}

// newSearchBackend builds the configured search backend. Tavily requires an
// API key; Semantic Scholar works without one under stricter rate limits.
func newSearchBackend(cfg types.SearchConfig) (search.Backend, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Backend {
	case "", "tavily":
		if cfg.APIKey == "" {
			return nil, search.ErrMissingAPIKey
		}
		return &search.TavilyBackend{Client: client, APIKey: cfg.APIKey, Config: cfg}, nil
	case "semantic_scholar":
		return &search.SemanticScholarBackend{Client: client, APIKey: cfg.SemanticAPIKey, Config: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q (supported: tavily, semantic_scholar)", cfg.Backend)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		query = q
	}
	if query == "" {
		return fmt.Errorf("query is empty: provide a search query")
	}

	cfg := loadConfig()
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.Search.MaxResults = maxResults
	}
	if backendName, _ := cmd.Flags().GetString("backend"); backendName != "" {
		cfg.Search.Backend = backendName
	}

	backend, err := newSearchBackend(cfg.Search)
	if err != nil {
		return err
	}
	mgr := search.NewManager(backend)

	papers, err := mgr.Search(cmd.Context(), query, cfg.Search.MaxResults)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return search.FormatJSON(papers, os.Stdout)
	}
	search.FormatTable(papers, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().String("query", "", "search query (overrides positional args)")
	searchCmd.Flags().String("backend", "", "search backend: tavily or semantic_scholar (default: config)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (0 = config default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
