// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the three research stages in strict sequence:
// query decomposition, literature search, and synthesis. Each stage blocks
// until complete; any fatal stage error aborts the run before a report is
// written.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/deep-researcher/internal/prompt"
	"github.com/pdiddy/deep-researcher/internal/search"
	"github.com/pdiddy/deep-researcher/pkg/types"
)

// Run executes one research run for query and assembles the write-once
// result. perQuery caps the papers fetched per derived search query. Stage
// progress lines go to w. An empty paper set is not an error: the synthesis
// stage still runs.
func Run(ctx context.Context, eng *prompt.Engineer, mgr *search.Manager, query string, perQuery int, w io.Writer) (*types.ResearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: provide a research question")
	}

	fmt.Fprintln(w, "Breaking down the research query...")
	components, err := eng.Decompose(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("decomposing query: %w", err)
	}
	fmt.Fprintf(w, "Identified %d topic(s)\n", len(components))

	fmt.Fprintln(w, "Generating initial response...")
	initial, err := eng.InitialResponse(ctx, query, components)
	if err != nil {
		return nil, fmt.Errorf("generating initial response: %w", err)
	}

	queries := eng.SearchQueries(components)
	fmt.Fprintf(w, "Searching literature with %d quer%s...\n", len(queries), plural(len(queries), "y", "ies"))
	papers, err := mgr.SearchAll(ctx, queries, perQuery, w)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Found %d paper(s)\n", len(papers))

	fmt.Fprintln(w, "Synthesizing final summary...")
	summary, citations, err := eng.Integrate(ctx, initial, papers)
	if err != nil {
		return nil, fmt.Errorf("synthesizing summary: %w", err)
	}

	return &types.ResearchResult{
		Query:           query,
		InitialResponse: initial,
		Papers:          papers,
		Summary:         summary,
		Citations:       citations,
	}, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
