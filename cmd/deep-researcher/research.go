// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-researcher/internal/ollama"
	"github.com/pdiddy/deep-researcher/internal/pipeline"
	"github.com/pdiddy/deep-researcher/internal/prompt"
	"github.com/pdiddy/deep-researcher/internal/report"
	"github.com/pdiddy/deep-researcher/internal/search"
)

// defaultQuery is used when the interactive prompt receives an empty line.
const defaultQuery = "latest developments in single-cell RNA sequencing for cancer research"

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run the full research pipeline for a query",
	Long: `Research runs the three-stage pipeline: decompose the query with the local
model, search academic literature for each derived topic, and synthesize a
cited summary. The report is written to a flat text file.

With no query argument or --query flag, the command prompts interactively
and falls back to a built-in example query.`,
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Ollama.Model = model
	}
	if maxPapers, _ := cmd.Flags().GetInt("max-papers"); maxPapers > 0 {
		cfg.Search.MaxResults = maxPapers
	}
	if backendName, _ := cmd.Flags().GetString("backend"); backendName != "" {
		cfg.Search.Backend = backendName
	}

	backend, err := newSearchBackend(cfg.Search)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		query = q
	}
	if query == "" {
		query = promptForQuery(os.Stdin, os.Stderr)
	}

	ctx := cmd.Context()

	client, err := ollama.New(cfg.Ollama, nil)
	if err != nil {
		return err
	}
	if err := client.EnsureModel(ctx, os.Stderr); err != nil {
		if errors.Is(err, ollama.ErrUnreachable) {
			return fmt.Errorf("%w\nstart the server with: ollama serve", err)
		}
		return err
	}

	mgr := search.NewManager(backend)
	eng := prompt.NewEngineer(client)

	result, err := pipeline.Run(ctx, eng, mgr, query, cfg.Search.MaxResults, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = filepath.Join(cfg.Report.OutputDir, "research_output.txt")
	}
	if err := report.Write(outPath, result); err != nil {
		return err
	}
	fmt.Printf("Results saved to %s\n", outPath)

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := report.WriteResultFile(savePath, result, cfg.Ollama.Model); err != nil {
			return err
		}
		fmt.Printf("Result file saved to %s\n", savePath)
	}

	stats := mgr.Stats()
	fmt.Fprintf(os.Stderr, "%d search(es) performed, %d unique paper(s) found\n",
		stats.TotalSearches, stats.TotalUniquePapers)
	return nil
}

// promptForQuery reads one line from r, falling back to the built-in
// example query on an empty line or EOF.
func promptForQuery(r io.Reader, w io.Writer) string {
	fmt.Fprintf(w, "Enter your research query [%s]: ", defaultQuery)
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			return q
		}
	}
	return defaultQuery
}

func init() {
	researchCmd.Flags().String("query", "", "research question (overrides positional args)")
	researchCmd.Flags().String("backend", "", "search backend: tavily or semantic_scholar (default: config)")
	researchCmd.Flags().Int("max-papers", 0, "maximum papers per derived search query (0 = config default)")
	researchCmd.Flags().String("output", "", "report path (default: <output_dir>/research_output.txt)")
	researchCmd.Flags().String("save", "", "also save the full result as YAML to this path")
	researchCmd.Flags().String("model", "", "override the configured Ollama model")
	researchCmd.Flags().Bool("json", false, "also print the result as JSON on stdout")

	rootCmd.AddCommand(researchCmd)
}
