// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the research output artifact. The flat text report
// is written through a temporary file and renamed into place so a failed run
// never leaves a partial artifact.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-researcher/pkg/types"
)

// Write renders the research result as a flat text file at path. Section
// order: query, initial response, found papers, final summary, citations.
func Write(path string, result *types.ResearchResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return writeAtomic(path, []byte(Render(result)))
}

// Render formats the research result as report text.
func Render(result *types.ResearchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Query: %s\n\n", result.Query)

	b.WriteString("Initial Response:\n")
	fmt.Fprintf(&b, "%s\n\n", result.InitialResponse)

	b.WriteString("Found Papers:\n")
	for _, p := range result.Papers {
		fmt.Fprintf(&b, "\nTitle: %s\n", p.Title)
		fmt.Fprintf(&b, "Authors: %s\n", p.AuthorList())
		fmt.Fprintf(&b, "Year: %s\n", p.YearString())
		fmt.Fprintf(&b, "Source: %s\n", p.Source)
	}

	b.WriteString("\nFinal Summary:\n")
	fmt.Fprintf(&b, "%s\n\n", result.Summary)

	b.WriteString("Citations:\n")
	for _, c := range result.Citations {
		fmt.Fprintf(&b, "%s\n", c)
	}

	return b.String()
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming report into place: %w", err)
	}
	return nil
}

// ResultFile is the on-disk YAML representation of a research run, for
// reloading a run without re-querying any API.
type ResultFile struct {
	Result    types.ResearchResult `yaml:"result"`
	Model     string               `yaml:"model,omitempty"`
	Timestamp time.Time            `yaml:"timestamp"`
}

// WriteResultFile saves the research result and run metadata as YAML.
func WriteResultFile(path string, result *types.ResearchResult, model string) error {
	rf := ResultFile{
		Result:    *result,
		Model:     model,
		Timestamp: time.Now(),
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return writeAtomic(path, data)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
