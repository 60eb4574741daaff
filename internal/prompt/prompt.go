// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt formats research queries into model instructions and parses
// the model's free-text replies. Parsing is best-effort: the model output has
// no declared grammar, so every parse has a defined fallback.
package prompt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/deep-researcher/pkg/types"
)

// Generator abstracts text generation so tests can supply a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Component is one topic of the decomposed research query.
type Component struct {
	Topic     string
	Subtopics []string
}

// Engineer turns a research query into model instructions and model replies
// into structured components, search queries, and a cited summary.
type Engineer struct {
	gen Generator
}

// NewEngineer returns an Engineer backed by the given generator.
func NewEngineer(gen Generator) *Engineer {
	return &Engineer{gen: gen}
}

// decomposeTmpl asks the model for a parseable topic breakdown.
var decomposeTmpl = template.Must(template.New("decompose").Parse(`Break down this research query into main topics and subtopics:
Query: {{.Query}}

Format:
- Main topic 1
  * Subtopic 1.1
  * Subtopic 1.2
- Main topic 2
  * Subtopic 2.1

Only output the structured list, nothing else.
`))

// initialTmpl asks for a comprehensive first-pass answer before any
// literature is retrieved.
var initialTmpl = template.Must(template.New("initial").Parse(`Generate a comprehensive initial response to this research query:

Query: {{.Query}}

The query has been broken down into these components:
{{.Topics}}

Provide a detailed response that:
1. Addresses each component of the query
2. Highlights key concepts and methodologies
3. Identifies potential areas where literature support would be valuable
4. Maintains scientific accuracy and academic tone

Response:
`))

// integrateTmpl asks the model to merge the initial response with the
// retrieved literature and emit a Citations section.
var integrateTmpl = template.Must(template.New("integrate").Parse(`Integrate this initial response with the findings from academic literature:

Initial Response:
{{.Initial}}

Relevant Literature:
{{.Papers}}

Create a comprehensive summary that:
1. Combines the initial insights with supporting evidence from the papers
2. Highlights where the literature confirms or extends the initial response
3. Adds specific citations to support key points
4. Maintains a clear and academic tone

Provide the response in two parts:
1. Final Summary
2. Citations (in IEEE format)

Response:
`))

// Decompose asks the model to break the query into topics and parses the
// reply line by line. When the reply contains no recognizable topic lines,
// the query itself becomes the single component.
func (e *Engineer) Decompose(ctx context.Context, query string) ([]Component, error) {
	p, err := render(decomposeTmpl, map[string]string{"Query": query})
	if err != nil {
		return nil, err
	}

	reply, err := e.gen.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	components := ParseComponents(reply)
	if len(components) == 0 {
		components = []Component{{Topic: query}}
	}
	return components, nil
}

// ParseComponents extracts "- topic" and "* subtopic" lines from a model
// reply. Lines that match neither marker are ignored.
func ParseComponents(reply string) []Component {
	var components []Component
	var current *Component

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "):
			if current != nil {
				components = append(components, *current)
			}
			current = &Component{Topic: strings.TrimSpace(line[2:])}
		case strings.HasPrefix(line, "* "):
			if current != nil {
				current.Subtopics = append(current.Subtopics, strings.TrimSpace(line[2:]))
			}
		}
	}
	if current != nil {
		components = append(components, *current)
	}
	return components
}

// InitialResponse generates the first-pass answer from the model's own
// knowledge, guided by the decomposed components.
func (e *Engineer) InitialResponse(ctx context.Context, query string, components []Component) (string, error) {
	p, err := render(initialTmpl, map[string]string{
		"Query":  query,
		"Topics": formatComponents(components),
	})
	if err != nil {
		return "", err
	}
	return e.gen.Generate(ctx, p)
}

// SearchQueries derives literature search strings: each topic on its own,
// then each topic combined with each of its subtopics.
func (e *Engineer) SearchQueries(components []Component) []string {
	var queries []string
	for _, c := range components {
		queries = append(queries, c.Topic)
		for _, sub := range c.Subtopics {
			queries = append(queries, c.Topic+" "+sub)
		}
	}
	return queries
}

// Integrate merges the initial response with the retrieved papers into a
// final summary and a citations list. The model is asked for a "Citations:"
// section; when the reply lacks one, citations are formatted from the paper
// records directly so the report always references the found papers.
func (e *Engineer) Integrate(ctx context.Context, initial string, papers []types.PaperRecord) (summary string, citations []string, err error) {
	p, err := render(integrateTmpl, map[string]string{
		"Initial": initial,
		"Papers":  FormatPapers(papers),
	})
	if err != nil {
		return "", nil, err
	}

	reply, err := e.gen.Generate(ctx, p)
	if err != nil {
		return "", nil, err
	}

	summary, citations = splitCitations(reply)
	if len(citations) == 0 {
		citations = fallbackCitations(papers)
	}
	return summary, citations, nil
}

// FormatPapers renders paper records as a title/authors/year block for the
// synthesis prompt.
func FormatPapers(papers []types.PaperRecord) string {
	if len(papers) == 0 {
		return "No relevant papers were found."
	}
	var b strings.Builder
	for i, paper := range papers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Title: %s\n", paper.Title)
		fmt.Fprintf(&b, "Authors: %s\n", paper.AuthorList())
		fmt.Fprintf(&b, "Year: %s\n", paper.YearString())
	}
	return b.String()
}

// splitCitations separates the summary from the citations section of a
// synthesis reply. The reply is split on the first "Citations:" marker;
// each non-empty line after it is one citation.
func splitCitations(reply string) (string, []string) {
	before, after, found := strings.Cut(reply, "Citations:")
	summary := strings.TrimSpace(before)
	if !found {
		return summary, nil
	}

	var citations []string
	for _, line := range strings.Split(after, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			citations = append(citations, line)
		}
	}
	return summary, citations
}

// fallbackCitations formats one citation per paper from the record fields.
func fallbackCitations(papers []types.PaperRecord) []string {
	var citations []string
	for i, paper := range papers {
		citations = append(citations, fmt.Sprintf("[%d] %s, \"%s,\" %s.",
			i+1, paper.AuthorList(), paper.Title, paper.YearString()))
	}
	return citations
}

func formatComponents(components []Component) string {
	var b strings.Builder
	for _, c := range components {
		fmt.Fprintf(&b, "- %s\n", c.Topic)
		for _, sub := range c.Subtopics {
			fmt.Fprintf(&b, "  * %s\n", sub)
		}
	}
	return b.String()
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
