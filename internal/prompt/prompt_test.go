// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/deep-researcher/pkg/types"
)

// stubGenerator returns a fixed reply and records every prompt it receives.
type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// --- Component parsing ---

func TestParseComponents(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []Component
	}{
		{
			name: "topics with subtopics",
			reply: `- CRISPR gene editing
  * ethical considerations
  * clinical applications
- Delivery mechanisms
  * viral vectors`,
			want: []Component{
				{Topic: "CRISPR gene editing", Subtopics: []string{"ethical considerations", "clinical applications"}},
				{Topic: "Delivery mechanisms", Subtopics: []string{"viral vectors"}},
			},
		},
		{
			name:  "topic without subtopics",
			reply: "- single-cell sequencing",
			want:  []Component{{Topic: "single-cell sequencing"}},
		},
		{
			name: "noise lines ignored",
			reply: `Here is the breakdown:
- tumor heterogeneity
  * clonal evolution
That covers the main areas.`,
			want: []Component{{Topic: "tumor heterogeneity", Subtopics: []string{"clonal evolution"}}},
		},
		{
			name:  "subtopic before any topic is dropped",
			reply: "* orphan subtopic\n- real topic",
			want:  []Component{{Topic: "real topic"}},
		},
		{
			name:  "no delimiters",
			reply: "I cannot break this query down further.",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseComponents(tt.reply)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseComponents() returned %d components, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Topic != tt.want[i].Topic {
					t.Errorf("component %d topic = %q, want %q", i, got[i].Topic, tt.want[i].Topic)
				}
				if strings.Join(got[i].Subtopics, "|") != strings.Join(tt.want[i].Subtopics, "|") {
					t.Errorf("component %d subtopics = %v, want %v", i, got[i].Subtopics, tt.want[i].Subtopics)
				}
			}
		})
	}
}

func TestDecomposeFallsBackToQuery(t *testing.T) {
	gen := &stubGenerator{reply: "Sorry, I can only answer in prose."}
	eng := NewEngineer(gen)

	query := "effects of microplastics on marine ecosystems"
	components, err := eng.Decompose(context.Background(), query)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(components) != 1 || components[0].Topic != query {
		t.Errorf("fallback components = %+v, want single component with the query unchanged", components)
	}
}

func TestDecomposePropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("connection refused")
	eng := NewEngineer(&stubGenerator{err: wantErr})

	_, err := eng.Decompose(context.Background(), "anything")
	if !errors.Is(err, wantErr) {
		t.Errorf("Decompose error = %v, want %v", err, wantErr)
	}
}

// --- Search query derivation ---

func TestSearchQueries(t *testing.T) {
	tests := []struct {
		name       string
		components []Component
		want       []string
	}{
		{
			name: "topic and subtopic combinations",
			components: []Component{
				{Topic: "CRISPR", Subtopics: []string{"ethics", "delivery"}},
				{Topic: "base editing"},
			},
			want: []string{"CRISPR", "CRISPR ethics", "CRISPR delivery", "base editing"},
		},
		{
			name:       "no components",
			components: nil,
			want:       nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEngineer(nil).SearchQueries(tt.components)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("SearchQueries() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Synthesis ---

func TestIntegrateSplitsCitations(t *testing.T) {
	gen := &stubGenerator{reply: `The literature confirms the initial assessment.

Citations:
[1] A. Author, "Paper A," 2023.
[2] B. Author, "Paper B," 2022.`}
	eng := NewEngineer(gen)

	summary, citations, err := eng.Integrate(context.Background(), "initial", nil)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if summary != "The literature confirms the initial assessment." {
		t.Errorf("summary = %q", summary)
	}
	if len(citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(citations))
	}
	if !strings.Contains(citations[0], "Paper A") || !strings.Contains(citations[1], "Paper B") {
		t.Errorf("citations = %v", citations)
	}
}

func TestIntegrateFallbackCitationsFromPapers(t *testing.T) {
	gen := &stubGenerator{reply: "A fixed summary with no citation section."}
	eng := NewEngineer(gen)

	papers := []types.PaperRecord{
		{Title: "Paper A", Authors: []string{"A. Author"}, Year: 2023},
		{Title: "Paper B", Authors: []string{types.PlaceholderField}},
	}

	summary, citations, err := eng.Integrate(context.Background(), "initial", papers)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if summary != "A fixed summary with no citation section." {
		t.Errorf("summary = %q", summary)
	}
	if len(citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(citations))
	}
	if !strings.Contains(citations[0], "Paper A") || !strings.Contains(citations[1], "Paper B") {
		t.Errorf("fallback citations should reference both titles, got %v", citations)
	}
}

func TestIntegratePromptRendersPapers(t *testing.T) {
	gen := &stubGenerator{reply: "summary"}
	eng := NewEngineer(gen)

	papers := []types.PaperRecord{
		{Title: "Paper A", Authors: []string{"A. Author", "B. Author"}, Year: 2023},
	}
	if _, _, err := eng.Integrate(context.Background(), "the initial response", papers); err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	p := gen.prompts[0]
	for _, want := range []string{"the initial response", "Title: Paper A", "Authors: A. Author, B. Author", "Year: 2023"} {
		if !strings.Contains(p, want) {
			t.Errorf("synthesis prompt missing %q", want)
		}
	}
}

func TestFormatPapersEmpty(t *testing.T) {
	if got := FormatPapers(nil); got != "No relevant papers were found." {
		t.Errorf("FormatPapers(nil) = %q", got)
	}
}

func TestFormatPapersPlaceholders(t *testing.T) {
	got := FormatPapers([]types.PaperRecord{{Title: "Untitled findings"}})
	if !strings.Contains(got, "Authors: Unknown") || !strings.Contains(got, "Year: Unknown") {
		t.Errorf("FormatPapers missing placeholders:\n%s", got)
	}
}
