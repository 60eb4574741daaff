// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResearchResult is the write-once aggregate assembled by one pipeline run.
// Papers preserves the API-reported result order; the pipeline performs no
// re-sorting.
type ResearchResult struct {
	// Query is the user's research question, unchanged.
	Query string `json:"query" yaml:"query"`

	// InitialResponse is the model's answer before literature integration.
	InitialResponse string `json:"initial_response" yaml:"initial_response"`

	// Papers lists the literature records found, in result order.
	Papers []PaperRecord `json:"papers" yaml:"papers"`

	// Summary is the final synthesized summary citing the papers.
	Summary string `json:"summary" yaml:"summary"`

	// Citations lists the formatted citations from the synthesis reply.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`
}
