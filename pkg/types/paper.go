// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deep-researcher pipeline.
package types

import (
	"strconv"
	"strings"
)

// PlaceholderField is substituted for any field that is missing from an API
// payload. Records are never dropped for missing fields.
const PlaceholderField = "Unknown"

// PaperRecord is a normalized literature citation entry produced by the
// literature manager from raw search API JSON. Records carry no identity
// beyond structural equality.
type PaperRecord struct {
	// Title is the paper title, or PlaceholderField when absent.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order. A record whose source
	// payload carries no authors gets a single PlaceholderField entry.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Source is the domain of the venue that hosts the paper.
	Source string `json:"source" yaml:"source"`

	// URL is the link to the paper, when the API provided one.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Relevance is the API-reported relevance score; 0 when not reported.
	Relevance float64 `json:"relevance,omitempty" yaml:"relevance,omitempty"`
}

// AuthorList renders the authors as a comma-separated string, falling back
// to the placeholder when none are known.
func (p PaperRecord) AuthorList() string {
	if len(p.Authors) == 0 {
		return PlaceholderField
	}
	return strings.Join(p.Authors, ", ")
}

// YearString renders the publication year, falling back to the placeholder
// when unknown.
func (p PaperRecord) YearString() string {
	if p.Year == 0 {
		return PlaceholderField
	}
	return strconv.Itoa(p.Year)
}
