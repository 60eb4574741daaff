// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ollama wraps the local Ollama inference endpoint. Every generation
// call uses one fixed model and one fixed sampling temperature; the call
// blocks until the complete text is returned or fails.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	api "github.com/ollama/ollama/api"

	"github.com/pdiddy/deep-researcher/pkg/types"
)

// ErrUnreachable marks failures to reach the local inference server or a
// non-success reply from it. Fatal for the current run; no fallback model.
var ErrUnreachable = errors.New("ollama server unreachable")

// Client is a thin wrapper around the Ollama API client with a fixed model
// identifier and fixed sampling temperature.
type Client struct {
	api         *api.Client
	model       string
	temperature float64
}

// New builds a Client from the configuration. A nil httpClient means
// http.DefaultClient (no timeout beyond the transport's own).
func New(cfg types.OllamaConfig, httpClient *http.Client) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = types.DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", base, err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = types.DefaultTemperature
	}

	return &Client{
		api:         api.NewClient(u, httpClient),
		model:       model,
		temperature: temperature,
	}, nil
}

// Model returns the fixed model identifier.
func (c *Client) Model() string { return c.model }

// Generate sends a prompt to the inference server and returns the complete
// generated text. No streaming and no partial results: the callback only
// accumulates until the server reports completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": c.temperature,
		},
	}

	var text strings.Builder
	err := c.api.Generate(ctx, req, func(gr api.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return text.String(), nil
}

// CheckServer reports whether the Ollama server is running and responding.
func (c *Client) CheckServer(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}

// ListModels returns the names of models available on the local server.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// PullModel downloads the configured model from the Ollama registry,
// writing progress status lines to w.
func (c *Client) PullModel(ctx context.Context, w io.Writer) error {
	req := &api.PullRequest{Model: c.model}
	lastStatus := ""
	err := c.api.Pull(ctx, req, func(pr api.ProgressResponse) error {
		if pr.Status != lastStatus {
			fmt.Fprintf(w, "%s\n", pr.Status)
			lastStatus = pr.Status
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", c.model, err)
	}
	return nil
}

// EnsureModel verifies the server is up and the configured model is present,
// pulling it when missing. Progress and status lines go to w.
func (c *Client) EnsureModel(ctx context.Context, w io.Writer) error {
	if err := c.CheckServer(ctx); err != nil {
		return err
	}

	models, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, name := range models {
		if name == c.model {
			return nil
		}
	}

	fmt.Fprintf(w, "Model %s not found locally, pulling...\n", c.model)
	return c.PullModel(ctx, w)
}
