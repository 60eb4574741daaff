// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deep-researcher CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-researcher/internal/secrets"
	"github.com/pdiddy/deep-researcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the deep-researcher CLI.
var rootCmd = &cobra.Command{
	Use:   "deep-researcher",
	Short: "Research assistant backed by a local LLM and academic search",
	Long: `deep-researcher answers research questions in three stages: a local Ollama
model breaks the question into topics, the Tavily search API finds academic
papers for each topic, and the model synthesizes a cited summary from the
findings.

The pipeline runs once per invocation, fully sequentially. Results are
written to a flat text report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deep-researcher.yaml or ~/.config/deep-researcher/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deep-researcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deep-researcher"))
		}
	}

	viper.SetEnvPrefix("DEEP_RESEARCHER")
	viper.AutomaticEnv()

	defaults := types.DefaultPipelineConfig()
	viper.SetDefault("ollama.base_url", defaults.Ollama.BaseURL)
	viper.SetDefault("ollama.model", defaults.Ollama.Model)
	viper.SetDefault("ollama.temperature", defaults.Ollama.Temperature)
	viper.SetDefault("search.backend", defaults.Search.Backend)
	viper.SetDefault("search.max_results", defaults.Search.MaxResults)
	viper.SetDefault("search.search_depth", defaults.Search.SearchDepth)
	viper.SetDefault("search.user_agent", defaults.Search.UserAgent)
	viper.SetDefault("report.output_dir", defaults.Report.OutputDir)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the pipeline configuration from viper (config file,
// environment, defaults). Per-command flags override on top of this.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Ollama: types.OllamaConfig{
			BaseURL:     firstNonEmpty(viper.GetString("ollama.base_url"), loadedSecrets["ollama-base-url"]),
			Model:       viper.GetString("ollama.model"),
			Temperature: viper.GetFloat64("ollama.temperature"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			Backend:        viper.GetString("search.backend"),
			APIKey:         tavilyAPIKey(),
			SemanticAPIKey: semanticScholarAPIKey(),
			MaxResults:     viper.GetInt("search.max_results"),
			SearchDepth:    viper.GetString("search.search_depth"),
		},
		Report: types.ReportConfig{
			OutputDir: viper.GetString("report.output_dir"),
		},
	}
}

// tavilyAPIKey resolves the search API key: config file, then environment,
// then .secrets/tavily-api-key.
func tavilyAPIKey() string {
	return firstNonEmpty(
		viper.GetString("search.api_key"),
		os.Getenv("TAVILY_API_KEY"),
		loadedSecrets["tavily-api-key"],
	)
}

// semanticScholarAPIKey resolves the optional Semantic Scholar key the same
// way: config file, then environment, then .secrets/semantic-scholar-api-key.
func semanticScholarAPIKey() string {
	return firstNonEmpty(
		viper.GetString("search.semantic_api_key"),
		os.Getenv("SEMANTIC_SCHOLAR_API_KEY"),
		loadedSecrets["semantic-scholar-api-key"],
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
