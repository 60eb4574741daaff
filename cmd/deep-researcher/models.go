// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-researcher/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect and manage local Ollama models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models available on the local Ollama server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ollamaClient(cmd)
		if err != nil {
			return err
		}
		names, err := client.ListModels(cmd.Context())
		if err != nil {
			return serverHint(err)
		}
		if len(names) == 0 {
			fmt.Println("No models installed.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the configured model from the Ollama registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ollamaClient(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Pulling %s...\n", client.Model())
		if err := client.PullModel(cmd.Context(), os.Stderr); err != nil {
			return serverHint(err)
		}
		return nil
	},
}

func ollamaClient(cmd *cobra.Command) (*ollama.Client, error) {
	cfg := loadConfig()
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Ollama.Model = model
	}
	return ollama.New(cfg.Ollama, nil)
}

func serverHint(err error) error {
	if errors.Is(err, ollama.ErrUnreachable) {
		return fmt.Errorf("%w\nstart the server with: ollama serve", err)
	}
	return err
}

func init() {
	modelsCmd.PersistentFlags().String("model", "", "override the configured Ollama model")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)
	rootCmd.AddCommand(modelsCmd)
}
