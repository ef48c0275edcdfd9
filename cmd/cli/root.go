package main

import (
	"os"

	"github.com/spf13/cobra"
)

var ollamaHost string

var rootCmd = &cobra.Command{
	Use:   "warden-cli",
	Short: "warden-cli is the command-line interface for Paper-Warden.",
	Long:  `A CLI for reviewing research-paper drafts with the Paper-Warden critique pipeline, inspecting draft structure, and managing the guideline knowledge base.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&ollamaHost, "ollama-host", "", "Ollama server URL (overrides OLLAMA_HOST)")
}

// initConfig pushes flag overrides into the environment before the
// configuration is loaded.
func initConfig() {
	if ollamaHost != "" {
		os.Setenv("OLLAMA_HOST", ollamaHost)
	}
}
