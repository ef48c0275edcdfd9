package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftproof/paper-warden/internal/paper"
)

var structureCmd = &cobra.Command{
	Use:   "structure [draft-file]",
	Short: "Print the section outline of a paper draft",
	Long: `Parse a draft without running any agents and print the section
outline the review pipeline would operate on. Useful for checking how
headings split before spending model calls.`,
	Args: cobra.ExactArgs(1),
	RunE: runStructure,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(structureCmd)
}

func runStructure(_ *cobra.Command, args []string) error {
	content, err := loadDraft(args[0])
	if err != nil {
		return err
	}

	sections, err := paper.ParseSections(content)
	if err != nil {
		return fmt.Errorf("failed to parse draft: %w", err)
	}
	if len(sections) == 0 {
		warnColor.Println("No sections found.")
		return nil
	}

	titleColor.Printf("%d sections\n\n", len(sections))
	fmt.Println(paper.Summary(sections))
	return nil
}
