package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/draftproof/paper-warden/internal/core"
	"github.com/draftproof/paper-warden/internal/paper"
	"github.com/draftproof/paper-warden/internal/wire"
)

var (
	targetVenue string
	verbose     bool
	plainOutput bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [draft-file]",
	Short: "Run a multi-agent critique of a paper draft",
	Long: `Run a multi-agent critique of a research-paper draft.

The review command parses the draft into sections, runs the clarity and
rigor agents over each section, and prints the validated suggestion list.
Markdown and PDF drafts are supported.

Examples:
  warden-cli review draft.md
  warden-cli review --venue NeurIPS --verbose draft.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVar(&targetVenue, "venue", "", "Target venue profile (e.g. NeurIPS)")
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	reviewCmd.Flags().BoolVar(&plainOutput, "plain", false, "Disable terminal markdown rendering")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	draftPath := args[0]
	overallStart := time.Now()

	titleColor.Println("Paper Warden - Draft Review")
	dimColor.Printf("   Target: %s\n\n", draftPath)

	content, err := loadDraft(draftPath)
	if err != nil {
		return err
	}

	workflow, _, _, err := wire.InitializePipeline(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w\n\nTip: Check that your .env exists and the model service is reachable", err)
	}

	req := core.ReviewRequest{
		Content:     content,
		SessionID:   uuid.NewString(),
		TargetVenue: targetVenue,
	}

	result, err := workflow.ReviewWithProgress(ctx, req, printProgress)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if verbose {
		dimColor.Printf("\nTotal time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	return printResult(result)
}

// loadDraft reads a markdown or PDF draft from disk.
func loadDraft(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := paper.ExtractPDFText(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract PDF text: %w", err)
		}
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read draft: %w", err)
	}
	return string(data), nil
}

func printProgress(ev core.ProgressEvent) {
	switch ev.Stage {
	case core.StageParsed:
		fmt.Printf("Parsed %d sections\n", ev.SectionTotal)
	case core.StageSection:
		if verbose {
			dimColor.Printf("   [%d/%d] %s (%d findings so far)\n",
				ev.SectionIndex+1, ev.SectionTotal, ev.SectionTitle, ev.FindingsSoFar)
		} else {
			fmt.Printf("   [%d/%d] %s\n", ev.SectionIndex+1, ev.SectionTotal, ev.SectionTitle)
		}
	case core.StageValidating:
		fmt.Println("Validating findings...")
	case core.StageComplete:
		successColor.Println("Review complete")
	}
}

func printResult(result *core.ReviewResult) error {
	report := buildReport(result)

	if plainOutput {
		fmt.Println(report)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Println(report)
		return nil
	}
	rendered, err := renderer.Render(report)
	if err != nil {
		fmt.Println(report)
		return nil
	}
	fmt.Print(rendered)

	if !result.Validated && len(result.Suggestions) > 0 {
		warnColor.Println("Note: validation was skipped or failed; showing all raw findings.")
	}
	return nil
}

// buildReport formats a review result as a markdown document, keeping the
// suggestion order the pipeline produced.
func buildReport(result *core.ReviewResult) string {
	var b strings.Builder
	b.WriteString("# Review Summary\n\n")
	fmt.Fprintf(&b, "- Sections analyzed: %d\n", result.SectionCount)
	fmt.Fprintf(&b, "- Suggestions: %d\n", len(result.Suggestions))
	fmt.Fprintf(&b, "- Processing time: %.1fs\n", result.ProcessingTime)
	if !result.Validated {
		b.WriteString("- Validation: skipped (raw findings)\n")
	}

	if len(result.Suggestions) == 0 {
		b.WriteString("\nNo issues found.\n")
		return b.String()
	}

	for i, s := range result.Suggestions {
		fmt.Fprintf(&b, "\n## %d. [%s/%s] %s\n\n", i+1, s.Type, s.Severity, s.Title)
		if s.LineStart > 0 {
			fmt.Fprintf(&b, "*%s, lines %d-%d*\n\n", s.Section, s.LineStart, s.LineEnd)
		} else {
			fmt.Fprintf(&b, "*%s*\n\n", s.Section)
		}
		b.WriteString(s.Description)
		b.WriteString("\n")
		if s.SuggestedFix != "" {
			fmt.Fprintf(&b, "\n**Suggested fix:** %s\n", s.SuggestedFix)
		}
		for _, ref := range s.References {
			fmt.Fprintf(&b, "- Reference: %s\n", ref)
		}
	}
	return b.String()
}
