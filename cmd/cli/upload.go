package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftproof/paper-warden/internal/wire"
)

var (
	uploadCategory string
	uploadReset    bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [guideline-file]",
	Short: "Upload a writing-guideline document to the knowledge base",
	Long: `Split a markdown guideline document into snippets and index them in
the vector store so the review agents can retrieve them.

Examples:
  warden-cli upload --category clarity style-guide.md
  warden-cli upload --category rigor --reset methodology-checklist.md`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	uploadCmd.Flags().StringVar(&uploadCategory, "category", "clarity", `Guideline category ("clarity" or "rigor")`)
	uploadCmd.Flags().BoolVar(&uploadReset, "reset", false, "Drop the category's collection before uploading")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	_, uploader, _, err := wire.InitializePipeline(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	if uploadReset {
		if err := uploader.Reset(ctx, uploadCategory); err != nil {
			return fmt.Errorf("failed to reset %s collection: %w", uploadCategory, err)
		}
		warnColor.Printf("Reset %s guideline collection\n", uploadCategory)
	}

	count, err := uploader.UploadFile(ctx, uploadCategory, path)
	if err != nil {
		return fmt.Errorf("failed to upload guidelines: %w", err)
	}

	successColor.Printf("Indexed %d snippets from %s into the %s collection\n", count, path, uploadCategory)
	return nil
}
