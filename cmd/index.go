package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/owenlin0/coursechat/internal/app"
	"github.com/owenlin0/coursechat/internal/config"
)

var indexCmd = &cobra.Command{
	Use:   "index [folder]",
	Short: "Load course documents into the knowledge store",
	Long: `Index parses every .txt and .md course document in the folder,
chunks the content, embeds it, and stores it in PostgreSQL. Courses
already cataloged are skipped. Without an argument the configured
docs directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	dir := cfg.DocsDir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no folder given and docs_dir is not configured")
	}

	ctx := context.Background()
	logger := newLogger()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	courses, chunks, err := a.RAG.AddCourseFolder(ctx, dir)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", dir, err)
	}

	cmd.Printf("Indexed %d courses (%d chunks) from %s\n", courses, chunks, dir)
	return nil
}
