package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/owenlin0/coursechat/internal/app"
	"github.com/owenlin0/coursechat/internal/config"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the cataloged courses",
	RunE:  runCourses,
}

func init() {
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
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

	analytics, err := a.RAG.Analytics(ctx)
	if err != nil {
		return fmt.Errorf("loading course catalog: %w", err)
	}

	cmd.Printf("Courses: %d\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		cmd.Printf("  - %s\n", title)
	}
	return nil
}
