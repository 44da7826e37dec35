package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/owenlin0/coursechat/internal/app"
	"github.com/owenlin0/coursechat/internal/config"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new empty session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			id, err := a.RAG.CreateSession(ctx)
			if err != nil {
				return fmt.Errorf("creating session: %w", err)
			}
			cmd.Println(id)
			return nil
		})
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear [id]",
	Short: "Forget a session's conversation history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", args[0], err)
		}
		return withApp(func(ctx context.Context, a *app.App) error {
			if err := a.RAG.ClearSession(ctx, id); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			cmd.Printf("Cleared session %s\n", id)
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// withApp loads config, sets up the application, runs fn, and tears down.
func withApp(fn func(context.Context, *app.App) error) error {
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

	return fn(ctx, a)
}
