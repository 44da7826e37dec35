package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/owenlin0/coursechat/internal/app"
	"github.com/owenlin0/coursechat/internal/chat"
	"github.com/owenlin0/coursechat/internal/config"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-off question about the course materials",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session id to continue a conversation")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	sessionID := uuid.Nil
	if askSession != "" {
		sessionID, err = uuid.Parse(askSession)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", askSession, err)
		}
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

	question := strings.Join(args, " ")
	ans, err := a.RAG.Query(ctx, question, sessionID)
	if err != nil {
		// A model failure is still an answer for the person asking.
		var me *chat.ModelError
		if errors.As(err, &me) {
			cmd.Println(chat.Apology(err))
			return nil
		}
		return fmt.Errorf("answering question: %w", err)
	}

	cmd.Println(ans.Text)
	if len(ans.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range ans.Sources {
			if src.Link != "" {
				cmd.Printf("  - %s (%s)\n", src.Display, src.Link)
			} else {
				cmd.Printf("  - %s\n", src.Display)
			}
		}
	}
	cmd.Printf("\nSession: %s\n", ans.Session)
	return nil
}
