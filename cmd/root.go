// Package cmd implements the coursechat CLI.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/owenlin0/coursechat/internal/log"
)

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "coursechat",
	Short: "Course materials chat assistant",
	Long: `coursechat answers questions about course materials using retrieval
augmented generation: course documents are chunked, embedded, and stored
in PostgreSQL with pgvector; an LLM searches them through tools while
answering.

Run 'coursechat serve' to start the HTTP API, 'coursechat index' to load
course documents, or 'coursechat ask' for one-off questions.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// newLogger builds the process logger from the persistent flags.
func newLogger() log.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return log.New(log.Config{Level: level, JSON: logJSON})
}
