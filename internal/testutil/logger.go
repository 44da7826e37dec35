package testutil

import (
	"log/slog"
)

// DiscardLogger returns a slog.Logger that discards all output.
//
// For components that take a log.Logger (a type alias for *slog.Logger)
// prefer log.NewNop(); this helper exists for tests that avoid the
// internal/log import.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
