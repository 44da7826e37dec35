// Package app initializes the application: configuration, database,
// Genkit provider, stores, tools, and the RAG facade. Commands call
// Setup once and work against the returned App.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/owenlin0/coursechat/internal/chat"
	"github.com/owenlin0/coursechat/internal/config"
	"github.com/owenlin0/coursechat/internal/ingest"
	"github.com/owenlin0/coursechat/internal/knowledge"
	"github.com/owenlin0/coursechat/internal/log"
	"github.com/owenlin0/coursechat/internal/rag"
	"github.com/owenlin0/coursechat/internal/session"
	"github.com/owenlin0/coursechat/internal/tools"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Pool     *pgxpool.Pool

	Knowledge *knowledge.Store
	Sessions  *session.Store
	Ingestor  *ingest.Processor
	Registry  *tools.Registry
	Generator *chat.Generator
	RAG       *rag.System

	otelCleanup func()
}

// Close gracefully releases all resources.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
