// Package rag wires the course store, the session store, and the chat
// orchestrator into one facade. HTTP handlers and CLI commands talk to
// System instead of the individual collaborators.
package rag

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owenlin0/coursechat/internal/chat"
	"github.com/owenlin0/coursechat/internal/tools"
)

// queryPrefix frames the user's raw question for the model.
const queryPrefix = "Answer this question about course materials: "

// Generator produces an answer for one framed query.
type Generator interface {
	Generate(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// SessionStore records conversations.
type SessionStore interface {
	Create(ctx context.Context) (uuid.UUID, error)
	History(ctx context.Context, id uuid.UUID) (string, error)
	AddExchange(ctx context.Context, id uuid.UUID, userMsg, assistantMsg string) error
	Clear(ctx context.Context, id uuid.UUID) error
}

// Catalog answers course inventory questions.
type Catalog interface {
	CourseTitles(ctx context.Context) ([]string, error)
	CountCourses(ctx context.Context) (int, error)
}

// Ingestor loads course documents into the knowledge store.
type Ingestor interface {
	ProcessFolder(ctx context.Context, dir string) (courses, chunks int, err error)
}

// Answer is the result of one query.
type Answer struct {
	Text    string
	Sources []tools.Source
	Rounds  int
	Session uuid.UUID
}

// Analytics summarizes the course catalog.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// Config lists the collaborators a System needs. Ingestor is optional;
// a serving-only deployment can omit it.
type Config struct {
	Generator Generator
	Executor  chat.Executor
	Sessions  SessionStore
	Catalog   Catalog
	Ingestor  Ingestor
	Logger    *slog.Logger
}

// System is the RAG facade.
type System struct {
	generator Generator
	executor  chat.Executor
	sessions  SessionStore
	catalog   Catalog
	ingestor  Ingestor
	logger    *slog.Logger
}

// New creates a System.
func New(cfg Config) (*System, error) {
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &System{
		generator: cfg.Generator,
		executor:  cfg.Executor,
		sessions:  cfg.Sessions,
		catalog:   cfg.Catalog,
		ingestor:  cfg.Ingestor,
		logger:    cfg.Logger,
	}, nil
}

// Query answers one user question within a session. A zero sessionID
// starts a new session; the id actually used is returned in the Answer.
//
// Model failures surface as *chat.ModelError so callers can render an
// apology; in that case the exchange is not persisted.
func (s *System) Query(ctx context.Context, query string, sessionID uuid.UUID) (*Answer, error) {
	if query == "" {
		return nil, errors.New("query is required")
	}

	if sessionID == uuid.Nil {
		id, err := s.sessions.Create(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = id
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.generator.Generate(ctx, chat.Request{
		Query:    queryPrefix + query,
		History:  history,
		Executor: s.executor,
	})
	if err != nil {
		return nil, err
	}

	// History records the raw question, not the framed prompt. Best-effort:
	// a persistence failure must not lose the answer already produced.
	if err := s.sessions.AddExchange(ctx, sessionID, query, resp.Answer); err != nil {
		s.logger.Warn("recording exchange", "session_id", sessionID, "error", err)
	}

	s.logger.Info("query answered",
		"session_id", sessionID,
		"rounds", resp.Rounds,
		"sources", len(resp.Sources))

	return &Answer{
		Text:    resp.Answer,
		Sources: resp.Sources,
		Rounds:  resp.Rounds,
		Session: sessionID,
	}, nil
}

// CreateSession starts a new empty session.
func (s *System) CreateSession(ctx context.Context) (uuid.UUID, error) {
	return s.sessions.Create(ctx)
}

// ClearSession forgets a session's history but keeps the session alive.
func (s *System) ClearSession(ctx context.Context, id uuid.UUID) error {
	return s.sessions.Clear(ctx, id)
}

// Analytics reports the catalog size and titles.
func (s *System) Analytics(ctx context.Context) (*Analytics, error) {
	count, err := s.catalog.CountCourses(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := s.catalog.CourseTitles(ctx)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []string{}
	}
	return &Analytics{TotalCourses: count, CourseTitles: titles}, nil
}

// AddCourseFolder ingests every supported document in dir, skipping
// courses already cataloged.
func (s *System) AddCourseFolder(ctx context.Context, dir string) (courses, chunks int, err error) {
	if s.ingestor == nil {
		return 0, 0, errors.New("ingestion is not configured")
	}
	return s.ingestor.ProcessFolder(ctx, dir)
}
