// Package chat drives the bounded multi-round conversation between the
// user's question and the language model. Each round the model may
// request tool calls; the orchestrator executes them, feeds the results
// back as tool messages, and stops when the model answers in plain text
// or the round budget runs out.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/owenlin0/coursechat/internal/tools"
)

// fallbackAnswer is returned when the model produces an empty final text.
const fallbackAnswer = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

// Executor runs tool requests on behalf of the orchestrator and exposes
// the tool schemas to advertise to the model. *tools.Registry satisfies it.
type Executor interface {
	Execute(ctx context.Context, name string, input any) (tools.Result, error)
	Refs() []ai.ToolRef
}

// Config contains the required parameters for a Generator.
type Config struct {
	Genkit    *genkit.Genkit
	ModelName string // Provider-qualified model name (e.g. "googleai/gemini-2.5-flash")
	Logger    *slog.Logger

	Temperature float32 // Sampling temperature, 0 for deterministic answers
	MaxTokens   int     // Max output tokens per model call (default 800)
	MaxRounds   int     // Default tool round budget (default 2)

	Retry       RetryConfig   // Zero value uses DefaultRetryConfig
	RateLimiter *rate.Limiter // nil = default 10 req/s, burst 30
}

// Request is one generation request.
type Request struct {
	// Query is the user's question, already prefixed by the caller if a
	// framing prefix is wanted.
	Query string
	// History is an opaque transcript of prior turns, empty for a fresh
	// conversation.
	History string
	// MaxRounds overrides the generator's round budget when positive.
	MaxRounds int
	// Executor runs tool calls. When nil the model is never offered tools.
	Executor Executor
}

// Response is the outcome of a completed generation.
type Response struct {
	// Answer is the model's final text.
	Answer string
	// Sources accumulates the citations of every successful tool call made
	// while answering, in execution order.
	Sources []tools.Source
	// Rounds is the number of model calls that produced the answer.
	Rounds int
}

// Generator orchestrates model calls and tool execution.
//
// Generator is stateless per request and safe for concurrent use.
type Generator struct {
	g         *genkit.Genkit
	modelName string
	logger    *slog.Logger

	temperature float32
	maxTokens   int
	maxRounds   int

	retry   RetryConfig
	limiter *rate.Limiter
}

// New creates a Generator.
func New(cfg Config) (*Generator, error) {
	if cfg.Genkit == nil {
		return nil, errors.New("genkit instance is required")
	}
	if cfg.ModelName == "" {
		return nil, errors.New("model name is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 2
	}
	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}

	return &Generator{
		g:           cfg.Genkit,
		modelName:   cfg.ModelName,
		logger:      cfg.Logger,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRounds:   cfg.MaxRounds,
		retry:       retry,
		limiter:     limiter,
	}, nil
}

// Generate runs the round loop for one query.
//
// Tools are offered while round < maxRounds, so the last budgeted round
// is already tool-free for the model. If the model nevertheless keeps
// requesting tools through every round, one final synthesis call without
// tools closes the conversation. A failed model call at any point returns
// a *ModelError; callers render it with Apology when speaking to users.
func (g *Generator) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Query == "" {
		return nil, errors.New("query is required")
	}

	maxRounds := req.MaxRounds
	if maxRounds <= 0 {
		maxRounds = g.maxRounds
	}

	system := buildSystem(req.History)
	messages := []*ai.Message{ai.NewUserMessage(ai.NewTextPart(req.Query))}
	var sources []tools.Source

	for round := 1; round <= maxRounds; round++ {
		offerTools := round < maxRounds && req.Executor != nil

		resp, err := g.call(ctx, system, messages, offerTools, req.Executor)
		if err != nil {
			return nil, &ModelError{Round: round, Err: err}
		}

		// A model can emit tool-request parts even when no schemas were
		// offered; without an executor those requests cannot run, so the
		// text content is the answer.
		requests := resp.ToolRequests()
		if len(requests) == 0 || req.Executor == nil {
			return &Response{Answer: g.answerText(resp), Sources: sources, Rounds: round}, nil
		}

		g.logger.Debug("executing tool round",
			"round", round,
			"requests", len(requests))

		messages = append(messages, resp.Message)
		toolMsg, roundSources := g.runTools(ctx, req.Executor, requests, round)
		messages = append(messages, toolMsg)
		sources = append(sources, roundSources...)
	}

	// The model spent every round on tools; force a plain-text synthesis.
	resp, err := g.call(ctx, system, messages, false, nil)
	if err != nil {
		return nil, &ModelError{Round: maxRounds, Final: true, Err: err}
	}
	return &Response{Answer: g.answerText(resp), Sources: sources, Rounds: maxRounds + 1}, nil
}

// call makes one model call, optionally advertising tool schemas.
// ReturnToolRequests keeps genkit from running tools itself; the round
// loop owns execution so failures and sources stay under its control.
func (g *Generator) call(ctx context.Context, system string, messages []*ai.Message, offerTools bool, exec Executor) (*ai.ModelResponse, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName(g.modelName),
		ai.WithSystem(system),
		ai.WithMessages(messages...),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(g.temperature),
			MaxOutputTokens: int32(g.maxTokens),
		}),
		ai.WithReturnToolRequests(true),
	}
	if offerTools {
		opts = append(opts,
			ai.WithTools(exec.Refs()...),
			ai.WithToolChoice(ai.ToolChoiceAuto),
		)
	}
	return g.generateWithRetry(ctx, opts)
}

// runTools executes every tool request of one round in emission order and
// builds the single RoleTool message carrying the correlated responses.
// A failing tool produces a textual failure result instead of aborting
// the round, so the model can route around it.
func (g *Generator) runTools(ctx context.Context, exec Executor, requests []*ai.ToolRequest, round int) (*ai.Message, []tools.Source) {
	parts := make([]*ai.Part, 0, len(requests))
	var sources []tools.Source

	for _, tr := range requests {
		res, err := exec.Execute(ctx, tr.Name, tr.Input)
		text := res.Text
		if err != nil {
			g.logger.Warn("tool execution failed",
				"tool", tr.Name,
				"round", round,
				"error", err)
			text = fmt.Sprintf("Tool execution failed: %v", err)
		} else {
			sources = append(sources, res.Sources...)
		}

		parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   tr.Name,
			Ref:    tr.Ref,
			Output: text,
		}))
	}

	return ai.NewMessage(ai.RoleTool, nil, parts...), sources
}

// answerText extracts the final text, falling back to an apology when the
// model returned nothing usable.
func (g *Generator) answerText(resp *ai.ModelResponse) string {
	text := resp.Text()
	if text == "" {
		g.logger.Warn("model returned empty final text")
		return fallbackAnswer
	}
	return text
}
