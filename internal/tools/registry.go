package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Handler executes a tool against its decoded input. Input arrives as
// whatever the model produced (typically map[string]any); implementations
// re-decode it into their typed input struct.
type Handler func(ctx context.Context, input any) (Result, error)

// Registry holds the tools offered to the model and dispatches execution
// requests by name. Registration order is preserved so the model sees a
// stable tool list.
type Registry struct {
	names    []string
	tools    map[string]ai.Tool
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]ai.Tool),
		handlers: make(map[string]Handler),
	}
}

// Register defines a tool with Genkit (so the model receives its JSON
// schema) and records a type-erased handler for dispatch.
//
// Type safety is guaranteed at compile time via the In parameter; type
// erasure happens internally so heterogeneous tools share one registry.
func Register[In any](r *Registry, g *genkit.Genkit, name, description string, fn func(context.Context, In) (Result, error)) {
	tool := genkit.DefineTool(g, name, description,
		func(tc *ai.ToolContext, input In) (string, error) {
			res, err := fn(tc.Context, input)
			if err != nil {
				return "", err
			}
			return res.Text, nil
		})

	r.names = append(r.names, name)
	r.tools[name] = tool
	r.handlers[name] = func(ctx context.Context, input any) (Result, error) {
		typed, err := decode[In](input)
		if err != nil {
			return Result{}, fmt.Errorf("tool %s: %w", name, err)
		}
		return fn(ctx, typed)
	}
}

// decode converts the model-provided input into the tool's typed input
// struct. A direct assertion is tried first; otherwise the value is
// round-tripped through JSON, which is how Genkit delivers tool inputs
// (map[string]any).
func decode[In any](input any) (In, error) {
	if typed, ok := input.(In); ok {
		return typed, nil
	}

	var typed In
	raw, err := json.Marshal(input)
	if err != nil {
		return typed, fmt.Errorf("marshal input: %w", err)
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return typed, fmt.Errorf("invalid input: expected %T: %w", typed, err)
	}
	return typed, nil
}

// Refs returns the registered tools in registration order, for passing to
// a model request.
func (r *Registry) Refs() []ai.ToolRef {
	refs := make([]ai.ToolRef, 0, len(r.names))
	for _, name := range r.names {
		refs = append(refs, r.tools[name])
	}
	return refs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Execute dispatches a tool request by name. It returns ErrUnknownTool
// when the model asks for a tool that was never registered.
func (r *Registry) Execute(ctx context.Context, name string, input any) (Result, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return handler(ctx, input)
}
