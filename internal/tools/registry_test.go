package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/firebase/genkit/go/genkit"
)

type echoInput struct {
	Message string `json:"message"`
}

func newTestRegistry(t *testing.T) (*Registry, *genkit.Genkit) {
	t.Helper()
	g := genkit.Init(context.Background())
	return NewRegistry(), g
}

func TestRegistry_Execute(t *testing.T) {
	r, g := newTestRegistry(t)
	Register(r, g, "echo", "echoes the message back",
		func(_ context.Context, in echoInput) (Result, error) {
			return Result{Text: "echo: " + in.Message}, nil
		})

	tests := []struct {
		name     string
		input    any
		wantText string
	}{
		{
			name:     "typed input",
			input:    echoInput{Message: "hello"},
			wantText: "echo: hello",
		},
		{
			name:     "map input decoded via JSON",
			input:    map[string]any{"message": "world"},
			wantText: "echo: world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(context.Background(), "echo", tt.input)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if res.Text != tt.wantText {
				t.Errorf("Execute() text = %q, want %q", res.Text, tt.wantText)
			}
		})
	}
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Execute(context.Background(), "nonexistent", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("Execute() error = %v, want ErrUnknownTool", err)
	}
}

func TestRegistry_Execute_HandlerError(t *testing.T) {
	r, g := newTestRegistry(t)
	wantErr := fmt.Errorf("store unavailable")
	Register(r, g, "failing", "always fails",
		func(context.Context, echoInput) (Result, error) {
			return Result{}, wantErr
		})

	_, err := r.Execute(context.Background(), "failing", echoInput{})
	if !errors.Is(err, wantErr) {
		t.Errorf("Execute() error = %v, want %v", err, wantErr)
	}
}

func TestRegistry_Execute_InvalidInput(t *testing.T) {
	r, g := newTestRegistry(t)
	Register(r, g, "echo", "echoes the message back",
		func(_ context.Context, in echoInput) (Result, error) {
			return Result{Text: in.Message}, nil
		})

	_, err := r.Execute(context.Background(), "echo", "not an object")
	if err == nil {
		t.Fatal("Execute() expected error for malformed input")
	}
}

func TestRegistry_Ordering(t *testing.T) {
	r, g := newTestRegistry(t)
	noop := func(context.Context, echoInput) (Result, error) { return Result{}, nil }
	Register(r, g, "first", "first tool", noop)
	Register(r, g, "second", "second tool", noop)
	Register(r, g, "third", "third tool", noop)

	names := r.Names()
	want := []string{"first", "second", "third"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if refs := r.Refs(); len(refs) != 3 {
		t.Errorf("Refs() returned %d refs, want 3", len(refs))
	}
}
