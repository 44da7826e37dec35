package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Step is one scripted model turn. Exactly one of Text, ToolRequests, or
// Err should be meaningful: a step with ToolRequests emits tool request
// parts (plus any Text), a step with Err fails the call.
type Step struct {
	Text         string
	ToolRequests []*ai.ToolRequest
	Err          error
}

// CallRecord captures what the model saw on one call.
type CallRecord struct {
	// ToolsOffered is true when the request advertised tool schemas.
	ToolsOffered bool
	// Messages is the transcript length at call time.
	Messages int
	// LastUserText is the most recent user message text.
	LastUserText string
}

// ScriptedLLM is a mock model that replays a fixed sequence of steps, one
// per Generate call, recording what each call was offered. Calls beyond
// the script fail loudly.
//
// Thread-safe for concurrent use.
type ScriptedLLM struct {
	mu    sync.Mutex
	steps []Step
	calls []CallRecord
}

// NewScriptedLLM creates a scripted model with the given steps.
func NewScriptedLLM(steps ...Step) *ScriptedLLM {
	return &ScriptedLLM{steps: steps}
}

// Enqueue appends steps to the script.
func (m *ScriptedLLM) Enqueue(steps ...Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, steps...)
}

// Calls returns a copy of all recorded calls.
func (m *ScriptedLLM) Calls() []CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]CallRecord, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// Register registers the mock as a Genkit model named "mock/scripted-model".
func (m *ScriptedLLM) Register(g *genkit.Genkit) ai.Model {
	return genkit.DefineModel(g, "mock/scripted-model", &ai.ModelOptions{
		Label: "Scripted Test Model",
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			Tools:      true,
			SystemRole: true,
			Media:      false,
		},
	}, m.generate)
}

func (m *ScriptedLLM) generate(_ context.Context, req *ai.ModelRequest, _ ai.ModelStreamCallback) (*ai.ModelResponse, error) {
	var lastUser string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == ai.RoleUser {
			lastUser = req.Messages[i].Text()
			break
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, CallRecord{
		ToolsOffered: len(req.Tools) > 0,
		Messages:     len(req.Messages),
		LastUserText: lastUser,
	})
	if len(m.steps) == 0 {
		n := len(m.calls)
		m.mu.Unlock()
		return nil, fmt.Errorf("scripted model exhausted after %d calls", n)
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	m.mu.Unlock()

	if step.Err != nil {
		return nil, step.Err
	}

	var parts []*ai.Part
	for _, tr := range step.ToolRequests {
		parts = append(parts, &ai.Part{
			Kind:        ai.PartToolRequest,
			ToolRequest: tr,
		})
	}
	if step.Text != "" || len(parts) == 0 {
		parts = append(parts, ai.NewTextPart(step.Text))
	}

	return &ai.ModelResponse{
		Request:      req,
		FinishReason: ai.FinishReasonStop,
		Message: &ai.Message{
			Role:    ai.RoleModel,
			Content: parts,
		},
	}, nil
}
