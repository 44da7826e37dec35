package chat

import (
	"errors"
	"fmt"
)

// ModelError reports a failed model call during response generation. It
// carries which round failed and whether it was the final synthesis call,
// so presentation layers can decide how to phrase the failure without
// parsing strings.
type ModelError struct {
	// Round is the orchestration round that failed, 1-based.
	Round int
	// Final is true when the failure happened on the tool-free synthesis
	// call after the round budget was spent.
	Final bool
	// Err is the underlying model or transport error.
	Err error
}

func (e *ModelError) Error() string {
	if e.Final {
		return fmt.Sprintf("final model call failed: %v", e.Err)
	}
	return fmt.Sprintf("model call failed in round %d: %v", e.Round, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Apology renders a user-facing sentence for a generation failure. It is
// the presentation-layer counterpart to ModelError: orchestration returns
// structured errors, callers that talk to end users format them here.
func Apology(err error) string {
	var me *ModelError
	if errors.As(err, &me) && me.Final {
		return fmt.Sprintf("I apologize, but I encountered a technical issue while providing my final response: %v", me.Err)
	}
	cause := err
	if me != nil {
		cause = me.Err
	}
	return fmt.Sprintf("I apologize, but I encountered a technical issue while processing your request: %v", cause)
}
