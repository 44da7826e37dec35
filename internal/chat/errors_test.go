package chat

import (
	"errors"
	"fmt"
	"testing"
)

func TestModelError_Unwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("generating: %w", &ModelError{Round: 2, Err: cause})

	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatal("errors.As failed through wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is failed to reach the cause")
	}
}

func TestApology(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "mid-loop model error",
			err:  &ModelError{Round: 1, Err: errors.New("api key invalid")},
			want: "I apologize, but I encountered a technical issue while processing your request: api key invalid",
		},
		{
			name: "final synthesis error",
			err:  &ModelError{Round: 2, Final: true, Err: errors.New("overloaded")},
			want: "I apologize, but I encountered a technical issue while providing my final response: overloaded",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "I apologize, but I encountered a technical issue while processing your request: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apology(tt.err); got != tt.want {
				t.Errorf("Apology() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("429 Too Many Requests"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("503 Service Unavailable"), true},
		{errors.New("connection reset by peer"), true},
		{errors.New("api key invalid"), false},
		{errors.New("model not found"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := retryableError(tt.err); got != tt.want {
			t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
