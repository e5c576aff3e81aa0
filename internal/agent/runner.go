// Package agent defines the boundary to the AI backend the prompt
// submits to. The editing engine and UI only see this interface; the
// provider adapters behind it live outside the CLI.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quillcli/quill/internal/log"
)

// Runner executes a submitted prompt and returns the agent's response.
type Runner interface {
	// Run blocks until the response is ready or ctx is cancelled.
	Run(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend for the status bar.
	Name() string
}

// EchoRunner is the built-in backend used when no provider is
// configured. It answers locally so the CLI stays usable (and testable)
// without credentials.
type EchoRunner struct {
	// Delay simulates response latency. Zero answers immediately.
	Delay time.Duration
}

var _ Runner = (*EchoRunner)(nil)

// Run returns a canned response describing the prompt it received.
func (r *EchoRunner) Run(ctx context.Context, prompt string) (string, error) {
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	lines := len(strings.Split(prompt, "\n"))
	log.Debug(log.CatAgent, "Echo response", "promptLines", lines)
	return fmt.Sprintf("(echo) %s", prompt), nil
}

// Name returns the backend identifier.
func (r *EchoRunner) Name() string {
	return "echo"
}

// ForName returns the runner for a configured backend name. Unknown
// names fall back to echo rather than failing startup.
func ForName(name string) Runner {
	switch name {
	case "", "echo":
		return &EchoRunner{}
	default:
		log.Warn(log.CatAgent, "Unknown agent runner, using echo", "runner", name)
		return &EchoRunner{}
	}
}
