package harness

import "github.com/roach88/agentboard/internal/leaderboard"

// TraceEvent records one executed step and everything it caused.
type TraceEvent struct {
	Step      int      `json:"step"`
	Op        string   `json:"op"`
	At        string   `json:"at"`
	Agent     string   `json:"agent,omitempty"`
	Item      string   `json:"item,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	Awarded   []string `json:"awarded,omitempty"`
	Resolved  []string `json:"resolved,omitempty"`
	Raised    []string `json:"raised,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: no unexpected step errors and every
	// expectation met.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Leaderboard is the final ranking.
	Leaderboard []leaderboard.Entry `json:"leaderboard"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
