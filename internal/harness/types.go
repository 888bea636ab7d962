package harness

import (
	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/tactics"
)

// TraceEvent is one recorded check evaluation.
type TraceEvent struct {
	Seq    int64        `json:"seq"`
	ID     string       `json:"id"`
	Rule   string       `json:"rule"`
	Actor  string       `json:"actor"`
	Cell   tactics.Vec2 `json:"cell"`
	Result bool         `json:"result"`
	Steps  []expr.Step  `json:"steps"`
}

// ReachResult is the computed reach set for one reach entry.
type ReachResult struct {
	Rule  string         `json:"rule"`
	Actor string         `json:"actor"`
	Cells []tactics.Vec2 `json:"cells"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every check, reach entry and assertion held.
	Pass bool `json:"pass"`

	// Trace holds check evaluations in seq order.
	Trace []TraceEvent `json:"trace"`

	// Reach holds computed reach sets in scenario order.
	Reach []ReachResult `json:"reach,omitempty"`

	// Errors describes each failed expectation. Empty if Pass is true.
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

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
