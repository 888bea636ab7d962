package store

import (
	"context"
	"fmt"

	"github.com/roach88/tactica/internal/canonical"
	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/rules"
)

// Evaluation is one recorded rule evaluation.
type Evaluation struct {
	ID        string      `json:"id"`
	Seq       int64       `json:"seq"`
	RuleHash  string      `json:"rule_hash"`
	RuleName  string      `json:"rule"`
	ActorID   string      `json:"actor"`
	X         int         `json:"x"`
	Y         int         `json:"y"`
	Result    bool        `json:"result"`
	Steps     []expr.Step `json:"steps,omitempty"`
	CreatedAt string      `json:"created_at"`
}

// WriteRule stores a rule definition. The body is the canonical JSON of the
// rule's expression. Writing a hash that already exists is a no-op, so the
// first name recorded for an expression is kept.
func (s *Store) WriteRule(ctx context.Context, r rules.Rule) error {
	if r.Hash == "" {
		return fmt.Errorf("write rule %q: hash is empty", r.Name)
	}
	body, err := canonical.Marshal(r.When.Canonical())
	if err != nil {
		return fmt.Errorf("write rule %q: %w", r.Name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules (hash, name, body)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, r.Hash, r.Name, string(body))
	if err != nil {
		return fmt.Errorf("write rule %q: %w", r.Name, err)
	}
	return nil
}

// WriteEvaluation inserts an evaluation. Duplicate ids are silently ignored.
// The referenced rule must already be stored.
func (s *Store) WriteEvaluation(ctx context.Context, e Evaluation) error {
	steps, err := marshalSteps(e.Steps)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
		(id, seq, rule_hash, rule_name, actor_id, x, y, result, steps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Seq,
		e.RuleHash,
		e.RuleName,
		e.ActorID,
		e.X,
		e.Y,
		e.Result,
		steps,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	s.log.Debug("evaluation recorded",
		"id", e.ID,
		"seq", e.Seq,
		"rule", e.RuleName,
		"actor", e.ActorID,
		"x", e.X,
		"y", e.Y,
		"result", e.Result,
	)
	return nil
}

func marshalSteps(steps []expr.Step) (string, error) {
	list := make([]any, len(steps))
	for i, st := range steps {
		list[i] = map[string]any{"path": st.Path, "label": st.Label, "result": st.Result}
	}
	data, err := canonical.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("marshal steps: %w", err)
	}
	return string(data), nil
}
