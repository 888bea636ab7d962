package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Filter narrows ReadEvaluations. Zero fields match everything; Limit <= 0
// means no limit.
type Filter struct {
	Rule  string
	Actor string
	Limit int
}

// StoredRule is a row of the rules table.
type StoredRule struct {
	Hash string
	Name string
	Body string
}

// ReadEvaluations returns evaluations matching f in seq order. It returns
// an empty slice, not nil, when nothing matches.
func (s *Store) ReadEvaluations(ctx context.Context, f Filter) ([]Evaluation, error) {
	query := `
		SELECT id, seq, rule_hash, rule_name, actor_id, x, y, result, steps, created_at
		FROM evaluations`
	var (
		where []string
		args  []any
	)
	if f.Rule != "" {
		where = append(where, "rule_name = ?")
		args = append(args, f.Rule)
	}
	if f.Actor != "" {
		where = append(where, "actor_id = ?")
		args = append(args, f.Actor)
	}
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY seq ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += "\n\t\tLIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

// ReadEvaluation retrieves a single evaluation by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEvaluation(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, rule_hash, rule_name, actor_id, x, y, result, steps, created_at
		FROM evaluations
		WHERE id = ?
	`, id)
	return scanEvaluation(row)
}

// ReadRule retrieves a stored rule by hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRule(ctx context.Context, hash string) (StoredRule, error) {
	var r StoredRule
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, name, body FROM rules WHERE hash = ?
	`, hash).Scan(&r.Hash, &r.Name, &r.Body)
	if err != nil {
		return StoredRule{}, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (Evaluation, error) {
	var (
		e     Evaluation
		steps string
	)
	err := row.Scan(&e.ID, &e.Seq, &e.RuleHash, &e.RuleName, &e.ActorID, &e.X, &e.Y, &e.Result, &steps, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return Evaluation{}, err
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &e.Steps); err != nil {
		return Evaluation{}, fmt.Errorf("scan evaluation %s: steps: %w", e.ID, err)
	}
	if len(e.Steps) == 0 {
		e.Steps = nil
	}
	return e, nil
}
