package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/store"
	"github.com/roach88/tactica/internal/tactics"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Rule     string
	Actor    string
	Cell     string
	Explain  bool
	Database string
}

// EvalResult is the outcome of one rule evaluation.
type EvalResult struct {
	Rule   string       `json:"rule"`
	Actor  string       `json:"actor"`
	Cell   tactics.Vec2 `json:"cell"`
	Result bool         `json:"result"`
	Steps  []expr.Step  `json:"steps,omitempty"`

	// ID and Seq are set when the evaluation was recorded.
	ID  string `json:"id,omitempty"`
	Seq int64  `json:"seq,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <scenario>",
		Short: "Evaluate one rule for one actor on one cell",
		Long: `Evaluate a rule from a scenario's rule files against the scenario board.

With --explain, every leaf that ran is listed in evaluation order; leaves
skipped by short-circuiting are not shown. With --db (or TACTICA_DB) the
evaluation is appended to the evaluation log.

Examples:
  tactica eval ./scenarios/move_basic.yaml --rule can_move --actor hero --cell 3,2
  tactica eval ./scenarios/move_basic.yaml --rule can_move --actor hero --cell 1,1 --explain
  tactica eval ./scenarios/move_basic.yaml --rule can_move --actor hero --cell 3,2 --db ./evals.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rule, "rule", "", "rule name (required)")
	_ = cmd.MarkFlagRequired("rule")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "actor id (required)")
	_ = cmd.MarkFlagRequired("actor")
	cmd.Flags().StringVar(&opts.Cell, "cell", "", "target cell as x,y (required)")
	_ = cmd.MarkFlagRequired("cell")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "list the leaves that were evaluated")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the evaluation in this SQLite database")

	return cmd
}

func runEval(opts *EvalOptions, scenarioPath string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := opts.logger()
	formatter := opts.formatter(cmd)

	pos, err := tactics.ParseVec2(opts.Cell)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --cell", err)
	}

	env, err := loadEnv(scenarioPath)
	if err != nil {
		return err
	}
	prog, actor, err := lookup(env, opts.Rule, opts.Actor)
	if err != nil {
		return err
	}
	cell, ok := env.Board.Cell(pos)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("cell %s is off the %dx%d board", pos, env.Board.Width(), env.Board.Height()))
	}

	got, steps := prog.Explain(actor, cell)
	result := EvalResult{Rule: opts.Rule, Actor: actor.ID, Cell: pos, Result: got}
	if opts.Explain {
		result.Steps = steps
	}
	log.Debug("rule evaluated", "rule", opts.Rule, "actor", actor.ID, "cell", pos.String(), "result", got, "steps", len(steps))

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.Config.DB
	}
	if dbPath != "" {
		st, err := store.Open(dbPath, store.WithLogger(log))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		rec, err := store.NewRecorder(ctx, st)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create recorder", err)
		}
		rule, _ := env.Rules.Rule(opts.Rule)
		eval, err := rec.Record(ctx, rule, actor.ID, pos.X, pos.Y, got, steps)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record evaluation", err)
		}
		result.ID, result.Seq = eval.ID, eval.Seq
		formatter.VerboseLog("Recorded evaluation %s (seq %d) in %s", eval.ID, eval.Seq, dbPath)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputEvalText(cmd, result)
}

func outputEvalText(cmd *cobra.Command, result EvalResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s(%s, %s) = %t\n", result.Rule, result.Actor, result.Cell, result.Result)
	for _, st := range result.Steps {
		fmt.Fprintf(w, "  %s %s %s\n", mark(st.Result), st.Path, st.Label)
	}
	if result.ID != "" {
		fmt.Fprintf(w, "recorded %s (seq %d)\n", result.ID, result.Seq)
	}
	return nil
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
