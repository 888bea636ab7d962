package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tactica/internal/tactics"
)

// ReachOptions holds flags for the reach command.
type ReachOptions struct {
	*RootOptions
	Rule    string
	Actor   string
	Workers int
}

// ReachOutput is the JSON form of a reach set.
type ReachOutput struct {
	Rule  string         `json:"rule"`
	Actor string         `json:"actor"`
	Cells []tactics.Vec2 `json:"cells"`
}

// NewReachCommand creates the reach command.
func NewReachCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReachOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reach <scenario>",
		Short: "Show every cell a rule accepts for an actor",
		Long: `Evaluate a rule for one actor on every cell of the scenario board.

Rows are evaluated concurrently. Text output draws the board:
  @  the actor
  #  blocked cell
  a  first letter of another actor's id
  *  cell accepted by the rule
  .  anything else

Examples:
  tactica reach ./scenarios/move_basic.yaml --rule can_move --actor scout
  tactica reach ./scenarios/move_basic.yaml --rule can_move --actor hero --workers 8 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReach(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rule, "rule", "", "rule name (required)")
	_ = cmd.MarkFlagRequired("rule")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "actor id (required)")
	_ = cmd.MarkFlagRequired("actor")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent row workers (default TACTICA_WORKERS)")

	return cmd
}

func runReach(opts *ReachOptions, scenarioPath string, cmd *cobra.Command) error {
	env, err := loadEnv(scenarioPath)
	if err != nil {
		return err
	}
	prog, actor, err := lookup(env, opts.Rule, opts.Actor)
	if err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = opts.Config.Workers
	}

	cells, err := tactics.Reachable(cmd.Context(), env.Board, actor, prog.Pred(), workers)
	if err != nil {
		return WrapExitError(ExitCommandError, "reachability failed", err)
	}
	if cells == nil {
		cells = []tactics.Vec2{}
	}

	formatter := opts.formatter(cmd)
	if formatter.JSON() {
		return formatter.Success(ReachOutput{Rule: opts.Rule, Actor: actor.ID, Cells: cells})
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, tactics.Render(env.Board, actor, cells))
	fmt.Fprintf(w, "%d cell(s) accepted by %s for %s\n", len(cells), opts.Rule, actor.ID)
	return nil
}
