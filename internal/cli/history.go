package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/tactica/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Rule     string
	Actor    string
	Limit    int
}

// HistoryResult holds the queried evaluations.
type HistoryResult struct {
	Evaluations []store.Evaluation `json:"evaluations"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the evaluation log",
		Long: `List recorded evaluations in seq order.

Evaluations are recorded by "tactica eval --db". Filter by rule name or
actor id; --limit keeps only the first N matches.

Examples:
  tactica history --db ./evals.db
  tactica history --db ./evals.db --rule can_move --actor hero --limit 10
  TACTICA_DB=./evals.db tactica history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default TACTICA_DB)")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "filter by rule name")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "filter by actor id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of evaluations (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.Config.DB
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set TACTICA_DB")
	}
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(dbPath); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(dbPath, store.WithLogger(opts.logger()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	evals, err := st.ReadEvaluations(cmd.Context(), store.Filter{Rule: opts.Rule, Actor: opts.Actor, Limit: opts.Limit})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read evaluations", err)
	}

	formatter := opts.formatter(cmd)
	if formatter.JSON() {
		return formatter.Success(HistoryResult{Evaluations: evals})
	}

	w := cmd.OutOrStdout()
	if len(evals) == 0 {
		fmt.Fprintln(w, "No evaluations found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRULE\tACTOR\tCELL\tRESULT\tID")
	for _, e := range evals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t(%d,%d)\t%t\t%s\n", e.Seq, e.RuleName, e.ActorID, e.X, e.Y, e.Result, e.ID)
	}
	return tw.Flush()
}
