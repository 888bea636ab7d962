package cli

import (
	"fmt"

	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/harness"
	"github.com/roach88/tactica/internal/tactics"
)

// program is a rule compiled for tactics boards.
type program = expr.Program[*tactics.Actor, *tactics.Cell]

// loadEnv loads a scenario file and builds its board and rules.
func loadEnv(path string) (*harness.Env, error) {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	env, err := harness.Prepare(scenario)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to prepare scenario", err)
	}
	return env, nil
}

// lookup finds a compiled rule and a placed actor in env.
func lookup(env *harness.Env, rule, actorID string) (*program, *tactics.Actor, error) {
	prog, ok := env.Rules.Get(rule)
	if !ok {
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown rule %q (have %v)", rule, env.Rules.Names()))
	}
	actor, ok := env.Board.Actor(actorID)
	if !ok {
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown actor %q", actorID))
	}
	return prog, actor, nil
}
