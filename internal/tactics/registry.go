package tactics

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/pred"
)

// Leaves returns the leaf registry for rule files.
//
//	movable, alive, walkable, vacant, in_attack_range
//	within   {max: int}
//	on_team  {team: string}
//	hostile  (only when b is non-nil)
func Leaves(b *Board) *expr.Registry[*Actor, *Cell] {
	r := expr.NewRegistry[*Actor, *Cell]().
		Register("movable", expr.Static(IsMovable)).
		Register("alive", expr.Static(IsAlive)).
		Register("walkable", expr.Static(IsWalkable)).
		Register("vacant", expr.Static(IsVacant)).
		Register("in_attack_range", expr.Static(InAttackRange)).
		Register("within", func(args map[string]any) (pred.Pred[*Actor, *Cell], error) {
			n, err := expr.IntArg(args, "max")
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("max must not be negative, got %d", n)
			}
			return WithinDistance{Max: n}, nil
		}).
		Register("on_team", func(args map[string]any) (pred.Pred[*Actor, *Cell], error) {
			team, err := expr.StringArg(args, "team")
			if err != nil {
				return nil, err
			}
			return OnTeam{Team: team}, nil
		})
	if b != nil {
		r.Register("hostile", expr.Static[*Actor, *Cell](HostileOccupant{Board: b}))
	}
	return r
}

// CELBinding returns the CEL environment for cel nodes. Expressions see two
// maps, actor and cell (see Activation), and a manhattan(x1, y1, x2, y2)
// function.
func CELBinding() (*expr.CELBinding[*Actor, *Cell], error) {
	env, err := cel.NewEnv(
		cel.Variable("actor", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("cell", cel.MapType(cel.StringType, cel.DynType)),
		cel.Function("manhattan",
			cel.Overload("manhattan_int_int_int_int",
				[]*cel.Type{cel.IntType, cel.IntType, cel.IntType, cel.IntType},
				cel.IntType,
				cel.FunctionBinding(manhattanBinding),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build cel env: %w", err)
	}
	return &expr.CELBinding[*Actor, *Cell]{Env: env, Activation: Activation}, nil
}

func manhattanBinding(args ...ref.Val) ref.Val {
	var xy [4]int
	for i, arg := range args {
		n, ok := arg.(types.Int)
		if !ok {
			return types.NewErr("manhattan: argument %d is %s, want int", i, arg.Type().TypeName())
		}
		xy[i] = int(n)
	}
	return types.Int(Manhattan(Vec2{X: xy[0], Y: xy[1]}, Vec2{X: xy[2], Y: xy[3]}))
}

// Activation exposes an (actor, cell) pair to CEL:
//
//	actor: id, team, x, y, max_move, hp, damage, attack_range
//	cell:  x, y, walkable, occupant, occupied
func Activation(a *Actor, c *Cell) map[string]any {
	return map[string]any{
		"actor": map[string]any{
			"id":           a.ID,
			"team":         a.Team,
			"x":            a.Pos.X,
			"y":            a.Pos.Y,
			"max_move":     a.MaxMove,
			"hp":           a.HP,
			"damage":       a.Damage,
			"attack_range": a.AttackRange,
		},
		"cell": map[string]any{
			"x":        c.Pos.X,
			"y":        c.Pos.Y,
			"walkable": c.Walkable,
			"occupant": c.Occupant,
			"occupied": c.Occupant != "",
		},
	}
}
