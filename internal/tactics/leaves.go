package tactics

import (
	"fmt"

	"github.com/roach88/tactica/internal/pred"
)

type leaf = pred.Pred[*Actor, *Cell]

// IsMovable holds when the cell is within the actor's move budget.
var IsMovable leaf = pred.Named[*Actor, *Cell]("movable", pred.Func[*Actor, *Cell](func(a *Actor, c *Cell) bool {
	return Manhattan(a.Pos, c.Pos) <= a.MaxMove
}))

// IsAlive holds when the actor has hit points left.
var IsAlive leaf = pred.Named[*Actor, *Cell]("alive", pred.Func[*Actor, *Cell](func(a *Actor, _ *Cell) bool {
	return a.HP > 0
}))

// IsWalkable holds when the cell is not blocked.
var IsWalkable leaf = pred.Named[*Actor, *Cell]("walkable", pred.Func[*Actor, *Cell](func(_ *Actor, c *Cell) bool {
	return c.Walkable
}))

// IsVacant holds when nobody else stands on the cell. The actor's own cell
// counts as vacant.
var IsVacant leaf = pred.Named[*Actor, *Cell]("vacant", pred.Func[*Actor, *Cell](func(a *Actor, c *Cell) bool {
	return c.Occupant == "" || c.Occupant == a.ID
}))

// InAttackRange holds when the cell is within the actor's attack range.
var InAttackRange leaf = pred.Named[*Actor, *Cell]("in_attack_range", pred.Func[*Actor, *Cell](func(a *Actor, c *Cell) bool {
	return Manhattan(a.Pos, c.Pos) <= a.AttackRange
}))

// WithinDistance holds when the cell is at most Max steps away.
type WithinDistance struct {
	Max int
}

func (w WithinDistance) Test(a *Actor, c *Cell) bool {
	return Manhattan(a.Pos, c.Pos) <= w.Max
}

func (w WithinDistance) String() string {
	return fmt.Sprintf("within(%d)", w.Max)
}

// OnTeam holds when the actor belongs to Team.
type OnTeam struct {
	Team string
}

func (o OnTeam) Test(a *Actor, _ *Cell) bool {
	return a.Team == o.Team
}

func (o OnTeam) String() string {
	return fmt.Sprintf("on_team(%s)", o.Team)
}

// HostileOccupant holds when the cell is occupied by a living actor of a
// different team. It looks occupants up on Board.
type HostileOccupant struct {
	Board *Board
}

func (h HostileOccupant) Test(a *Actor, c *Cell) bool {
	if c.Occupant == "" || c.Occupant == a.ID {
		return false
	}
	other, ok := h.Board.Actor(c.Occupant)
	if !ok {
		return false
	}
	return other.HP > 0 && other.Team != a.Team
}

func (HostileOccupant) String() string {
	return "hostile"
}
