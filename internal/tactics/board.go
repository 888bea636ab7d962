package tactics

import (
	"errors"
	"fmt"

	"github.com/roach88/tactica/internal/pred"
)

// Board errors. Use errors.Is to match; returned errors carry the position
// or actor id.
var (
	ErrOutOfBounds    = errors.New("position out of bounds")
	ErrBlocked        = errors.New("cell is blocked")
	ErrOccupied       = errors.New("cell is occupied")
	ErrDuplicateActor = errors.New("duplicate actor id")
	ErrUnknownActor   = errors.New("unknown actor")
	ErrIllegalMove    = errors.New("move rejected by rule")
)

// Actor is a unit on the board.
type Actor struct {
	ID          string `yaml:"id"`
	Team        string `yaml:"team,omitempty"`
	Pos         Vec2   `yaml:"pos"`
	MaxMove     int    `yaml:"max_move"`
	HP          int    `yaml:"hp"`
	Damage      int    `yaml:"damage,omitempty"`
	AttackRange int    `yaml:"attack_range,omitempty"`
}

// Cell is one board square. Occupant holds the id of the actor standing on
// it, or "" when empty.
type Cell struct {
	Pos      Vec2
	Walkable bool
	Occupant string
}

// Board is a width x height grid with cells from (0,0) to (width-1,height-1).
//
// A Board is built single-threaded. Once built, any number of goroutines may
// evaluate predicates against it concurrently as long as nobody calls Block,
// Place or Move at the same time.
type Board struct {
	width, height int
	cells         []Cell // row-major
	actors        map[string]*Actor
	order         []string
	walkable      []Vec2
}

// NewBoard creates a board with every cell walkable and empty.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("board size must be positive, got %dx%d", width, height)
	}
	b := &Board{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		actors: make(map[string]*Actor),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.cells[y*width+x] = Cell{Pos: Vec2{X: x, Y: y}, Walkable: true}
		}
	}
	b.precomputeWalkable()
	return b, nil
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// In reports whether p lies on the board.
func (b *Board) In(p Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.width && p.Y < b.height
}

// Cell returns the cell at p.
func (b *Board) Cell(p Vec2) (*Cell, bool) {
	if !b.In(p) {
		return nil, false
	}
	return &b.cells[p.Y*b.width+p.X], true
}

// Block marks p as not walkable.
func (b *Board) Block(p Vec2) error {
	c, ok := b.Cell(p)
	if !ok {
		return fmt.Errorf("block %s: %w", p, ErrOutOfBounds)
	}
	if c.Occupant != "" {
		return fmt.Errorf("block %s: %w by %q", p, ErrOccupied, c.Occupant)
	}
	c.Walkable = false
	b.precomputeWalkable()
	return nil
}

// Place puts a on the board at a.Pos. The board keeps the pointer.
func (b *Board) Place(a *Actor) error {
	if a.ID == "" {
		return fmt.Errorf("place: actor id is required")
	}
	if _, dup := b.actors[a.ID]; dup {
		return fmt.Errorf("place %q: %w", a.ID, ErrDuplicateActor)
	}
	c, ok := b.Cell(a.Pos)
	if !ok {
		return fmt.Errorf("place %q at %s: %w", a.ID, a.Pos, ErrOutOfBounds)
	}
	if !c.Walkable {
		return fmt.Errorf("place %q at %s: %w", a.ID, a.Pos, ErrBlocked)
	}
	if c.Occupant != "" {
		return fmt.Errorf("place %q at %s: %w by %q", a.ID, a.Pos, ErrOccupied, c.Occupant)
	}
	c.Occupant = a.ID
	b.actors[a.ID] = a
	b.order = append(b.order, a.ID)
	return nil
}

// Actor returns the actor with the given id.
func (b *Board) Actor(id string) (*Actor, bool) {
	a, ok := b.actors[id]
	return a, ok
}

// Actors returns the placed actors in placement order.
func (b *Board) Actors() []*Actor {
	out := make([]*Actor, len(b.order))
	for i, id := range b.order {
		out[i] = b.actors[id]
	}
	return out
}

// Walkable returns every walkable position in row-major order. The list is
// recomputed when cells are blocked, not on each call.
func (b *Board) Walkable() []Vec2 {
	out := make([]Vec2, len(b.walkable))
	copy(out, b.walkable)
	return out
}

func (b *Board) precomputeWalkable() {
	b.walkable = b.walkable[:0]
	for i := range b.cells {
		if b.cells[i].Walkable {
			b.walkable = append(b.walkable, b.cells[i].Pos)
		}
	}
}

// Move relocates actor id to `to` when rule passes for (actor, cell at to).
func (b *Board) Move(id string, to Vec2, rule pred.Pred[*Actor, *Cell]) error {
	a, ok := b.actors[id]
	if !ok {
		return fmt.Errorf("move %q: %w", id, ErrUnknownActor)
	}
	dst, ok := b.Cell(to)
	if !ok {
		return fmt.Errorf("move %q to %s: %w", id, to, ErrOutOfBounds)
	}
	if !rule.Test(a, dst) {
		return fmt.Errorf("move %q to %s: %w", id, to, ErrIllegalMove)
	}
	if dst.Occupant != "" && dst.Occupant != id {
		return fmt.Errorf("move %q to %s: %w by %q", id, to, ErrOccupied, dst.Occupant)
	}
	src, _ := b.Cell(a.Pos)
	src.Occupant = ""
	dst.Occupant = id
	a.Pos = to
	return nil
}
