package tactics

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tactica/internal/pred"
)

// Reachable returns every cell for which p holds with a as target, in
// row-major order. Rows are evaluated on up to workers goroutines; the board
// must not be mutated until Reachable returns.
func Reachable(ctx context.Context, b *Board, a *Actor, p pred.Pred[*Actor, *Cell], workers int) ([]Vec2, error) {
	if workers < 1 {
		workers = 1
	}

	rows := make([][]Vec2, b.height)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < b.height; y++ {
		y := y // per-iteration copy (go1.22 loopvar semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := b.cells[y*b.width : (y+1)*b.width]
			for i := range row {
				if p.Test(a, &row[i]) {
					rows[y] = append(rows[y], row[i].Pos)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Vec2
	for _, r := range rows {
		out = append(out, r...)
	}
	slog.Debug("reachability computed",
		"actor", a.ID,
		"rule", pred.Describe(p),
		"cells", len(out),
		"workers", workers,
	)
	return out, nil
}

// Render draws the board one row per line:
//
//	@  the actor
//	#  blocked cell
//	*  marked cell
//	.  anything else
//
// Other actors are drawn with the first letter of their id.
func Render(b *Board, a *Actor, marked []Vec2) string {
	hit := make(map[Vec2]bool, len(marked))
	for _, p := range marked {
		hit[p] = true
	}

	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := &b.cells[y*b.width+x]
			switch {
			case a != nil && c.Pos == a.Pos:
				sb.WriteByte('@')
			case !c.Walkable:
				sb.WriteByte('#')
			case c.Occupant != "":
				sb.WriteByte(c.Occupant[0])
			case hit[c.Pos]:
				sb.WriteByte('*')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
