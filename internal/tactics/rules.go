package tactics

import "github.com/roach88/tactica/internal/pred"

// MoveRule is the built-in movement rule: the cell is within move range, the
// actor is alive, and the cell is walkable and free.
func MoveRule() pred.Pred[*Actor, *Cell] {
	return pred.Start(IsMovable).
		And(IsAlive).
		AndGroup(func(g pred.Chain[*Actor, *Cell]) pred.Chain[*Actor, *Cell] {
			return g.And(IsWalkable).And(IsVacant)
		}).
		Build()
}

// AttackRule is the built-in attack rule: the actor is alive and the cell is
// in attack range and holds a living enemy on b.
func AttackRule(b *Board) pred.Pred[*Actor, *Cell] {
	return pred.Start(IsAlive).
		And(InAttackRange).
		And(HostileOccupant{Board: b}).
		Build()
}
