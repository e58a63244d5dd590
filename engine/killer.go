package engine

import (
	"chesskernel/position"
)

// killerSlot keeps the two quiet moves that most recently refuted a sibling
// at one ply, with hit counts. A second killer overtaking the first in hits
// is promoted into slot one.
type killerSlot struct {
	moves [2]position.Move
	hits  [2]int
}

type killerTable [MaxPly + 2]killerSlot

// insert records a cutoff by the quiet move m at ply.
func (k *killerTable) insert(m position.Move, ply int) {
	s := &k[ply]
	switch {
	case s.moves[0].Same(m):
		s.hits[0]++
	case s.moves[1].Same(m):
		s.hits[1]++
	default:
		s.moves[1] = m
		s.hits[1] = 1
	}
	if s.hits[1] > s.hits[0] {
		s.moves[0], s.moves[1] = s.moves[1], s.moves[0]
		s.hits[0], s.hits[1] = s.hits[1], s.hits[0]
	}
}

// killers returns the two killers at ply and the first killer two plies up.
func (k *killerTable) killers(ply int) (k1, k2, k3 position.Move) {
	k1, k2 = k[ply].moves[0], k[ply].moves[1]
	if ply >= 2 {
		k3 = k[ply-2].moves[0]
	}
	return k1, k2, k3
}

// clearFrom wipes the slots at ply and deeper; the root driver calls it
// between iterations for the plies below the root.
func (k *killerTable) clearFrom(ply int) {
	for i := ply; i < len(k); i++ {
		k[i] = killerSlot{}
	}
}
