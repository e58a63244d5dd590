package engine

import (
	"chesskernel/position"
)

type scoredMove struct {
	move  position.Move
	score int32
}

// moveHeap is one scratch buffer shared by every node of a thread. A node
// appends its moves at the end and truncates back to where it started when
// it leaves, so a parent finds the buffer as it left it after each child.
type moveHeap struct {
	moves []scoredMove
}

func newMoveHeap() moveHeap {
	return moveHeap{moves: make([]scoredMove, 0, 64*MaxPly)}
}

func (h *moveHeap) top() int { return len(h.moves) }

// truncate drops everything above base.
func (h *moveHeap) truncate(base int) { h.moves = h.moves[:base] }

// push appends moves with a zero score.
func (h *moveHeap) push(moves []position.Move) {
	for _, m := range moves {
		h.moves = append(h.moves, scoredMove{move: m})
	}
}

// pickBest moves the highest scored entry of [from, to) to from and returns it.
func (h *moveHeap) pickBest(from, to int) scoredMove {
	best := from
	for i := from + 1; i < to; i++ {
		if h.moves[i].score > h.moves[best].score {
			best = i
		}
	}
	h.moves[from], h.moves[best] = h.moves[best], h.moves[from]
	return h.moves[from]
}

// Most Valuable Victim - Least Valuable Aggressor; used to break SEE ties
var mvvLva = [7][7]int32{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// captureScore orders captures and promotions: SEE first, MVV/LVA inside
// equal exchanges. The SEE sign survives so GainingCapture can split on it.
func captureScore(p *position.Position, m position.Move) int32 {
	see := SEE(p, m)
	victim := m.Captured()
	if m.IsEnPassant() {
		victim = position.Pawn
	}
	return see*64 + mvvLva[victim][m.Moved()]
}
