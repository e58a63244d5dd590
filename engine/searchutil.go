package engine

import (
	"strings"

	"github.com/samber/lo"

	"chesskernel/position"
)

/*
HISTORY/COUNTER MOVES
If a quiet move raises alpha we credit it in the history table. If it causes a
beta cutoff we also remember it as the answer to the move that preceded it.
Both tables are indexed by side and the 12-bit (from,to) key of a move.
*/

const historyMaxVal = 1 << 16

type historyTable [2][4096]int32

// add credits m with depth² (depth in plies) and halves the side's table
// once an entry overflows.
func (h *historyTable) add(c position.Color, m position.Move, depth int) {
	plies := int32(Max(depth/OnePly, 1))
	h[c][m.Key()] += plies * plies
	if h[c][m.Key()] >= historyMaxVal {
		for i := range h[c] {
			h[c][i] /= 2
		}
	}
}

func (h *historyTable) score(c position.Color, m position.Move) int32 { return h[c][m.Key()] }

type counterTable [2][4096]position.Move

// store remembers reply as the refutation of prev for side c.
func (t *counterTable) store(c position.Color, prev, reply position.Move) {
	if prev == position.NoMove || prev.IsNull() {
		return
	}
	t[c][prev.Key()] = reply
}

func (t *counterTable) lookup(c position.Color, prev position.Move) position.Move {
	if prev == position.NoMove || prev.IsNull() {
		return position.NoMove
	}
	return t[c][prev.Key()]
}

// PVLine is a principal variation.
type PVLine struct {
	Moves []position.Move
}

// Clear empties the line and keeps its storage.
func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

// Update sets the line to m followed by child.
func (pv *PVLine) Update(m position.Move, child PVLine) {
	pv.Moves = append(append(pv.Moves[:0], m), child.Moves...)
}

// Clone returns a copy that does not share storage.
func (pv PVLine) Clone() PVLine {
	return PVLine{Moves: append([]position.Move(nil), pv.Moves...)}
}

// GetPVMove returns the first move of the line or NoMove.
func (pv PVLine) GetPVMove() position.Move {
	if len(pv.Moves) == 0 {
		return position.NoMove
	}
	return pv.Moves[0]
}

// String joins the moves in coordinate form.
func (pv PVLine) String() string {
	return strings.Join(lo.Map(pv.Moves, func(m position.Move, _ int) string { return m.String() }), " ")
}
