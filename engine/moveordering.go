package engine

import (
	"chesskernel/position"
)

/*
	Move ordering is a resumable state machine per node. Cheap candidates that
	need no generation come first (hash move, killers, counter move); captures
	are split by the sign of their exchange so losing ones wait until all quiet
	heuristics had their turn; the rest of the quiets go last by history score.
	In check a separate, shorter sequence is used since the evasion generator
	already restricts the moves to the few that can matter.
*/

// Phase is a state of the move picker.
type Phase uint8

const (
	PhaseHashMove Phase = iota
	PhaseGenerateCaptures
	PhaseGainingCapture
	PhaseKiller1
	PhaseKiller2
	PhaseCounterMove
	PhaseKiller3
	PhaseGenerateRest
	PhaseLosingCapture
	PhaseHistoryMoves

	PhaseEvasionHash
	PhaseGenerateEvasions
	PhaseEvasions

	PhaseDone
)

var phaseNames = [...]string{
	PhaseHashMove:         "hash-move",
	PhaseGenerateCaptures: "generate-captures",
	PhaseGainingCapture:   "gaining-capture",
	PhaseKiller1:          "killer1",
	PhaseKiller2:          "killer2",
	PhaseCounterMove:      "counter-move",
	PhaseKiller3:          "killer3",
	PhaseGenerateRest:     "generate-rest",
	PhaseLosingCapture:    "losing-capture",
	PhaseHistoryMoves:     "history-moves",
	PhaseEvasionHash:      "evasion-hash",
	PhaseGenerateEvasions: "generate-evasions",
	PhaseEvasions:         "evasions",
	PhaseDone:             "done",
}

func (ph Phase) String() string {
	if int(ph) < len(phaseNames) {
		return phaseNames[ph]
	}
	return "unknown"
}

// MovePicker yields the pseudo-legal moves of one node in search order.
// Legality is left to the caller (make the move, test LastMoveIllegal).
type MovePicker struct {
	pos     *position.Position
	heap    *moveHeap
	history *historyTable
	side    position.Color

	phase Phase
	// Phase that produced the move last returned by Next.
	current Phase

	hashMove position.Move
	special  [5]position.Move // hash, killers and counter, once yielded
	nSpecial int
	killer1  position.Move
	killer2  position.Move
	killer3  position.Move
	counter  position.Move

	// Heap layout: captures in [base, capEnd), quiets in [capEnd, quietEnd).
	base      int
	cursor    int
	capEnd    int
	quietNext int
	quietEnd  int
}

// Init prepares the picker for the position p at ply. The killer, counter and
// history sources come from sc; hashMove may be NoMove.
func (mp *MovePicker) Init(p *position.Position, sc *SearchContext, ply int, hashMove position.Move) {
	*mp = MovePicker{
		pos:      p,
		heap:     &sc.heap,
		history:  &sc.history,
		side:     p.SideToMove(),
		hashMove: hashMove,
		base:     sc.heap.top(),
	}
	if p.InCheck() {
		mp.phase = PhaseEvasionHash
		return
	}
	mp.phase = PhaseHashMove
	mp.killer1, mp.killer2, mp.killer3 = sc.killers.killers(ply)
	mp.counter = sc.counters.lookup(mp.side, p.LastMove())
}

// Phase returns the phase of the move last returned by Next.
func (mp *MovePicker) Phase() Phase { return mp.current }

// Release gives the picker's heap segment back.
func (mp *MovePicker) Release() { mp.heap.truncate(mp.base) }

func (mp *MovePicker) yielded(m position.Move) bool {
	for i := 0; i < mp.nSpecial; i++ {
		if mp.special[i].Same(m) {
			return true
		}
	}
	return false
}

// trySpecial validates a move that did not come from this node's generator.
func (mp *MovePicker) trySpecial(m position.Move, quietOnly bool) (position.Move, bool) {
	if m == position.NoMove || mp.yielded(m) {
		return position.NoMove, false
	}
	g, ok := mp.pos.PseudoLegal(m)
	if !ok || (quietOnly && !g.IsQuiet()) {
		return position.NoMove, false
	}
	mp.special[mp.nSpecial] = g
	mp.nSpecial++
	return g, true
}

// Next returns the next move, or NoMove when the node is exhausted.
func (mp *MovePicker) Next() position.Move {
	for {
		mp.current = mp.phase
		switch mp.phase {
		case PhaseHashMove:
			mp.phase = PhaseGenerateCaptures
			if m, ok := mp.trySpecial(mp.hashMove, false); ok {
				return m.Hashed()
			}

		case PhaseGenerateCaptures:
			var buf [128]position.Move
			mp.heap.push(mp.pos.GenerateCaptures(buf[:0]))
			mp.capEnd = mp.heap.top()
			mp.cursor = mp.base
			for i := mp.base; i < mp.capEnd; i++ {
				mp.heap.moves[i].score = captureScore(mp.pos, mp.heap.moves[i].move)
			}
			mp.phase = PhaseGainingCapture

		case PhaseGainingCapture:
			if mp.cursor >= mp.capEnd {
				mp.phase = PhaseKiller1
				continue
			}
			sm := mp.heap.pickBest(mp.cursor, mp.capEnd)
			if sm.score < 0 {
				mp.phase = PhaseKiller1
				continue
			}
			mp.cursor++
			if mp.yielded(sm.move) {
				continue
			}
			return sm.move

		case PhaseKiller1:
			mp.phase = PhaseKiller2
			if m, ok := mp.trySpecial(mp.killer1, true); ok {
				return m
			}

		case PhaseKiller2:
			mp.phase = PhaseCounterMove
			if m, ok := mp.trySpecial(mp.killer2, true); ok {
				return m
			}

		case PhaseCounterMove:
			mp.phase = PhaseKiller3
			if m, ok := mp.trySpecial(mp.counter, true); ok {
				return m
			}

		case PhaseKiller3:
			mp.phase = PhaseGenerateRest
			if m, ok := mp.trySpecial(mp.killer3, true); ok {
				return m
			}

		case PhaseGenerateRest:
			var buf [256]position.Move
			mp.heap.truncate(mp.capEnd)
			mp.heap.push(mp.pos.GenerateQuiets(buf[:0]))
			mp.quietNext, mp.quietEnd = mp.capEnd, mp.heap.top()
			for i := mp.quietNext; i < mp.quietEnd; i++ {
				mp.heap.moves[i].score = mp.history.score(mp.side, mp.heap.moves[i].move)
			}
			mp.phase = PhaseLosingCapture

		case PhaseLosingCapture:
			if mp.cursor >= mp.capEnd {
				mp.phase = PhaseHistoryMoves
				continue
			}
			sm := mp.heap.pickBest(mp.cursor, mp.capEnd)
			mp.cursor++
			if mp.yielded(sm.move) {
				continue
			}
			return sm.move

		case PhaseHistoryMoves:
			if mp.quietNext >= mp.quietEnd {
				mp.phase = PhaseDone
				continue
			}
			sm := mp.heap.pickBest(mp.quietNext, mp.quietEnd)
			mp.quietNext++
			if mp.yielded(sm.move) {
				continue
			}
			return sm.move

		case PhaseEvasionHash:
			mp.phase = PhaseGenerateEvasions
			if m, ok := mp.trySpecial(mp.hashMove, false); ok {
				return m.Hashed()
			}

		case PhaseGenerateEvasions:
			var buf [128]position.Move
			mp.heap.push(mp.pos.GenerateEvasions(buf[:0]))
			mp.cursor, mp.capEnd = mp.base, mp.heap.top()
			for i := mp.base; i < mp.capEnd; i++ {
				m := mp.heap.moves[i].move
				if m.IsQuiet() {
					mp.heap.moves[i].score = mp.history.score(mp.side, m) - historyMaxVal
				} else {
					mp.heap.moves[i].score = captureScore(mp.pos, m)
				}
			}
			mp.phase = PhaseEvasions

		case PhaseEvasions:
			if mp.cursor >= mp.capEnd {
				mp.phase = PhaseDone
				continue
			}
			sm := mp.heap.pickBest(mp.cursor, mp.capEnd)
			mp.cursor++
			if mp.yielded(sm.move) {
				continue
			}
			return sm.move

		default:
			mp.current = PhaseDone
			return position.NoMove
		}
	}
}
