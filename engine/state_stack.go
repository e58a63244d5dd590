package engine

import (
	"time"

	"chesskernel/position"
)

// nodeStatus is the per-ply state of the recursive search.
type nodeStatus struct {
	picker   MovePicker
	pv       PVLine
	deferred []position.Move
}

// rootMove is one entry of the root move list, kept in search order.
type rootMove struct {
	move  position.Move
	score int32
	nodes uint64
}

// SearchContext is everything one search thread owns: its position, the
// per-ply status stack, the quiet move heuristics and the move heap. Nothing
// in it is shared; the shared tables are reached through the engine.
type SearchContext struct {
	id  int
	pos *position.Position
	eng *Engine
	ctl *searchControl

	status   [MaxPly + 1]nodeStatus
	heap     moveHeap
	killers  killerTable
	history  historyTable
	counters counterTable

	rootMoves []rootMove
	rootDepth int // plies of the running iteration
	selDepth  int
	maxPos    int32

	stats     SearchStats
	nextCheck uint64
	lastCheck uint64
}

// NewSearchContext builds a context searching pos, which it takes ownership of.
func NewSearchContext(id int, pos *position.Position, eng *Engine, ctl *searchControl) *SearchContext {
	sc := &SearchContext{
		id:     id,
		pos:    pos,
		eng:    eng,
		ctl:    ctl,
		heap:   newMoveHeap(),
		maxPos: eng.cfg.MaxPosInitial,
	}
	for i := range sc.status {
		sc.status[i].pv.Moves = make([]position.Move, 0, 16)
	}
	sc.nextCheck = initialCheckInterval
	return sc
}

// Stats returns the counters collected so far.
func (sc *SearchContext) Stats() SearchStats { return sc.stats }

// newIteration resets what must not leak from one iteration into the next.
func (sc *SearchContext) newIteration(depth int) {
	sc.rootDepth = depth
	sc.selDepth = 0
	sc.killers.clearFrom(2)
}

const (
	initialCheckInterval = 1 << 10
	maxCheckInterval     = 1 << 20
	checksPerSecond      = 10
)

// aborted polls the stop conditions every few nodes. The polling interval is
// tuned from the observed node rate to about ten checks per second.
func (sc *SearchContext) aborted() bool {
	if sc.ctl.stop.Load() {
		return true
	}
	if sc.stats.Nodes < sc.nextCheck {
		return false
	}
	sc.ctl.nodes.Add(sc.stats.Nodes - sc.lastCheck)
	sc.lastCheck = sc.stats.Nodes

	elapsed := sc.ctl.tm.Elapsed()
	interval := uint64(initialCheckInterval)
	if elapsed > 0 {
		nps := float64(sc.stats.Nodes) / elapsed.Seconds()
		interval = Clamp(uint64(nps/checksPerSecond), initialCheckInterval, maxCheckInterval)
	}
	sc.nextCheck = sc.stats.Nodes + interval

	if sc.ctl.shouldStop(time.Now()) {
		sc.ctl.stop.Store(true)
		return true
	}
	return false
}

// staticEval asks the evaluator and recalibrates MaxPos from the gap between
// evaluation and material.
func (sc *SearchContext) staticEval() int32 {
	eval := sc.eng.eval.Evaluate(sc.pos)
	gap := Abs(eval - sc.pos.MaterialBalance())
	if gap > sc.maxPos {
		sc.maxPos = Min(gap, sc.eng.cfg.MaxPosCeiling)
	}
	return eval
}
