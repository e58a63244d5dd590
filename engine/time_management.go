package engine

import (
	"time"

	"chesskernel/position"
)

// Limits bound a single Iterate call. Zero fields are unbounded; with no
// field set the search runs to Config.MaxDepth.
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration

	// Clock and increment per color; MovesToGo is the number of moves to
	// the next time control, zero for sudden death.
	Time      [2]time.Duration
	Increment [2]time.Duration
	MovesToGo int

	// Infinite ignores the clock; only ctx or a depth/node limit ends the search.
	Infinite bool
}

func (l Limits) clocked(side position.Color) bool {
	return !l.Infinite && (l.MoveTime > 0 || l.Time[side] > 0)
}

// TimeManager turns Limits into a soft deadline, checked between iterations,
// and a hard deadline, checked inside the search. The soft deadline can be
// pushed out once when the root fails low.
type TimeManager struct {
	start    time.Time
	soft     time.Time
	hard     time.Time
	timed    bool
	extended bool
}

const (
	overhead    = 30 * time.Millisecond // reserve for I/O jitter
	minMoveTime = 5 * time.Millisecond
	maxFrac     = 0.7 // never plan to spend more than this share of the clock
	panicThresh = time.Second
	panicFrac   = 0.9 // share of the increment used when the clock is low
	hardFactor  = 4   // hard deadline is this many soft budgets
)

// NewTimeManager plans the time for the side to move of p starting at now.
func NewTimeManager(l Limits, p *position.Position, now time.Time) *TimeManager {
	tm := &TimeManager{start: now}
	side := p.SideToMove()
	if !l.clocked(side) {
		return tm
	}
	tm.timed = true
	if l.MoveTime > 0 {
		tm.soft = now.Add(l.MoveTime)
		tm.hard = tm.soft
		return tm
	}

	rem, inc := l.Time[side], l.Increment[side]
	movesLeft := l.MovesToGo
	if movesLeft <= 0 {
		movesLeft = estimateMovesRemaining(GetPiecePhase(p))
	}

	var budget time.Duration
	switch {
	case inc > 0 && rem < panicThresh:
		budget = time.Duration(float64(inc) * panicFrac)
	default:
		budget = rem/time.Duration(movesLeft) + inc
	}
	ceiling := time.Duration(float64(rem) * maxFrac)
	budget = Clamp(budget, minMoveTime, Max(ceiling-overhead, minMoveTime))
	hard := Clamp(budget*hardFactor, minMoveTime, Max(ceiling-overhead, minMoveTime))

	tm.soft = now.Add(budget)
	tm.hard = now.Add(hard)
	return tm
}

// estimateMovesRemaining interpolates between 20 moves in the endgame and 45
// with all pieces on the board.
func estimateMovesRemaining(phase int) int {
	return (phase*25)/totalPhase + 20
}

// Elapsed returns the time since the search started.
func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.start) }

// SoftExpired reports whether another iteration should not be started.
func (tm *TimeManager) SoftExpired(now time.Time) bool {
	return tm.timed && !now.Before(tm.soft)
}

// HardExpired reports whether the running search must stop.
func (tm *TimeManager) HardExpired(now time.Time) bool {
	return tm.timed && !now.Before(tm.hard)
}

// Extend doubles the remaining soft budget, never past the hard deadline.
// Only the first call has any effect.
func (tm *TimeManager) Extend() bool {
	if !tm.timed || tm.extended {
		return false
	}
	tm.extended = true
	soft := tm.soft.Add(tm.soft.Sub(tm.start))
	if soft.After(tm.hard) {
		soft = tm.hard
	}
	tm.soft = soft
	return true
}
