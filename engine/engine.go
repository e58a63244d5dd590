package engine

import (
	"errors"
	"sync/atomic"
	"time"

	"chesskernel/position"
)

// ErrNoLegalMoves is returned by Iterate for checkmate and stalemate positions.
var ErrNoLegalMoves = errors.New("no legal moves")

// Status tells how Iterate arrived at its result.
type Status uint8

const (
	StatusNormal Status = iota
	// StatusForced: only one legal move, no search was needed.
	StatusForced
	StatusStalemate
	StatusCheckmate
	// StatusBook: the move came from the opening book.
	StatusBook
)

func (s Status) String() string {
	switch s {
	case StatusForced:
		return "forced"
	case StatusStalemate:
		return "stalemate"
	case StatusCheckmate:
		return "checkmate"
	case StatusBook:
		return "book"
	}
	return "normal"
}

// Result is the outcome of one Iterate call.
type Result struct {
	Move    position.Move
	Score   int32
	Depth   int
	PV      PVLine
	Status  Status
	Aborted bool
	Elapsed time.Duration
	Stats   SearchStats
}

// Engine owns the shared tables and the collaborators. One Engine serves
// one game; Iterate calls must not overlap.
type Engine struct {
	cfg    Config
	tables *SharedTables
	eval   Evaluator
	tb     TablebaseProber
	book   BookProber
}

// New builds an engine with the default evaluator and no tablebase or book.
func New(opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()
	tables := NewSharedTables(cfg)
	return &Engine{
		cfg:    cfg,
		tables: tables,
		eval:   NewEvaluation(tables),
	}
}

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Tables returns the tables shared by all search threads.
func (e *Engine) Tables() *SharedTables { return e.tables }

// SetEvaluator replaces the static evaluation.
func (e *Engine) SetEvaluator(ev Evaluator) { e.eval = ev }

// SetTablebase installs a tablebase prober; nil removes it.
func (e *Engine) SetTablebase(tb TablebaseProber) { e.tb = tb }

// SetBook installs an opening book; nil removes it.
func (e *Engine) SetBook(b BookProber) { e.book = b }

// NewGame clears the tables.
func (e *Engine) NewGame() { e.tables.Clear() }

// searchControl is the state of one Iterate call shared by its threads.
type searchControl struct {
	stop   atomic.Bool
	nodes  atomic.Uint64
	tm     *TimeManager
	limits Limits
	done   <-chan struct{}
}

func (c *searchControl) shouldStop(now time.Time) bool {
	if c.limits.Nodes > 0 && c.nodes.Load() >= c.limits.Nodes {
		return true
	}
	select {
	case <-c.done:
		return true
	default:
	}
	return c.tm.HardExpired(now)
}
