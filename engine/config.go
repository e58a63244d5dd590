package engine

import (
	"github.com/rs/zerolog"
)

// Config holds every tunable the search reads. Depth-like values are in
// fractional units (OnePly per ply) unless the name says plies.
type Config struct {
	Threads int

	HashMB      int
	PawnHashMB  int
	ScoreHashMB int

	// Extensions.
	CheckExtension       int
	SingleReplyExtension int
	DoubleCheckExtension int
	RecaptureExtension   [7]int // indexed by the recaptured piece type
	PassedPawnExtension  int
	ZugzwangExtension    int

	// Null move.
	NullMoveReduction     int // plies
	NullMoveDeepReduction int // plies, used from NullMoveDeepDepth on
	NullMoveDeepDepth     int
	NullVerifyMaterial    int32 // non-pawn material below which a null fail-high is verified

	// Futility pruning, extended futility and limited razoring margins.
	FutilityMargin         int32
	ExtendedFutilityMargin int32
	RazorMargin            int32

	// MaxPos bounds the positional part of the evaluation. It starts at
	// MaxPosInitial and grows with observed gaps up to MaxPosCeiling.
	MaxPosInitial int32
	MaxPosCeiling int32

	AspirationWindow int32
	IIDDepth         int // below this remaining depth no internal deepening is tried
	DeferDepth       int // ABDADA deferral only from this remaining depth on
	QuiescenceChecks bool
	MateStopDepth    int // plies; a mate stable for this many iterations ends the search
	MaxDepth         int // plies

	Logger zerolog.Logger
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Threads:     1,
		HashMB:      64,
		PawnHashMB:  2,
		ScoreHashMB: 4,

		CheckExtension:       12,
		SingleReplyExtension: 16,
		DoubleCheckExtension: 16,
		RecaptureExtension:   [7]int{0, 4, 8, 8, 12, 14, 0},
		PassedPawnExtension:  12,
		ZugzwangExtension:    16,

		NullMoveReduction:     3,
		NullMoveDeepReduction: 4,
		NullMoveDeepDepth:     7 * OnePly,
		NullVerifyMaterial:    700,

		FutilityMargin:         100,
		ExtendedFutilityMargin: 300,
		RazorMargin:            500,

		MaxPosInitial: 150,
		MaxPosCeiling: 600,

		AspirationWindow: 35,
		IIDDepth:         5 * OnePly,
		DeferDepth:       3 * OnePly,
		QuiescenceChecks: true,
		MateStopDepth:    3,
		MaxDepth:         64,

		Logger: zerolog.Nop(),
	}
}

// normalize fills zero fields with their defaults so a partially built
// Config is usable.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Threads <= 0 {
		c.Threads = d.Threads
	}
	if c.HashMB <= 0 {
		c.HashMB = d.HashMB
	}
	if c.PawnHashMB <= 0 {
		c.PawnHashMB = d.PawnHashMB
	}
	if c.ScoreHashMB <= 0 {
		c.ScoreHashMB = d.ScoreHashMB
	}
	if c.NullMoveReduction <= 0 {
		c.NullMoveReduction = d.NullMoveReduction
	}
	if c.NullMoveDeepReduction <= 0 {
		c.NullMoveDeepReduction = d.NullMoveDeepReduction
	}
	if c.NullMoveDeepDepth <= 0 {
		c.NullMoveDeepDepth = d.NullMoveDeepDepth
	}
	if c.MaxPosInitial <= 0 {
		c.MaxPosInitial = d.MaxPosInitial
	}
	if c.MaxPosCeiling < c.MaxPosInitial {
		c.MaxPosCeiling = Max(d.MaxPosCeiling, c.MaxPosInitial)
	}
	if c.AspirationWindow <= 0 {
		c.AspirationWindow = d.AspirationWindow
	}
	if c.MateStopDepth <= 0 {
		c.MateStopDepth = d.MateStopDepth
	}
	if c.MaxDepth <= 0 || c.MaxDepth >= MaxPly {
		c.MaxDepth = d.MaxDepth
	}
}

// Option customizes the Config used by New.
type Option func(*Config)

// WithThreads sets the number of search threads. One thread disables ABDADA.
func WithThreads(n int) Option { return func(c *Config) { c.Threads = n } }

// WithHashMB sets the transposition table size in megabytes.
func WithHashMB(mb int) Option { return func(c *Config) { c.HashMB = mb } }

// WithLogger sets the logger for search events.
func WithLogger(l zerolog.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithAspirationWindow sets the half-width of the root aspiration window.
func WithAspirationWindow(w int32) Option { return func(c *Config) { c.AspirationWindow = w } }

// WithQuiescenceChecks toggles quiet checking moves at the first quiescence ply.
func WithQuiescenceChecks(on bool) Option { return func(c *Config) { c.QuiescenceChecks = on } }

// WithMaxDepth caps iterative deepening, in plies.
func WithMaxDepth(plies int) Option { return func(c *Config) { c.MaxDepth = plies } }

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option { return func(c *Config) { *c = cfg } }
