package engine

import (
	"sync"
)

// =============================================================================
// PAWN HASH TABLE
// =============================================================================

const pawnShardCount = 64

// Fianchetto flags per side.
const (
	FianchettoKingside uint8 = 1 << iota
	FianchettoQueenside
)

// PawnHashEntry caches the pawn-structure analysis for one pawn key.
// Scores are from white's point of view.
type PawnHashEntry struct {
	signature uint32

	ScoreMG int32
	ScoreEG int32

	// Passed pawns per color.
	Passed [2]uint64
	// Shield[c][0] is the kingside pawn shield score of color c, Shield[c][1] the queenside one.
	Shield [2][2]int32
	// Fianchetto[c] holds FianchettoKingside/FianchettoQueenside bits.
	Fianchetto [2]uint8
}

// PawnTable is keyed by the pawn-only hash key.
type PawnTable struct {
	entries []PawnHashEntry
	mask    uint64
	shards  [pawnShardCount]sync.Mutex
}

// NewPawnTable allocates a table of about sizeMB megabytes.
func NewPawnTable(sizeMB int) *PawnTable {
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / 64)
	if n == 0 {
		n = 1
	}
	t := &PawnTable{entries: make([]PawnHashEntry, n), mask: n - 1}
	t.Clear()
	return t
}

func (t *PawnTable) index(key uint64) (uint64, *sync.Mutex) {
	idx := (key >> 32) & t.mask
	return idx, &t.shards[idx%pawnShardCount]
}

// Probe returns a copy of the entry for key.
func (t *PawnTable) Probe(key uint64) (PawnHashEntry, bool) {
	idx, mu := t.index(key)
	mu.Lock()
	e := t.entries[idx]
	mu.Unlock()
	if e.signature != uint32(key) || e.ScoreMG == InvalidScore {
		return PawnHashEntry{}, false
	}
	return e, true
}

// Store writes entry under key.
func (t *PawnTable) Store(key uint64, entry PawnHashEntry) {
	idx, mu := t.index(key)
	entry.signature = uint32(key)
	mu.Lock()
	t.entries[idx] = entry
	mu.Unlock()
}

// Clear resets the table (use at start of a new game).
func (t *PawnTable) Clear() {
	for i := range t.entries {
		t.entries[i] = PawnHashEntry{ScoreMG: InvalidScore}
	}
}
