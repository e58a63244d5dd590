package engine

import "sync"

const scoreShardCount = 64

type scoreEntry struct {
	signature uint32
	score     int32
}

// ScoreTable caches whole-position static evaluations by the full key.
type ScoreTable struct {
	entries []scoreEntry
	mask    uint64
	shards  [scoreShardCount]sync.Mutex
}

// NewScoreTable allocates a table of about sizeMB megabytes.
func NewScoreTable(sizeMB int) *ScoreTable {
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / 8)
	if n == 0 {
		n = 1
	}
	t := &ScoreTable{entries: make([]scoreEntry, n), mask: n - 1}
	t.Clear()
	return t
}

func (t *ScoreTable) index(key uint64) (uint64, *sync.Mutex) {
	idx := (key >> 32) & t.mask
	return idx, &t.shards[idx%scoreShardCount]
}

// Probe returns the cached score for key.
func (t *ScoreTable) Probe(key uint64) (int32, bool) {
	idx, mu := t.index(key)
	mu.Lock()
	e := t.entries[idx]
	mu.Unlock()
	if e.signature != uint32(key) || e.score == InvalidScore {
		return 0, false
	}
	return e.score, true
}

// Store caches score for key.
func (t *ScoreTable) Store(key uint64, score int32) {
	idx, mu := t.index(key)
	mu.Lock()
	t.entries[idx] = scoreEntry{signature: uint32(key), score: score}
	mu.Unlock()
}

// Clear marks every slot invalid.
func (t *ScoreTable) Clear() {
	for i := range t.entries {
		t.entries[i] = scoreEntry{score: InvalidScore}
	}
}

// SharedTables are the only state shared between search threads.
type SharedTables struct {
	TT     *TransTable
	Pawns  *PawnTable
	Scores *ScoreTable
}

// NewSharedTables sizes the three tables from cfg.
func NewSharedTables(cfg Config) *SharedTables {
	cfg.normalize()
	return &SharedTables{
		TT:     NewTransTable(cfg.HashMB),
		Pawns:  NewPawnTable(cfg.PawnHashMB),
		Scores: NewScoreTable(cfg.ScoreHashMB),
	}
}

// Clear wipes all three tables.
func (s *SharedTables) Clear() {
	s.TT.Clear()
	s.Pawns.Clear()
	s.Scores.Clear()
}
