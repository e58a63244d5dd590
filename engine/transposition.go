package engine

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"chesskernel/position"
)

// Bound is the kind of score stored in a transposition entry.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

// ProbeResult classifies a transposition lookup.
type ProbeResult uint8

const (
	// ProbeUseless: no entry for this position.
	ProbeUseless ProbeResult = iota
	// ProbeUseful: an entry exists but cannot end the node; its move is still a good first try.
	ProbeUseful
	ProbeExact
	ProbeLower
	ProbeUpper
	// ProbeOnEvaluation: another thread is searching this position at this depth.
	ProbeOnEvaluation
)

func (r ProbeResult) String() string {
	switch r {
	case ProbeUseful:
		return "useful"
	case ProbeExact:
		return "exact"
	case ProbeLower:
		return "lower"
	case ProbeUpper:
		return "upper"
	case ProbeOnEvaluation:
		return "on-evaluation"
	}
	return "useless"
}

const ttShardCount = 256

type TTEntry struct {
	signature  uint32
	move       position.Move
	score      int32
	depth      int16
	bound      Bound
	generation uint8
	threat     bool

	// evaluating counts threads inside this slot's position; evalDepth is
	// the depth they search at. Both are only touched atomically.
	evaluating int32
	evalDepth  int32
}

// TTHit is what a probe hands back to the search.
type TTHit struct {
	Result ProbeResult
	Score  int32
	Move   position.Move
	Depth  int
	Bound  Bound
	Threat bool
}

// TransTable is the shared transposition table. The index comes from the
// high half of the key and the low half is stored as a signature. Every
// position has two candidate slots, idx and idx+1.
type TransTable struct {
	entries    []TTEntry
	mask       uint64
	generation atomic.Uint32
	shards     [ttShardCount]sync.Mutex
}

// NewTransTable allocates a table of about sizeMB megabytes.
func NewTransTable(sizeMB int) *TransTable {
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	if n < 2 {
		n = 2
	}
	return &TransTable{entries: make([]TTEntry, n), mask: n - 1}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// slot returns the first of the two candidate slots for key and its lock.
func (tt *TransTable) slot(key uint64) (uint64, *sync.Mutex) {
	idx := (key >> 32) & tt.mask &^ 1
	return idx, tt.shard(idx)
}

func (tt *TransTable) shard(idx uint64) *sync.Mutex { return &tt.shards[(idx>>1)%ttShardCount] }

// Len returns the number of entries.
func (tt *TransTable) Len() int { return len(tt.entries) }

// NewSearch ages every entry by one generation.
func (tt *TransTable) NewSearch() { tt.generation.Add(1) }

func (tt *TransTable) currentGeneration() uint8 { return uint8(tt.generation.Load()) }

// Clear wipes the table.
func (tt *TransTable) Clear() {
	for i := range tt.shards {
		tt.shards[i].Lock()
	}
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	for i := range tt.shards {
		tt.shards[i].Unlock()
	}
	tt.generation.Store(0)
}

// Probe looks key up for a node searched at depth with window (alpha, beta)
// at ply. Mate scores come back relative to the root. With exclusive set, a
// slot being searched by another thread at the same depth yields
// ProbeOnEvaluation unless the stored result already ends the node.
func (tt *TransTable) Probe(key uint64, depth int, alpha, beta int32, ply int, exclusive bool) TTHit {
	idx, mu := tt.slot(key)
	sig := uint32(key)

	mu.Lock()
	var e *TTEntry
	for i := idx; i <= idx+1; i++ {
		if tt.entries[i].signature == sig && tt.entries[i].bound != BoundNone {
			e = &tt.entries[i]
			break
		}
	}
	if e == nil {
		mu.Unlock()
		return TTHit{}
	}
	hit := TTHit{
		Result: ProbeUseful,
		Score:  scoreFromTT(e.score, ply),
		Move:   e.move,
		Depth:  int(e.depth),
		Bound:  e.bound,
		Threat: e.threat,
	}
	onEval := atomic.LoadInt32(&e.evaluating) > 0 && int(atomic.LoadInt32(&e.evalDepth)) == depth
	mu.Unlock()

	if hit.Depth >= depth {
		switch {
		case hit.Bound == BoundExact:
			hit.Result = ProbeExact
		case hit.Bound == BoundLower && hit.Score >= beta:
			hit.Result = ProbeLower
		case hit.Bound == BoundUpper && hit.Score <= alpha:
			hit.Result = ProbeUpper
		}
	}
	if hit.Result == ProbeUseful && exclusive && onEval {
		hit.Result = ProbeOnEvaluation
	}
	return hit
}

// Store writes a search result. A matching slot is overwritten; otherwise the
// shallower of the two candidates is replaced, preferring a slot from an
// older search on equal depth. A NoMove result keeps the move already stored
// for the same position.
func (tt *TransTable) Store(key uint64, depth int, ply int, move position.Move, score int32, bound Bound, threat bool) {
	idx, mu := tt.slot(key)
	sig := uint32(key)
	gen := tt.currentGeneration()

	mu.Lock()
	defer mu.Unlock()
	target := -1
	for i := idx; i <= idx+1; i++ {
		if tt.entries[i].signature == sig && tt.entries[i].bound != BoundNone {
			target = int(i)
			break
		}
	}
	if target < 0 {
		a, b := &tt.entries[idx], &tt.entries[idx+1]
		switch {
		case a.depth < b.depth:
			target = int(idx)
		case b.depth < a.depth:
			target = int(idx + 1)
		case a.generation != gen:
			target = int(idx)
		case b.generation != gen:
			target = int(idx + 1)
		default:
			target = int(idx)
		}
	} else if move == position.NoMove {
		move = tt.entries[target].move
	}

	e := &tt.entries[target]
	if e.signature != sig {
		// Marks belong to the position that owned the slot.
		atomic.StoreInt32(&e.evaluating, 0)
		atomic.StoreInt32(&e.evalDepth, 0)
	}
	e.signature = sig
	e.move = move
	e.score = scoreToTT(score, ply)
	e.depth = int16(depth)
	e.bound = bound
	e.generation = gen
	e.threat = threat
}

// StartEvaluation marks key as being searched at depth by the calling thread
// and returns a token for FinishEvaluation. Only positions already in the
// table can be marked. The first mark fixes the depth other threads see
// until every holder has finished.
func (tt *TransTable) StartEvaluation(key uint64, depth int) int {
	idx, mu := tt.slot(key)
	sig := uint32(key)
	mu.Lock()
	defer mu.Unlock()
	for i := idx; i <= idx+1; i++ {
		e := &tt.entries[i]
		if e.signature == sig && e.bound != BoundNone {
			if atomic.AddInt32(&e.evaluating, 1) == 1 {
				atomic.StoreInt32(&e.evalDepth, int32(depth))
			}
			return int(i) + 1
		}
	}
	return 0
}

// FinishEvaluation releases a mark taken by StartEvaluation for key. A mark
// whose slot has since been taken by another position is already gone.
func (tt *TransTable) FinishEvaluation(key uint64, token int) {
	if token == 0 {
		return
	}
	mu := tt.shard(uint64(token-1) &^ 1)
	mu.Lock()
	defer mu.Unlock()
	e := &tt.entries[token-1]
	if e.signature != uint32(key) {
		return
	}
	if atomic.AddInt32(&e.evaluating, -1) <= 0 {
		atomic.StoreInt32(&e.evaluating, 0)
		atomic.StoreInt32(&e.evalDepth, 0)
	}
}

// HashFull returns the permille of sampled slots written during the current search.
func (tt *TransTable) HashFull() int {
	sample := Min(1000, len(tt.entries))
	gen := tt.currentGeneration()
	used := 0
	for i := 0; i < sample; i++ {
		mu := tt.shard(uint64(i))
		mu.Lock()
		if tt.entries[i].bound != BoundNone && tt.entries[i].generation == gen {
			used++
		}
		mu.Unlock()
	}
	return used * 1000 / sample
}
