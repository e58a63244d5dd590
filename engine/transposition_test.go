package engine

import (
	"testing"

	"chesskernel/internal/testutil"
	"chesskernel/position"
)

// ttKey builds a key whose slot pair is chosen by idx and whose signature is sig.
func ttKey(idx uint64, sig uint32) uint64 { return idx<<32 | uint64(sig) }

var (
	ttMoveA = position.NewMove(position.E2, position.E4, position.Pawn, position.NoPieceType, 0)
	ttMoveB = position.NewMove(position.G1, position.F3, position.Knight, position.NoPieceType, 0)
)

func TestTransTableRoundTrip(t *testing.T) {
	tt := NewTransTable(1)
	key := ttKey(10, 0xABCD)
	tt.Store(key, 5*OnePly, 0, ttMoveA, 123, BoundExact, true)

	hit := tt.Probe(key, 4*OnePly, -MaxScore, MaxScore, 0, false)
	testutil.AssertEqual(t, hit, TTHit{
		Result: ProbeExact,
		Score:  123,
		Move:   ttMoveA,
		Depth:  5 * OnePly,
		Bound:  BoundExact,
		Threat: true,
	}, "shallower probe")

	deeper := tt.Probe(key, 6*OnePly, -MaxScore, MaxScore, 0, false)
	if deeper.Result != ProbeUseful || deeper.Move != ttMoveA {
		t.Fatalf("deeper probe: got %v with move %s", deeper.Result, deeper.Move)
	}

	if miss := tt.Probe(ttKey(10, 0xABCE), 0, -MaxScore, MaxScore, 0, false); miss.Result != ProbeUseless {
		t.Fatalf("expected a miss for another signature, got %v", miss.Result)
	}
}

func TestTransTableBounds(t *testing.T) {
	tt := NewTransTable(1)
	lower, upper := ttKey(12, 1), ttKey(14, 2)
	tt.Store(lower, 4*OnePly, 0, ttMoveA, 200, BoundLower, false)
	tt.Store(upper, 4*OnePly, 0, ttMoveB, -50, BoundUpper, false)

	tests := []struct {
		name        string
		key         uint64
		alpha, beta int32
		want        ProbeResult
	}{
		{"lower bound above beta", lower, 100, 150, ProbeLower},
		{"lower bound inside window", lower, 100, 250, ProbeUseful},
		{"upper bound below alpha", upper, 0, 100, ProbeUpper},
		{"upper bound inside window", upper, -100, 100, ProbeUseful},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit := tt.Probe(tc.key, 4*OnePly, tc.alpha, tc.beta, 0, false)
			if hit.Result != tc.want {
				t.Fatalf("got %v, want %v", hit.Result, tc.want)
			}
		})
	}
}

func TestTransTableMateScoresFollowPly(t *testing.T) {
	tt := NewTransTable(1)
	key := ttKey(20, 7)
	// Mate found five plies from the root by a node at ply 3.
	tt.Store(key, 2*OnePly, 3, ttMoveA, MateScore-5, BoundExact, false)
	// The same position reached at ply 7 is mated two plies later.
	hit := tt.Probe(key, OnePly, -MaxScore, MaxScore, 7, false)
	if hit.Score != MateScore-9 {
		t.Fatalf("got %s, want %s", FormatScore(hit.Score), FormatScore(MateScore-9))
	}

	tt.Store(key, 2*OnePly, 3, ttMoveA, matedIn(6), BoundExact, false)
	hit = tt.Probe(key, OnePly, -MaxScore, MaxScore, 1, false)
	if hit.Score != matedIn(4) {
		t.Fatalf("got %d, want %d", hit.Score, matedIn(4))
	}
}

func TestTransTableReplacement(t *testing.T) {
	tt := NewTransTable(1)
	deep, shallow, fresh := ttKey(8, 1), ttKey(8, 2), ttKey(9, 3)

	tt.Store(deep, 8*OnePly, 0, ttMoveA, 10, BoundExact, false)
	tt.Store(shallow, 4*OnePly, 0, ttMoveA, 20, BoundExact, false)
	tt.Store(fresh, 6*OnePly, 0, ttMoveB, 30, BoundExact, false)

	if hit := tt.Probe(deep, 0, -MaxScore, MaxScore, 0, false); hit.Score != 10 {
		t.Errorf("deep entry lost: %+v", hit)
	}
	if hit := tt.Probe(shallow, 0, -MaxScore, MaxScore, 0, false); hit.Result != ProbeUseless {
		t.Errorf("shallow entry should have been replaced: %+v", hit)
	}
	if hit := tt.Probe(fresh, 0, -MaxScore, MaxScore, 0, false); hit.Score != 30 {
		t.Errorf("fresh entry missing: %+v", hit)
	}
}

func TestTransTablePrefersOlderGenerationOnEqualDepth(t *testing.T) {
	tt := NewTransTable(1)
	old, kept, fresh := ttKey(30, 1), ttKey(30, 2), ttKey(31, 3)
	tt.Store(old, 4*OnePly, 0, ttMoveA, 1, BoundExact, false)
	tt.Store(kept, 4*OnePly, 0, ttMoveA, 2, BoundExact, false)

	tt.NewSearch()
	tt.Store(kept, 4*OnePly, 0, ttMoveA, 2, BoundExact, false)
	tt.Store(fresh, 4*OnePly, 0, ttMoveB, 3, BoundExact, false)

	if hit := tt.Probe(old, 0, -MaxScore, MaxScore, 0, false); hit.Result != ProbeUseless {
		t.Errorf("entry from the previous search should have been replaced: %+v", hit)
	}
	if hit := tt.Probe(kept, 0, -MaxScore, MaxScore, 0, false); hit.Score != 2 {
		t.Errorf("refreshed entry lost: %+v", hit)
	}
}

func TestTransTableStoreWithoutMoveKeepsOldMove(t *testing.T) {
	tt := NewTransTable(1)
	key := ttKey(40, 9)
	tt.Store(key, 3*OnePly, 0, ttMoveB, 50, BoundLower, false)
	tt.Store(key, 5*OnePly, 0, position.NoMove, -20, BoundUpper, false)

	hit := tt.Probe(key, 0, -MaxScore, MaxScore, 0, false)
	testutil.AssertEqual(t, hit.Move, ttMoveB, "move")
	testutil.AssertEqual(t, hit.Score, int32(-20), "score")
	testutil.AssertEqual(t, hit.Bound, BoundUpper, "bound")
}

func TestTransTableOnEvaluation(t *testing.T) {
	tt := NewTransTable(1)
	key := ttKey(50, 4)
	if token := tt.StartEvaluation(key, 3*OnePly); token != 0 {
		t.Fatalf("absent positions cannot be marked, got token %d", token)
	}
	tt.FinishEvaluation(key, 0)

	tt.Store(key, 2*OnePly, 0, ttMoveA, 0, BoundExact, false)
	token := tt.StartEvaluation(key, 3*OnePly)
	if token == 0 {
		t.Fatal("expected a token for a stored position")
	}

	if hit := tt.Probe(key, 3*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeOnEvaluation {
		t.Errorf("exclusive probe at the marked depth: got %v", hit.Result)
	}
	if hit := tt.Probe(key, 3*OnePly, -MaxScore, MaxScore, 0, false); hit.Result != ProbeUseful {
		t.Errorf("non-exclusive probe: got %v", hit.Result)
	}
	if hit := tt.Probe(key, 4*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeUseful {
		t.Errorf("probe at another depth: got %v", hit.Result)
	}
	// A result that ends the node wins over the mark.
	if hit := tt.Probe(key, OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeExact {
		t.Errorf("shallow exclusive probe: got %v", hit.Result)
	}

	tt.FinishEvaluation(key, token)
	if hit := tt.Probe(key, 3*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeUseful {
		t.Errorf("after FinishEvaluation: got %v", hit.Result)
	}
}

func TestTransTableNestedMarkKeepsOuterDepth(t *testing.T) {
	tt := NewTransTable(1)
	key := ttKey(52, 9)
	tt.Store(key, 2*OnePly, 0, ttMoveA, 0, BoundUpper, false)

	outer := tt.StartEvaluation(key, 8*OnePly)
	inner := tt.StartEvaluation(key, 6*OnePly)
	tt.FinishEvaluation(key, inner)
	if hit := tt.Probe(key, 8*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeOnEvaluation {
		t.Errorf("outer mark lost after the inner search: got %v", hit.Result)
	}
	tt.FinishEvaluation(key, outer)
	if hit := tt.Probe(key, 8*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeUseful {
		t.Errorf("after both finished: got %v", hit.Result)
	}
}

func TestTransTableReplacementDropsMark(t *testing.T) {
	tt := NewTransTable(1)
	owner, other, newcomer := ttKey(60, 1), ttKey(60, 2), ttKey(60, 3)
	tt.Store(owner, OnePly, 0, ttMoveA, 0, BoundUpper, false)
	tt.Store(other, 5*OnePly, 0, ttMoveB, 0, BoundUpper, false)
	token := tt.StartEvaluation(owner, 3*OnePly)
	if token == 0 {
		t.Fatal("expected a token for a stored position")
	}

	// The shallower slot, the marked one, goes to the newcomer.
	tt.Store(newcomer, 2*OnePly, 0, ttMoveB, 0, BoundUpper, false)
	if hit := tt.Probe(owner, 0, -MaxScore, MaxScore, 0, false); hit.Result != ProbeUseless {
		t.Fatalf("owner still present: %v", hit.Result)
	}
	if hit := tt.Probe(newcomer, 3*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeUseful {
		t.Errorf("newcomer inherited the mark: got %v", hit.Result)
	}

	// A stale finish must not release the newcomer's own mark.
	mine := tt.StartEvaluation(newcomer, 3*OnePly)
	tt.FinishEvaluation(owner, token)
	if hit := tt.Probe(newcomer, 3*OnePly, -MaxScore, MaxScore, 0, true); hit.Result != ProbeOnEvaluation {
		t.Errorf("stale finish released the newcomer: got %v", hit.Result)
	}
	tt.FinishEvaluation(newcomer, mine)
}

func TestTransTableHashFullAndClear(t *testing.T) {
	tt := NewTransTable(1)
	if got := tt.HashFull(); got != 0 {
		t.Fatalf("empty table reports %d", got)
	}
	for i := 0; i < tt.Len(); i++ {
		tt.Store(ttKey(uint64(i), uint32(i)+1), OnePly, 0, ttMoveA, 0, BoundExact, false)
	}
	if got := tt.HashFull(); got < 400 {
		t.Fatalf("expected a well filled table, got %d", got)
	}
	tt.NewSearch()
	if got := tt.HashFull(); got != 0 {
		t.Fatalf("entries from an older search counted: %d", got)
	}
	tt.Clear()
	if hit := tt.Probe(ttKey(3, 4), 0, -MaxScore, MaxScore, 0, false); hit.Result != ProbeUseless {
		t.Fatalf("entry survived Clear: %+v", hit)
	}
}

func TestRoundDownToPowerOf2(t *testing.T) {
	for in, want := range map[uint64]uint64{1: 1, 2: 2, 3: 2, 1000: 512, 1 << 20: 1 << 20} {
		if got := roundDownToPowerOf2(in); got != want {
			t.Errorf("roundDownToPowerOf2(%d) = %d, want %d", in, got, want)
		}
	}
}
