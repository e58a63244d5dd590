package engine

import (
	"testing"

	"chesskernel/internal/testutil"
	"chesskernel/position"
)

func TestQuiesceTakesHangingQueen(t *testing.T) {
	sc := newTestContext(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	before := sc.pos.Key()
	if v := sc.quiesce(-MaxScore, MaxScore, 0, 0); v < 300 {
		t.Fatalf("quiescence missed Rxd5: %d", v)
	}
	testutil.AssertEqual(t, sc.pos.Key(), before, "position restored")
}

func TestQuiesceStandsPatInQuietPosition(t *testing.T) {
	sc := newTestContext(t, position.FENStartPos)
	want := sc.eng.eval.Evaluate(sc.pos)
	testutil.AssertEqual(t, sc.quiesce(-MaxScore, MaxScore, 0, 0), want, "stand pat")
}

func TestQuiesceAvoidsLosingCapture(t *testing.T) {
	// Qxd5 loses the queen for a pawn; standing pat is better.
	sc := newTestContext(t, "4k3/8/2p5/3p4/8/8/8/3QK3 w - - 0 1")
	stand := sc.eng.eval.Evaluate(sc.pos)
	if v := sc.quiesce(-MaxScore, MaxScore, 0, 0); v < stand {
		t.Fatalf("quiescence %d below stand pat %d", v, stand)
	}
}

func TestQuiesceInCheckSearchesEvasions(t *testing.T) {
	sc := newTestContext(t, "k7/1Q6/1K6/8/8/8/8/8 b - - 0 1")
	testutil.AssertEqual(t, sc.quiesce(-MaxScore, MaxScore, 2, 0), matedIn(2), "mated in quiescence")
}

func TestSearchScoresRepetitionAsDraw(t *testing.T) {
	sc := newTestContext(t, position.FENStartPos)
	for _, s := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		sc.pos.MakeMove(mustMove(t, sc.pos, s))
	}
	testutil.AssertEqual(t, sc.search(-MaxScore, MaxScore, 2*OnePly, 1, false, 0), DrawScore, "repetition")
}

func TestSearchMateDistance(t *testing.T) {
	sc := newTestContext(t, "k7/1Q6/1K6/8/8/8/8/8 b - - 0 1")
	testutil.AssertEqual(t, sc.search(-MaxScore, MaxScore, OnePly, 3, false, 0), matedIn(3), "mated at ply 3")

	sc = newTestContext(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	testutil.AssertEqual(t, sc.search(-MaxScore, MaxScore, 2*OnePly, 2, false, 0), MateScore-3, "mate one move after ply 2")
}

func TestSearchStalemateIsDraw(t *testing.T) {
	sc := newTestContext(t, "k7/8/KQ6/8/8/8/8/8 b - - 0 1")
	testutil.AssertEqual(t, sc.search(-MaxScore, MaxScore, 2*OnePly, 1, false, 0), DrawScore, "stalemate")
}
