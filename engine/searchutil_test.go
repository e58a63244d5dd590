package engine

import (
	"testing"

	"chesskernel/internal/testutil"
	"chesskernel/position"
)

func quiet(from, to position.Square, pt position.PieceType) position.Move {
	return position.NewMove(from, to, pt, position.NoPieceType, 0)
}

func TestKillerPromotionByHits(t *testing.T) {
	var k killerTable
	a := quiet(position.G1, position.F3, position.Knight)
	b := quiet(position.B1, position.C3, position.Knight)
	c := quiet(position.E2, position.E3, position.Pawn)

	k.insert(a, 4)
	k1, k2, _ := k.killers(4)
	testutil.AssertEqual(t, []position.Move{k1, k2}, []position.Move{a, position.NoMove}, "first killer")

	k.insert(b, 4)
	k1, k2, _ = k.killers(4)
	testutil.AssertEqual(t, []position.Move{k1, k2}, []position.Move{a, b}, "second killer")

	// b overtakes a once it has more cutoffs.
	k.insert(b, 4)
	k1, k2, _ = k.killers(4)
	testutil.AssertEqual(t, []position.Move{k1, k2}, []position.Move{b, a}, "promoted killer")

	// A new move only replaces the second slot.
	k.insert(c, 4)
	k1, k2, _ = k.killers(4)
	testutil.AssertEqual(t, []position.Move{k1, k2}, []position.Move{b, c}, "replaced killer")
}

func TestKillersFromTwoPliesUp(t *testing.T) {
	var k killerTable
	a := quiet(position.G1, position.F3, position.Knight)
	k.insert(a, 3)
	if _, _, k3 := k.killers(5); k3 != a {
		t.Fatalf("expected %s as third killer, got %s", a, k3)
	}
	if _, _, k3 := k.killers(1); k3 != position.NoMove {
		t.Fatalf("no third killer near the root, got %s", k3)
	}
	k.clearFrom(2)
	if k1, _, _ := k.killers(3); k1 != position.NoMove {
		t.Fatalf("clearFrom kept %s", k1)
	}
}

func TestHistoryAddsDepthSquaredAndHalves(t *testing.T) {
	var h historyTable
	m := quiet(position.E2, position.E4, position.Pawn)
	h.add(position.White, m, 3*OnePly)
	testutil.AssertEqual(t, h.score(position.White, m), int32(9), "after one credit")
	testutil.AssertEqual(t, h.score(position.Black, m), int32(0), "other side untouched")

	other := quiet(position.D2, position.D4, position.Pawn)
	h.add(position.White, other, 10*OnePly)
	for i := 0; i < 100 && h.score(position.White, other) == 100; i++ {
		h.add(position.White, m, 50*OnePly)
	}
	testutil.AssertEqual(t, h.score(position.White, other), int32(50), "halved entry")
	if h.score(position.White, m) >= historyMaxVal {
		t.Fatalf("history overflowed: %d", h.score(position.White, m))
	}
}

func TestCounterMoves(t *testing.T) {
	var c counterTable
	prev := quiet(position.E7, position.E5, position.Pawn)
	reply := quiet(position.G1, position.F3, position.Knight)
	c.store(position.White, prev, reply)
	testutil.AssertEqual(t, c.lookup(position.White, prev), reply, "stored reply")
	testutil.AssertEqual(t, c.lookup(position.Black, prev), position.NoMove, "other side")

	c.store(position.White, position.NullMove, reply)
	testutil.AssertEqual(t, c.lookup(position.White, position.NullMove), position.NoMove, "null move")
}

func TestPVLine(t *testing.T) {
	a := quiet(position.E2, position.E4, position.Pawn)
	b := quiet(position.E7, position.E5, position.Pawn)
	var child, pv PVLine
	if pv.GetPVMove() != position.NoMove {
		t.Fatal("empty line has a move")
	}
	child.Update(b, PVLine{})
	pv.Update(a, child)
	testutil.AssertEqual(t, pv.String(), "e2e4 e7e5", "line")

	clone := pv.Clone()
	pv.Clear()
	testutil.AssertEqual(t, clone.GetPVMove(), a, "clone keeps its moves")
}

func TestFormatScore(t *testing.T) {
	tests := map[int32]string{
		35:             "cp 35",
		-120:           "cp -120",
		MateScore - 1:  "mate 1",
		MateScore - 3:  "mate 2",
		-MateScore + 2: "mate -1",
		-MateScore + 4: "mate -2",
	}
	for score, want := range tests {
		testutil.AssertEqual(t, FormatScore(score), want, "FormatScore")
	}
}
