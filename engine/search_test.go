package engine

import (
	"bytes"
	"context"
	"errors"
	"math/bits"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chesskernel/internal/testutil"
	"chesskernel/position"
)

func newTestEngine(opts ...Option) *Engine {
	return New(append([]Option{WithHashMB(4)}, opts...)...)
}

func iterateFEN(t *testing.T, e *Engine, fen string, l Limits) (Result, *position.Position) {
	t.Helper()
	p := mustPosition(t, fen)
	res, err := e.Iterate(context.Background(), p, l)
	testutil.AssertNoError(t, err, "iterate %s", fen)
	return res, p
}

func TestIterateStalemate(t *testing.T) {
	p := mustPosition(t, "k7/8/KQ6/8/8/8/8/8 b - -")
	res, err := newTestEngine().Iterate(context.Background(), p, Limits{Depth: 4})
	if !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves, got %v", err)
	}
	testutil.AssertEqual(t, res.Status, StatusStalemate, "status")
	testutil.AssertEqual(t, res.Move, position.NoMove, "move")
	testutil.AssertEqual(t, res.Score, DrawScore, "score")
}

func TestIterateCheckmate(t *testing.T) {
	p := mustPosition(t, "k7/1Q6/1K6/8/8/8/8/8 b - - 0 1")
	res, err := newTestEngine().Iterate(context.Background(), p, Limits{Depth: 4})
	if !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves, got %v", err)
	}
	testutil.AssertEqual(t, res.Status, StatusCheckmate, "status")
	testutil.AssertEqual(t, res.Score, matedIn(0), "score")
}

func TestIterateForcedMove(t *testing.T) {
	res, _ := iterateFEN(t, newTestEngine(), "k7/8/8/8/8/8/1q6/K7 w - - 0 1", Limits{Depth: 6})
	testutil.AssertEqual(t, res.Status, StatusForced, "status")
	testutil.AssertEqual(t, res.Move.String(), "a1b2", "move")
	testutil.AssertEqual(t, res.Stats.Nodes, uint64(0), "nodes")
}

func TestIterateFindsMateInOne(t *testing.T) {
	tests := []struct {
		fen  string
		move string
	}{
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"6rk/6pp/8/6N1/8/8/8/6K1 w - - 0 1", "g5f7"},
		{"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4", "h5f7"},
	}
	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			res, _ := iterateFEN(t, newTestEngine(), tc.fen, Limits{Depth: 4})
			testutil.AssertEqual(t, res.Move.String(), tc.move, "move")
			testutil.AssertEqual(t, res.Score, MateScore-1, "score")
			testutil.AssertEqual(t, FormatScore(res.Score), "mate 1", "formatted score")
		})
	}
}

func TestIterateAvoidsBackRankMate(t *testing.T) {
	// Black threatens Ra1#.
	res, p := iterateFEN(t, newTestEngine(), "r5k1/5ppp/8/8/8/8/5PPP/6K1 w - - 0 1", Limits{Depth: 4})
	if res.Score <= -Checkmate {
		t.Fatalf("%s scored as lost: %s", res.Move, FormatScore(res.Score))
	}
	p.MakeMove(res.Move)
	reply := mustMove(t, p, "a8a1")
	p.MakeMove(reply)
	if p.InCheck() && !p.HasLegalMove() {
		t.Fatalf("%s allows Ra1#", res.Move)
	}
}

func TestIterateWinsMaterial(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		move     string
		minScore int32
	}{
		{"hanging queen", "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1", "d2d5", 300},
		{"knight fork", "r3k3/8/8/3N4/8/8/4P3/4K3 w - - 0 1", "d5c7", 100},
		{"promotion", "8/P7/8/8/8/8/k7/4K3 w - - 0 1", "a7a8q", 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, _ := iterateFEN(t, newTestEngine(), tc.fen, Limits{Depth: 5})
			testutil.AssertEqual(t, res.Move.String(), tc.move, "move")
			if res.Score < tc.minScore {
				t.Fatalf("expected a winning score, got %s with %s", FormatScore(res.Score), res.Move)
			}
		})
	}
}

func TestIterateLeavesPositionUntouched(t *testing.T) {
	p := mustPosition(t, fenKiwipeteEngine)
	before := p.ToFEN()
	key := p.Key()
	_, err := newTestEngine(WithThreads(2)).Iterate(context.Background(), p, Limits{Depth: 3})
	testutil.AssertNoError(t, err, "iterate")
	testutil.AssertEqual(t, p.ToFEN(), before, "FEN")
	testutil.AssertEqual(t, p.Key(), key, "key")
}

const fenKiwipeteEngine = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func TestIterateIsDeterministic(t *testing.T) {
	run := func() Result {
		res, _ := iterateFEN(t, newTestEngine(), fenKiwipeteEngine, Limits{Depth: 4})
		return res
	}
	a, b := run(), run()
	testutil.AssertEqual(t, a.Move, b.Move, "move")
	testutil.AssertEqual(t, a.Score, b.Score, "score")
	testutil.AssertEqual(t, a.PV.Moves, b.PV.Moves, "pv")
	testutil.AssertEqual(t, a.Stats.Nodes, b.Stats.Nodes, "nodes")
	testutil.AssertEqual(t, a.Depth, 4, "depth")
}

func TestIteratePVIsLegal(t *testing.T) {
	res, p := iterateFEN(t, newTestEngine(), fenKiwipeteEngine, Limits{Depth: 4})
	if len(res.PV.Moves) == 0 || res.PV.Moves[0] != res.Move {
		t.Fatalf("PV %q does not start with %s", res.PV, res.Move)
	}
	for i, m := range res.PV.Moves {
		if !p.LegalMove(m) {
			t.Fatalf("PV move %d (%s) is illegal in %s", i, m, p.ToFEN())
		}
		p.MakeMove(m)
	}
}

func TestIterateWithHelpers(t *testing.T) {
	e := newTestEngine(WithThreads(4))
	res, p := iterateFEN(t, e, position.FENStartPos, Limits{Depth: 5})
	if !p.LegalMove(res.Move) {
		t.Fatalf("illegal move %s", res.Move)
	}
	testutil.AssertEqual(t, res.Status, StatusNormal, "status")
	testutil.AssertEqual(t, res.Depth, 5, "depth")
	if res.Stats.Nodes == 0 {
		t.Fatal("no nodes counted")
	}

	mate, _ := iterateFEN(t, e, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", Limits{Depth: 4})
	testutil.AssertEqual(t, mate.Move.String(), "a1a8", "mate with helpers")
}

func TestSearchDefersMovesOwnedByAnotherThread(t *testing.T) {
	p := mustPosition(t, position.FENStartPos)
	eng := New(WithHashMB(16), WithThreads(2))
	ctl := &searchControl{tm: NewTimeManager(Limits{}, p, time.Now())}
	sc := NewSearchContext(0, p, eng, ctl)
	tt := eng.tables.TT

	// Pretend another thread is inside every reply at the depth this node
	// will search them with.
	childDepth := 4 * OnePly
	var keys []uint64
	var tokens []int
	for _, m := range p.LegalMoves() {
		p.MakeMove(m)
		tt.Store(p.Key(), 0, 2, position.NoMove, 0, BoundUpper, false)
		if token := tt.StartEvaluation(p.Key(), childDepth); token != 0 {
			keys = append(keys, p.Key())
			tokens = append(tokens, token)
		}
		p.UnmakeMove(m)
	}
	if len(tokens) < 2 {
		t.Fatalf("only %d replies marked", len(tokens))
	}

	v := sc.search(-MaxScore, MaxScore, childDepth+OnePly, 1, false, 0)
	if sc.stats.DeferredMoves == 0 {
		t.Fatal("no move was deferred")
	}
	if v <= -Checkmate || v >= Checkmate {
		t.Fatalf("start position scored %d", v)
	}
	for i, key := range keys {
		tt.FinishEvaluation(key, tokens[i])
	}
}

func TestIterateNodeLimit(t *testing.T) {
	res, p := iterateFEN(t, newTestEngine(), fenKiwipeteEngine, Limits{Nodes: 5000})
	if !res.Aborted {
		t.Fatalf("node limited search reached depth %d without stopping", res.Depth)
	}
	if !p.LegalMove(res.Move) {
		t.Fatalf("illegal move %s", res.Move)
	}
}

func TestIterateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := position.StartPosition()
	res, err := newTestEngine().Iterate(ctx, p, Limits{})
	testutil.AssertNoError(t, err, "iterate")
	if !res.Aborted {
		t.Fatal("search ignored the cancelled context")
	}
	if !p.LegalMove(res.Move) {
		t.Fatalf("illegal move %s", res.Move)
	}
}

type fixedBook struct{ move string }

func (b fixedBook) BookMove(p *position.Position) (position.Move, bool) {
	m, err := position.ParseMove(p, b.move)
	return m, err == nil
}

func TestIterateUsesBook(t *testing.T) {
	e := newTestEngine()
	e.SetBook(fixedBook{"g1f3"})
	res, _ := iterateFEN(t, e, position.FENStartPos, Limits{Depth: 3})
	testutil.AssertEqual(t, res.Status, StatusBook, "status")
	testutil.AssertEqual(t, res.Move.String(), "g1f3", "move")

	// A book move that is not legal here is ignored.
	e.SetBook(fixedBook{"e7e5"})
	res, _ = iterateFEN(t, e, position.FENStartPos, Limits{Depth: 2})
	testutil.AssertEqual(t, res.Status, StatusNormal, "status without book move")
}

type drawnTablebase struct{ probes int }

func (tb *drawnTablebase) Probe(p *position.Position, ply int) (int32, bool) {
	tb.probes++
	return DrawScore, bits.OnesCount64(p.All()) <= 4
}

func TestIterateConsultsTablebase(t *testing.T) {
	e := newTestEngine()
	tb := &drawnTablebase{}
	e.SetTablebase(tb)
	res, _ := iterateFEN(t, e, "8/8/4k3/8/8/3RK3/8/8 w - - 0 1", Limits{Depth: 3})
	if tb.probes == 0 {
		t.Fatal("tablebase never probed")
	}
	testutil.AssertEqual(t, res.Score, DrawScore, "score")
}

func TestIterateLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	e := newTestEngine(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	iterateFEN(t, e, position.FENStartPos, Limits{Depth: 3})
	out := buf.String()
	for _, msg := range []string{`"message":"iteration"`, `"message":"search-done"`, `"stats":{`} {
		if !strings.Contains(out, msg) {
			t.Errorf("log lacks %s:\n%s", msg, out)
		}
	}
}

func TestNewGameClearsTables(t *testing.T) {
	e := newTestEngine()
	_, p := iterateFEN(t, e, position.FENStartPos, Limits{Depth: 3})
	stored := func() int {
		n := 0
		for _, m := range p.LegalMoves() {
			p.MakeMove(m)
			if e.Tables().TT.Probe(p.Key(), 0, -MaxScore, MaxScore, 1, false).Result != ProbeUseless {
				n++
			}
			p.UnmakeMove(m)
		}
		return n
	}
	if stored() == 0 {
		t.Fatal("search stored no root replies")
	}
	e.NewGame()
	testutil.AssertEqual(t, stored(), 0, "entries after NewGame")
}
