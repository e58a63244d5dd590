package position

import (
	"errors"
	"testing"

	"chesskernel/internal/testutil"
)

func playMoves(t *testing.T, p *Position, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := ParseMove(p, s)
		testutil.AssertNoError(t, err, "ParseMove(%q) in %q", s, p.ToFEN())
		p.MakeMove(m)
	}
}

func TestRepeatedKnightShuffle(t *testing.T) {
	p := StartPosition()
	if p.Repeated() != 0 {
		t.Fatalf("fresh position reports a repetition")
	}
	playMoves(t, p, "g1f3", "g8f6", "f3g1", "f6g8")
	if got := p.Repeated(); got != 1 {
		t.Fatalf("after one shuffle: got %d repetitions want 1", got)
	}
	playMoves(t, p, "g1f3", "g8f6", "f3g1", "f6g8")
	if got := p.Repeated(); got != 2 {
		t.Fatalf("after two shuffles: got %d repetitions want 2", got)
	}
	if !p.IsRepetition() {
		t.Fatalf("IsRepetition false after a shuffle")
	}
}

func TestRepetitionWindowStopsAtIrreversibleMove(t *testing.T) {
	p := StartPosition()
	playMoves(t, p, "g1f3", "g8f6", "f3g1", "f6g8", "e2e4", "e7e5")
	if p.Repeated() != 0 {
		t.Fatalf("pawn moves must close the repetition window")
	}
	playMoves(t, p, "g1f3", "b8c6", "f3g1", "c6b8")
	if got := p.Repeated(); got != 1 {
		t.Fatalf("got %d repetitions want 1", got)
	}
}

func TestRepetitionAfterDoublePush(t *testing.T) {
	p := StartPosition()
	playMoves(t, p, "e2e4", "e7e5")
	first := p.Key()
	playMoves(t, p, "g1f3", "b8c6", "f3g1", "c6b8")
	if p.Key() != first {
		t.Fatalf("same position after the knight shuffle has a different key: %q", p.ToFEN())
	}
	if got := p.Repeated(); got != 1 {
		t.Fatalf("got %d repetitions want 1", got)
	}
}

func TestParseFENDropsUncapturableEnPassant(t *testing.T) {
	cases := map[string]string{
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1": "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3": "rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3",
	}
	for fen, want := range cases {
		testutil.AssertEqual(t, mustFEN(t, fen).ToFEN(), want, "ToFEN("+fen+")")
	}
}

func TestNullMoveBreaksRepetition(t *testing.T) {
	p := StartPosition()
	start := p.Key()
	playMoves(t, p, "g1f3")
	p.MakeNullMove()
	playMoves(t, p, "f3g1")
	p.MakeNullMove()
	if p.Key() != start {
		t.Fatalf("expected to be back at the start position")
	}
	if p.Repeated() != 0 {
		t.Fatalf("repetition detected across null moves")
	}
}

func TestFiftyMoveCounter(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 98 80")
	if p.IsFiftyMoveDraw() {
		t.Fatalf("98 plies is not yet a draw")
	}
	playMoves(t, p, "a1a2", "e8d8")
	if !p.IsFiftyMoveDraw() {
		t.Fatalf("100 reversible plies should be a draw, rule50=%d", p.Rule50())
	}
	p = mustFEN(t, "4k3/8/8/8/8/8/P7/R3K3 w - - 98 80")
	playMoves(t, p, "a2a3")
	if p.Rule50() != 0 {
		t.Fatalf("pawn move must reset the counter, got %d", p.Rule50())
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := map[string]bool{
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1":   true,
		"4k3/8/8/8/8/8/8/3NK3 w - - 0 1":  true,
		"4k3/8/8/8/8/8/8/3BK3 b - - 0 1":  true,
		"4k3/8/8/8/8/8/8/2NNK3 w - - 0 1": false,
		"4k3/8/8/8/8/8/P7/4K3 w - - 0 1":  false,
		"4k3/8/8/8/8/8/8/3RK3 w - - 0 1":  false,
	}
	for fen, want := range cases {
		if got := mustFEN(t, fen).InsufficientMaterial(); got != want {
			t.Errorf("%s: got %v want %v", fen, got, want)
		}
	}
}

func TestParseFENRoundTrip(t *testing.T) {
	for _, fen := range append(crossCheckFENs, "r3k2r/8/8/8/8/8/8/R3K2R b Kq - 5 40") {
		p := mustFEN(t, fen)
		if got := p.ToFEN(); got != fen {
			t.Errorf("round trip: got %q want %q", got, fen)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", fen, err)
		}
	}
}

func TestParseFENRejectsGarbage(t *testing.T) {
	for _, fen := range []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQ - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	} {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q): got %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestMaterialSignatureTracksCaptures(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	before := p.MaterialSignature(Black)
	playMoves(t, p, "d2d5")
	if p.MaterialSignature(Black) == before {
		t.Fatalf("signature unchanged after the queen was captured")
	}
	if p.MaterialSignature(Black) != 0 || p.Material(Black) != 0 {
		t.Fatalf("bare king should have empty signature and zero material")
	}
	if p.MaterialBalance() != -PieceValue[Rook] {
		t.Fatalf("balance for black to move: got %d want %d", p.MaterialBalance(), -PieceValue[Rook])
	}
}
