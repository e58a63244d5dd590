package engine

import (
	"testing"

	"chesskernel/position"
)

func playMoves(t *testing.T, p *position.Position, moves ...string) {
	t.Helper()
	for _, s := range moves {
		p.MakeMove(mustMove(t, p, s))
	}
}

func TestECOBookSuggestsLegalContinuation(t *testing.T) {
	book := NewECOBook()
	p := position.StartPosition()
	for i := 0; i < 4; i++ {
		m, ok := book.BookMove(p)
		if !ok {
			t.Fatalf("no book move after %d plies", i)
		}
		if !p.LegalMove(m) {
			t.Fatalf("book move %s is illegal", m)
		}
		p.MakeMove(m)
	}
}

func TestECOBookNamesOpening(t *testing.T) {
	book := NewECOBook()
	p := position.StartPosition()
	playMoves(t, p, "e2e4", "e7e5", "g1f3", "b8c6", "f1b5")
	if name := book.Opening(p); name == "" {
		t.Fatal("no opening name for 1.e4 e5 2.Nf3 Nc6 3.Bb5")
	}
}

func TestECOBookIgnoresSetUpPositions(t *testing.T) {
	book := NewECOBook()
	p := mustPosition(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if m, ok := book.BookMove(p); ok {
		t.Fatalf("book answered %s for a position without history", m)
	}
	if name := book.Opening(p); name != "" {
		t.Fatalf("named %q for a position without history", name)
	}
}

func TestECOBookOutOfTheory(t *testing.T) {
	book := NewECOBook()
	p := position.StartPosition()
	playMoves(t, p, "g1h3", "a7a6", "h3g1", "a6a5", "g1h3", "a5a4")
	if m, ok := book.BookMove(p); ok {
		t.Fatalf("book answered %s far outside theory", m)
	}
}
