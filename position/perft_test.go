package position

import "testing"

const fenKiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustFEN(t testing.TB, fen string) *Position {
	t.Helper()
	p, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func TestPerftInitialPosition(t *testing.T) {
	want := []uint64{20, 400, 8902, 197281, 4865609}
	for i, n := range want {
		depth := i + 1
		if depth == 5 && testing.Short() {
			t.Skip("perft depth 5 skipped in short mode")
		}
		p := StartPosition()
		if got := Perft(p, depth); got != n {
			t.Fatalf("perft depth%d: got %d want %d", depth, got, n)
		}
	}
}

func TestPerftReferencePositions(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		nodes []uint64
	}{
		{"kiwipete", fenKiwipete, []uint64{48, 2039, 97862}},
		{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812, 43238}},
		{"promotions", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
		{"discovered", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379}},
		{"middlegame", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", []uint64{46, 2079, 89890}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustFEN(t, tc.fen)
			for i, n := range tc.nodes {
				if got := Perft(p, i+1); got != n {
					t.Fatalf("perft depth%d: got %d want %d", i+1, got, n)
				}
			}
			if err := p.Validate(); err != nil {
				t.Fatalf("position corrupted by perft: %v", err)
			}
		})
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	p := mustFEN(t, fenKiwipete)
	var sum uint64
	for _, n := range PerftDivide(p, 2) {
		sum += n
	}
	if sum != 2039 {
		t.Fatalf("divide total: got %d want %d", sum, 2039)
	}
	if lines := DivideLines(PerftDivide(p, 1)); len(lines) != 48 {
		t.Fatalf("divide lines: got %d want 48", len(lines))
	}
}

func BenchmarkPerftInitialD4(b *testing.B) {
	p := StartPosition()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Perft(p, 4)
	}
}

func BenchmarkPerftKiwipeteD3(b *testing.B) {
	p, err := ParseFEN(fenKiwipete)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Perft(p, 3)
	}
}

func BenchmarkGenerateMovesKiwipete(b *testing.B) {
	p, err := ParseFEN(fenKiwipete)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	buf := make([]Move, 0, 256)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = p.GeneratePseudoMoves(buf[:0])
	}
}
