package position

import (
	"fmt"
	"sort"
)

// Perft counts the leaf nodes of the legal move tree of the given depth.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	var buf [256]Move
	var moves []Move
	if p.InCheck() {
		moves = p.GenerateEvasions(buf[:0])
	} else {
		moves = p.GeneratePseudoMoves(buf[:0])
	}
	var nodes uint64
	for _, m := range moves {
		p.MakeMove(m)
		if !p.LastMoveIllegal() {
			if depth == 1 {
				nodes++
			} else {
				nodes += Perft(p, depth-1)
			}
		}
		p.UnmakeMove(m)
	}
	return nodes
}

// PerftDivide returns the perft count below each legal root move.
func PerftDivide(p *Position, depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range p.LegalMoves() {
		p.MakeMove(m)
		out[m] = Perft(p, depth-1)
		p.UnmakeMove(m)
	}
	return out
}

// DivideLines formats a divide map as sorted "move: count" lines.
func DivideLines(div map[Move]uint64) []string {
	lines := make([]string, 0, len(div))
	for m, n := range div {
		lines = append(lines, fmt.Sprintf("%s: %d", m, n))
	}
	sort.Strings(lines)
	return lines
}
