package engine

import (
	"math/bits"

	"chesskernel/position"
)

// SeePieceValue weighs pieces for static exchange. The king outweighs any
// material so it only ever captures last.
var SeePieceValue = [7]int32{
	position.Pawn:   100,
	position.Knight: 300,
	position.Bishop: 300,
	position.Rook:   500,
	position.Queen:  900,
	position.King:   5000,
}

func squareBit(sq position.Square) uint64 { return 1 << uint(sq) }

func firstSquare(b uint64) position.Square { return position.Square(bits.TrailingZeros64(b)) }

// leastValuable returns the cheapest piece of side c in set.
func leastValuable(p *position.Position, set uint64, c position.Color) (position.PieceType, position.Square, bool) {
	for pt := position.Pawn; pt <= position.King; pt++ {
		if b := set & p.Pieces(c, pt); b != 0 {
			return pt, firstSquare(b), true
		}
	}
	return position.NoPieceType, 0, false
}

// SEE plays out the capture sequence started by m on its destination square,
// always recapturing with the least valuable piece, and returns the material
// result for the side making m. Sliders uncovered behind a capturer join the
// exchange. Non-captures are handled too: a quiet move scores the loss of the
// moved piece if the square is won by the opponent.
func SEE(p *position.Position, m position.Move) int32 {
	var gain [32]int32
	from, to := m.From(), m.To()
	side := p.SideToMove()
	lastRank := position.Rank8 | position.Rank1

	occ := p.All() &^ squareBit(from)
	if m.IsEnPassant() {
		occ &^= squareBit(to ^ 8)
	}
	onSquare := m.Moved()
	gain[0] = SeePieceValue[m.Captured()]
	if promo := m.Promotion(); promo != position.NoPieceType {
		gain[0] += SeePieceValue[promo] - SeePieceValue[position.Pawn]
		onSquare = promo
	}
	attackers := p.AttackersOf(to, occ)

	d := 0
	for d < len(gain)-1 {
		d++
		gain[d] = SeePieceValue[onSquare] - gain[d-1]
		if Max(-gain[d-1], gain[d]) < 0 {
			break
		}
		side = side.Other()
		pt, sq, ok := leastValuable(p, attackers&p.Occupied(side), side)
		if !ok {
			break
		}
		// The king may only take last.
		if pt == position.King && attackers&p.Occupied(side.Other())&occ != 0 {
			break
		}
		occ &^= squareBit(sq)
		attackers = p.AttackersOf(to, occ)
		onSquare = pt
		if pt == position.Pawn && squareBit(to)&lastRank != 0 {
			gain[d] += SeePieceValue[position.Queen] - SeePieceValue[position.Pawn]
			onSquare = position.Queen
		}
	}
	for d--; d > 0; d-- {
		gain[d-1] = -Max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// SEESign reports whether SEE(p, m) >= threshold, skipping the exchange when
// the first capture settles the question.
func SEESign(p *position.Position, m position.Move, threshold int32) bool {
	best := SeePieceValue[m.Captured()]
	if promo := m.Promotion(); promo != position.NoPieceType {
		best += SeePieceValue[promo] - SeePieceValue[position.Pawn]
	}
	if best < threshold {
		return false
	}
	if m.Moved() != position.King && m.Promotion() == position.NoPieceType &&
		best-SeePieceValue[m.Moved()] >= threshold {
		return true
	}
	return SEE(p, m) >= threshold
}
