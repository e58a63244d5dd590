package position

// Incremental attack maintenance. Every primitive below leaves attacksFrom
// equal to the attacks of each piece for the current occupancy, and attacksTo
// equal to its transpose.

// addAttacks records the attacks of the piece standing on sq.
func (p *Position) addAttacks(sq Square) {
	att := pieceAttacks(p.board[sq], sq, p.all)
	p.attacksFrom[sq] = att
	b := bit(sq)
	for att != 0 {
		p.attacksTo[popLSB(&att)] |= b
	}
}

// clearAttacks forgets the attacks of the piece on sq.
func (p *Position) clearAttacks(sq Square) {
	att := p.attacksFrom[sq]
	b := ^bit(sq)
	for att != 0 {
		p.attacksTo[popLSB(&att)] &= b
	}
	p.attacksFrom[sq] = 0
}

// gainAttacks extends, past sq, the ray of every slider that stopped on sq.
// Called once sq has been vacated.
func (p *Position) gainAttacks(sq Square) {
	sliders := p.attacksTo[sq] & p.sliders()
	for sliders != 0 {
		s := popLSB(&sliders)
		ext := interrupt(int(direction[s][sq]), sq, p.all)
		p.attacksFrom[s] |= ext
		b := bit(s)
		for ext != 0 {
			p.attacksTo[popLSB(&ext)] |= b
		}
	}
}

// looseAttacks truncates at sq the ray of every slider passing through it.
// Called when sq is about to be occupied.
func (p *Position) looseAttacks(sq Square) {
	sliders := p.attacksTo[sq] & p.sliders()
	for sliders != 0 {
		s := popLSB(&sliders)
		lost := rays[direction[s][sq]][sq] & p.attacksFrom[s]
		p.attacksFrom[s] &^= lost
		b := ^bit(s)
		for lost != 0 {
			p.attacksTo[popLSB(&lost)] &= b
		}
	}
}

// removeAt lifts the piece off sq and reopens the rays it was blocking.
func (p *Position) removeAt(sq Square) Piece {
	p.clearAttacks(sq)
	pc := p.clearPiece(sq)
	p.gainAttacks(sq)
	return pc
}

// placeAt drops pc on the empty square sq.
func (p *Position) placeAt(pc Piece, sq Square) {
	p.looseAttacks(sq)
	p.setPiece(pc, sq)
	p.addAttacks(sq)
}

// replaceAt swaps the piece on an occupied square; no ray changes for others.
func (p *Position) replaceAt(pc Piece, sq Square) Piece {
	p.clearAttacks(sq)
	old := p.clearPiece(sq)
	p.setPiece(pc, sq)
	p.addAttacks(sq)
	return old
}

// refreshAttacks rebuilds both tables from scratch.
func (p *Position) refreshAttacks() {
	p.attacksTo = [64]uint64{}
	p.attacksFrom = [64]uint64{}
	occ := p.all
	for occ != 0 {
		p.addAttacks(popLSB(&occ))
	}
}

// Attacked reports whether any piece of color by attacks sq.
func (p *Position) Attacked(sq Square, by Color) bool {
	return p.attacksTo[sq]&p.occupied[by] != 0
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() uint64 {
	return p.attacksTo[p.kingSq[p.side]] & p.occupied[p.side.Other()]
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.Checkers() != 0 }

// LastMoveIllegal reports whether the side that just moved left its king attacked.
func (p *Position) LastMoveIllegal() bool {
	mover := p.side.Other()
	return p.attacksTo[p.kingSq[mover]]&p.occupied[p.side] != 0
}

// AttackersOf returns every attacker of sq under a custom occupancy, using the
// static lookups. SEE uses it to uncover x-ray attackers.
func (p *Position) AttackersOf(sq Square, occ uint64) uint64 {
	rq := p.pieces[White][Rook] | p.pieces[White][Queen] | p.pieces[Black][Rook] | p.pieces[Black][Queen]
	bq := p.pieces[White][Bishop] | p.pieces[White][Queen] | p.pieces[Black][Bishop] | p.pieces[Black][Queen]
	att := RookAttacks(sq, occ)&rq |
		BishopAttacks(sq, occ)&bq |
		knightAttacks[sq]&(p.pieces[White][Knight]|p.pieces[Black][Knight]) |
		kingAttacks[sq]&(p.pieces[White][King]|p.pieces[Black][King]) |
		pawnAttacks[Black][sq]&p.pieces[White][Pawn] |
		pawnAttacks[White][sq]&p.pieces[Black][Pawn]
	return att & occ
}
