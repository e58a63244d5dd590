package position

// castleRookSquares returns the rook origin and destination for a castle
// whose king lands on kingTo.
func castleRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}

// MakeMove plays m, which must be pseudo-legal. Legality is checked afterwards
// with LastMoveIllegal.
func (p *Position) MakeMove(m Move) {
	us := p.side
	from, to := m.From(), m.To()

	p.hist = append(p.hist, undo{
		move:     m,
		castling: p.castling,
		epSquare: p.epSquare,
		key:      p.key,
		pawnKey:  p.pawnKey,
		rule50:   p.rule50,
	})
	u := &p.hist[len(p.hist)-1]

	if p.epSquare != NoEnPassant {
		p.key ^= zobristEnPassant[p.epSquare.File()]
		p.epSquare = NoEnPassant
	}
	p.rule50++

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		king := p.removeAt(from)
		rook := p.removeAt(rookFrom)
		p.placeAt(king, to)
		p.placeAt(rook, rookTo)
		p.rule50 = 0
	} else {
		pc := p.removeAt(from)
		if pc.Type() == Pawn {
			p.rule50 = 0
		}
		if promo := m.Promotion(); promo != NoPieceType {
			pc = MakePiece(us, promo)
		}
		switch {
		case m.IsEnPassant():
			u.captured = p.removeAt(to ^ 8)
			p.placeAt(pc, to)
		case m.IsCapture():
			u.captured = p.replaceAt(pc, to)
			p.rule50 = 0
		default:
			p.placeAt(pc, to)
		}
		if ep := (from + to) / 2; m.IsDoublePush() && p.enPassantCapturable(ep, us.Other()) {
			p.epSquare = ep
			p.key ^= zobristEnPassant[ep.File()]
		}
	}

	if rights := p.castling & castleMask[from] & castleMask[to]; rights != p.castling {
		p.key ^= zobristCastle[p.castling] ^ zobristCastle[rights]
		p.castling = rights
	}

	p.key ^= zobristSide
	p.side = us.Other()
	if us == Black {
		p.fullmove++
	}
}

// UnmakeMove takes back m, which must be the last move made.
func (p *Position) UnmakeMove(m Move) {
	u := p.hist[len(p.hist)-1]
	p.hist = p.hist[:len(p.hist)-1]
	p.side = p.side.Other()
	us := p.side
	from, to := m.From(), m.To()

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		king := p.removeAt(to)
		rook := p.removeAt(rookTo)
		p.placeAt(king, from)
		p.placeAt(rook, rookFrom)
	} else {
		pc := p.board[to]
		if m.Promotion() != NoPieceType {
			pc = MakePiece(us, Pawn)
		}
		switch {
		case m.IsEnPassant():
			p.removeAt(to)
			p.placeAt(u.captured, to^8)
		case m.IsCapture():
			p.replaceAt(u.captured, to)
		default:
			p.removeAt(to)
		}
		p.placeAt(pc, from)
	}

	p.castling = u.castling
	p.epSquare = u.epSquare
	p.key = u.key
	p.pawnKey = u.pawnKey
	p.rule50 = u.rule50
	if us == Black {
		p.fullmove--
	}
}

// MakeNullMove passes the turn. The reversible counter restarts so repetition
// scans never cross a null move.
func (p *Position) MakeNullMove() {
	p.hist = append(p.hist, undo{
		move:     NullMove,
		castling: p.castling,
		epSquare: p.epSquare,
		key:      p.key,
		pawnKey:  p.pawnKey,
		rule50:   p.rule50,
	})
	if p.epSquare != NoEnPassant {
		p.key ^= zobristEnPassant[p.epSquare.File()]
		p.epSquare = NoEnPassant
	}
	p.key ^= zobristSide
	p.side = p.side.Other()
	p.rule50 = 0
}

// enPassantCapturable reports whether a pawn of color by stands next to the
// pawn that just skipped ep. Targets nobody can take are not recorded, so
// they never split the key of an otherwise repeated position.
func (p *Position) enPassantCapturable(ep Square, by Color) bool {
	return pawnAttacks[by.Other()][ep]&p.pieces[by][Pawn] != 0
}

// UnmakeNullMove reverts MakeNullMove.
func (p *Position) UnmakeNullMove() {
	u := p.hist[len(p.hist)-1]
	p.hist = p.hist[:len(p.hist)-1]
	p.side = p.side.Other()
	p.epSquare = u.epSquare
	p.key = u.key
	p.rule50 = u.rule50
}
