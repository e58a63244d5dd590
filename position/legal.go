package position

// MayCastle reports whether the castle m is allowed: the right is still held,
// king and rook are home, the squares between them are empty, and the king is
// not in check and does not pass through or land on an attacked square.
func (p *Position) MayCastle(m Move) bool {
	if !m.IsCastle() {
		return false
	}
	us, them := p.side, p.side.Other()
	var right CastlingRights
	var kingFrom Square
	var path, transit uint64
	switch {
	case us == White && m.IsShortCastle():
		right, kingFrom = WhiteKingside, E1
		path, transit = bit(F1)|bit(G1), bit(E1)|bit(F1)|bit(G1)
	case us == White:
		right, kingFrom = WhiteQueenside, E1
		path, transit = bit(B1)|bit(C1)|bit(D1), bit(E1)|bit(D1)|bit(C1)
	case m.IsShortCastle():
		right, kingFrom = BlackKingside, E8
		path, transit = bit(F8)|bit(G8), bit(E8)|bit(F8)|bit(G8)
	default:
		right, kingFrom = BlackQueenside, E8
		path, transit = bit(B8)|bit(C8)|bit(D8), bit(E8)|bit(D8)|bit(C8)
	}
	if p.castling&right == 0 || m.From() != kingFrom {
		return false
	}
	rookFrom, _ := castleRookSquares(m.To())
	if p.board[kingFrom] != MakePiece(us, King) || p.board[rookFrom] != MakePiece(us, Rook) {
		return false
	}
	if p.all&path != 0 {
		return false
	}
	for transit != 0 {
		if p.attacksTo[popLSB(&transit)]&p.occupied[them] != 0 {
			return false
		}
	}
	return true
}

// PseudoLegal looks m up among the pseudo-legal moves of its origin square and
// returns the generated move, carrying the flags valid in this position.
// Killer and hash moves pass through here before they are searched.
func (p *Position) PseudoLegal(m Move) (Move, bool) {
	if m == NoMove || m.IsNull() {
		return NoMove, false
	}
	from := m.From()
	pc := p.board[from]
	if pc == NoPiece || pc.Color() != p.side {
		return NoMove, false
	}
	var buf [32]Move
	for _, g := range p.MovesFrom(buf[:0], from) {
		if g.Same(m) {
			return g, true
		}
	}
	return NoMove, false
}

// LegalMove reports whether m is legal in the current position.
func (p *Position) LegalMove(m Move) bool {
	g, ok := p.PseudoLegal(m)
	if !ok {
		return false
	}
	p.MakeMove(g)
	legal := !p.LastMoveIllegal()
	p.UnmakeMove(g)
	return legal
}

// IsCheckingMove reports whether the pseudo-legal move m gives check, directly
// or by discovery.
func (p *Position) IsCheckingMove(m Move) bool {
	us, them := p.side, p.side.Other()
	ek := p.kingSq[them]
	from, to := m.From(), m.To()

	occ := p.all&^bit(from) | bit(to)
	rq := (p.pieces[us][Rook] | p.pieces[us][Queen]) &^ bit(from)
	bq := (p.pieces[us][Bishop] | p.pieces[us][Queen]) &^ bit(from)

	pt := m.Moved()
	if promo := m.Promotion(); promo != NoPieceType {
		pt = promo
	}
	switch {
	case m.IsEnPassant():
		occ &^= bit(to ^ 8)
	case m.IsCastle():
		rookFrom, rookTo := castleRookSquares(to)
		occ = occ&^bit(rookFrom) | bit(rookTo)
		rq = rq&^bit(rookFrom) | bit(rookTo)
	}

	if pt != King && pieceAttacks(MakePiece(us, pt), to, occ)&bit(ek) != 0 {
		return true
	}
	return RookAttacks(ek, occ)&rq != 0 || BishopAttacks(ek, occ)&bq != 0
}

// blockersFor returns the pieces of color c that alone shield ksq from a
// slider of color c. Moving one of them off the line discovers check.
func (p *Position) blockersFor(ksq Square, c Color) uint64 {
	snipers := RookAttacks(ksq, 0)&(p.pieces[c][Rook]|p.pieces[c][Queen]) |
		BishopAttacks(ksq, 0)&(p.pieces[c][Bishop]|p.pieces[c][Queen])
	var blockers uint64
	for snipers != 0 {
		s := popLSB(&snipers)
		b := between[s][ksq] & p.all
		if b != 0 && b&(b-1) == 0 && b&p.occupied[c] != 0 {
			blockers |= b
		}
	}
	return blockers
}

// GenerateChecks appends the quiet moves that give check: direct checks by
// piece type and moves of discovered-check candidates.
func (p *Position) GenerateChecks(dst []Move) []Move {
	us, them := p.side, p.side.Other()
	ek := p.kingSq[them]
	discover := p.blockersFor(ek, us)

	var direct [7]uint64
	direct[Pawn] = pawnAttacks[them][ek]
	direct[Knight] = knightAttacks[ek]
	direct[Bishop] = BishopAttacks(ek, p.all)
	direct[Rook] = RookAttacks(ek, p.all)
	direct[Queen] = direct[Bishop] | direct[Rook]

	var buf [256]Move
	for _, m := range p.GenerateQuiets(buf[:0]) {
		if bit(m.To())&direct[m.Moved()] == 0 && bit(m.From())&discover == 0 && !m.IsCastle() {
			continue
		}
		if p.IsCheckingMove(m) {
			dst = append(dst, m)
		}
	}
	return dst
}

// Repeated counts the earlier positions in the log, inside the reversible-move
// window, that match the current one.
func (p *Position) Repeated() int {
	n := len(p.hist)
	limit := n - p.rule50
	if limit < 0 {
		limit = 0
	}
	count := 0
	for i := n - 2; i >= limit; i -= 2 {
		if p.hist[i].key == p.key {
			count++
		}
	}
	return count
}

// IsRepetition reports whether the current position occurred before.
func (p *Position) IsRepetition() bool { return p.Repeated() > 0 }

// IsFiftyMoveDraw reports whether a hundred reversible plies have been played.
func (p *Position) IsFiftyMoveDraw() bool { return p.rule50 >= 100 }

// InsufficientMaterial reports positions where neither side can mate:
// bare kings, or a single minor piece against a bare king.
func (p *Position) InsufficientMaterial() bool {
	if p.pieces[White][Pawn]|p.pieces[Black][Pawn] != 0 {
		return false
	}
	if p.nonPawn[White] > PieceValue[Bishop] || p.nonPawn[Black] > PieceValue[Bishop] {
		return false
	}
	return p.nonPawn[White] == 0 || p.nonPawn[Black] == 0
}
