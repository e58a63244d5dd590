package position

// Pseudo-legal move generation. Every generator appends to dst and returns it
// so callers can stage moves in a reusable buffer.

const fullMask = ^uint64(0)

var promotionOrder = [4]PieceType{Queen, Knight, Rook, Bishop}

func promotionRank(c Color) uint64 {
	if c == White {
		return Rank8
	}
	return Rank1
}

func pushDelta(c Color) int {
	if c == White {
		return 8
	}
	return -8
}

func appendPromotions(dst []Move, m Move) []Move {
	for _, pt := range promotionOrder {
		dst = append(dst, m.WithPromotion(pt))
	}
	return dst
}

// CapturesTo appends every capture of the piece on sq by the side to move,
// read from the attacks-to table. Pawns reaching the last rank yield all four
// promotions. En passant is handled by genEnPassant.
func (p *Position) CapturesTo(dst []Move, sq Square) []Move {
	return p.capturesTo(dst, sq, fullMask)
}

func (p *Position) capturesTo(dst []Move, sq Square, fromMask uint64) []Move {
	us := p.side
	victim := p.board[sq]
	if victim == NoPiece || victim.Color() == us {
		return dst
	}
	attackers := p.attacksTo[sq] & p.occupied[us] & fromMask
	for attackers != 0 {
		from := popLSB(&attackers)
		pt := p.board[from].Type()
		m := NewMove(from, sq, pt, victim.Type(), FlagCapture)
		if pt == Pawn && bit(sq)&promotionRank(us) != 0 {
			dst = appendPromotions(dst, m)
		} else {
			dst = append(dst, m)
		}
	}
	return dst
}

// genEnPassant appends en-passant captures when the target or the captured
// pawn lies in targets.
func (p *Position) genEnPassant(dst []Move, fromMask, targets uint64) []Move {
	ep := p.epSquare
	if ep == NoEnPassant || targets&(bit(ep)|bit(ep^8)) == 0 {
		return dst
	}
	us := p.side
	if p.board[ep^8] != MakePiece(us.Other(), Pawn) {
		return dst
	}
	att := pawnAttacks[us.Other()][ep] & p.pieces[us][Pawn] & fromMask
	for att != 0 {
		from := popLSB(&att)
		dst = append(dst, NewMove(from, ep, Pawn, Pawn, FlagCapture|FlagEnPassant))
	}
	return dst
}

// genPawnPushes appends single and double pushes landing in targets.
// Promotions and non-promoting pushes are selected separately.
func (p *Position) genPawnPushes(dst []Move, fromMask, targets uint64, promotions, quiets bool) []Move {
	us := p.side
	delta := pushDelta(us)
	startRank := Rank2
	if us == Black {
		startRank = Rank7
	}
	pawns := p.pieces[us][Pawn] & fromMask
	for pawns != 0 {
		from := popLSB(&pawns)
		to := Square(int(from) + delta)
		if p.all&bit(to) != 0 {
			continue
		}
		if bit(to)&promotionRank(us) != 0 {
			if promotions && targets&bit(to) != 0 {
				dst = appendPromotions(dst, NewMove(from, to, Pawn, NoPieceType, 0))
			}
			continue
		}
		if !quiets {
			continue
		}
		if targets&bit(to) != 0 {
			dst = append(dst, NewMove(from, to, Pawn, NoPieceType, 0))
		}
		if bit(from)&startRank != 0 {
			to2 := Square(int(to) + delta)
			if p.all&bit(to2) == 0 && targets&bit(to2) != 0 {
				dst = append(dst, NewMove(from, to2, Pawn, NoPieceType, FlagDoublePush))
			}
		}
	}
	return dst
}

// genPieceMoves appends knight, slider and king moves of type pt onto targets.
func (p *Position) genPieceMoves(dst []Move, pt PieceType, fromMask, targets uint64) []Move {
	us := p.side
	targets &^= p.occupied[us]
	pcs := p.pieces[us][pt] & fromMask
	for pcs != 0 {
		from := popLSB(&pcs)
		att := pieceAttacks(MakePiece(us, pt), from, p.all) & targets
		for att != 0 {
			to := popLSB(&att)
			if victim := p.board[to]; victim != NoPiece {
				dst = append(dst, NewMove(from, to, pt, victim.Type(), FlagCapture))
			} else {
				dst = append(dst, NewMove(from, to, pt, NoPieceType, 0))
			}
		}
	}
	return dst
}

func (p *Position) genCastles(dst []Move, fromMask uint64) []Move {
	us := p.side
	kingFrom, short, long := E1, G1, C1
	if us == Black {
		kingFrom, short, long = E8, G8, C8
	}
	if fromMask&bit(kingFrom) == 0 {
		return dst
	}
	if m := NewMove(kingFrom, short, King, NoPieceType, FlagShortCastle); p.MayCastle(m) {
		dst = append(dst, m)
	}
	if m := NewMove(kingFrom, long, King, NoPieceType, FlagLongCastle); p.MayCastle(m) {
		dst = append(dst, m)
	}
	return dst
}

func (p *Position) genCaptures(dst []Move, fromMask, victims uint64) []Move {
	them := p.side.Other()
	targets := victims & p.occupied[them] &^ p.pieces[them][King]
	for targets != 0 {
		dst = p.capturesTo(dst, popLSB(&targets), fromMask)
	}
	dst = p.genEnPassant(dst, fromMask, victims)
	return dst
}

func (p *Position) genQuiets(dst []Move, fromMask uint64) []Move {
	empty := ^p.all
	dst = p.genPawnPushes(dst, fromMask, empty, false, true)
	for pt := Knight; pt <= King; pt++ {
		dst = p.genPieceMoves(dst, pt, fromMask, empty)
	}
	return p.genCastles(dst, fromMask)
}

// GenerateCaptures appends all captures, en-passant captures and every
// promotion, capturing or not.
func (p *Position) GenerateCaptures(dst []Move) []Move {
	dst = p.genCaptures(dst, fullMask, fullMask)
	return p.genPawnPushes(dst, fullMask, ^p.all, true, false)
}

// GenerateCapturesOf restricts capture generation to the given victims.
// Quiescence search uses it to skip piece classes that cannot raise alpha.
// Non-capturing promotions are included when withPromotions is set.
func (p *Position) GenerateCapturesOf(dst []Move, victims uint64, withPromotions bool) []Move {
	dst = p.genCaptures(dst, fullMask, victims)
	if withPromotions {
		dst = p.genPawnPushes(dst, fullMask, ^p.all, true, false)
	}
	return dst
}

// GenerateQuiets appends non-capturing, non-promoting moves including castles.
func (p *Position) GenerateQuiets(dst []Move) []Move {
	return p.genQuiets(dst, fullMask)
}

// GeneratePseudoMoves appends every pseudo-legal move.
func (p *Position) GeneratePseudoMoves(dst []Move) []Move {
	dst = p.GenerateCaptures(dst)
	return p.GenerateQuiets(dst)
}

// MovesFrom appends the pseudo-legal moves of the piece standing on sq.
func (p *Position) MovesFrom(dst []Move, sq Square) []Move {
	pc := p.board[sq]
	if pc == NoPiece || pc.Color() != p.side {
		return dst
	}
	from := bit(sq)
	dst = p.genCaptures(dst, from, fullMask)
	dst = p.genPawnPushes(dst, from, ^p.all, true, false)
	return p.genQuiets(dst, from)
}

// GenerateEvasions appends moves that may resolve a check: king steps to
// squares not attacked, captures of a single checker and interpositions on
// its ray. Without check it falls back to all pseudo-legal moves.
func (p *Position) GenerateEvasions(dst []Move) []Move {
	checkers := p.Checkers()
	if checkers == 0 {
		return p.GeneratePseudoMoves(dst)
	}
	us, them := p.side, p.side.Other()
	ksq := p.kingSq[us]

	// Squares behind the king on a slider's line stay attacked once it steps away.
	var xray uint64
	for c := checkers & p.sliders(); c != 0; {
		s := popLSB(&c)
		xray |= rays[direction[s][ksq]][ksq]
	}
	steps := kingAttacks[ksq] &^ p.occupied[us] &^ xray
	for steps != 0 {
		to := popLSB(&steps)
		if p.attacksTo[to]&p.occupied[them] != 0 {
			continue
		}
		if victim := p.board[to]; victim != NoPiece {
			dst = append(dst, NewMove(ksq, to, King, victim.Type(), FlagCapture))
		} else {
			dst = append(dst, NewMove(ksq, to, King, NoPieceType, 0))
		}
	}
	if popCount(checkers) > 1 {
		return dst
	}

	checker := lsb(checkers)
	block := between[checker][ksq]
	others := ^p.pieces[us][King]
	dst = p.capturesTo(dst, checker, others)
	dst = p.genEnPassant(dst, others, checkers|block)
	if block != 0 {
		dst = p.genPawnPushes(dst, others, block, true, true)
		for pt := Knight; pt <= Queen; pt++ {
			dst = p.genPieceMoves(dst, pt, others, block)
		}
	}
	return dst
}

// PLegalMoves returns all pseudo-legal moves.
func (p *Position) PLegalMoves() []Move {
	return p.GeneratePseudoMoves(make([]Move, 0, 64))
}

// LegalMoves returns the pseudo-legal moves that do not leave the mover's
// king attacked.
func (p *Position) LegalMoves() []Move {
	var buf [256]Move
	var moves []Move
	if p.InCheck() {
		moves = p.GenerateEvasions(buf[:0])
	} else {
		moves = p.GeneratePseudoMoves(buf[:0])
	}
	legal := make([]Move, 0, len(moves))
	for _, m := range moves {
		p.MakeMove(m)
		if !p.LastMoveIllegal() {
			legal = append(legal, m)
		}
		p.UnmakeMove(m)
	}
	return legal
}

// HasLegalMove reports whether the side to move has any legal move.
func (p *Position) HasLegalMove() bool {
	var buf [256]Move
	moves := p.GenerateEvasions(buf[:0])
	for _, m := range moves {
		p.MakeMove(m)
		ok := !p.LastMoveIllegal()
		p.UnmakeMove(m)
		if ok {
			return true
		}
	}
	return false
}
