package position

import "fmt"

// Validate recomputes every derived field from the piece placement and
// reports the first disagreement with the incrementally maintained state.
func (p *Position) Validate() error {
	var occ [2]uint64
	for sq := Square(0); sq < 64; sq++ {
		pc := p.board[sq]
		if pc == NoPiece {
			continue
		}
		if p.pieces[pc.Color()][pc.Type()]&bit(sq) == 0 {
			return fmt.Errorf("piece %c on %s missing from its bitboard", charFromPiece(pc), sq)
		}
		occ[pc.Color()] |= bit(sq)
	}
	for c := White; c <= Black; c++ {
		var union uint64
		for pt := Pawn; pt <= King; pt++ {
			union |= p.pieces[c][pt]
		}
		if union != p.occupied[c] || occ[c] != p.occupied[c] {
			return fmt.Errorf("occupancy of %s out of sync", c)
		}
		if p.pieces[c][King] != bit(p.kingSq[c]) {
			return fmt.Errorf("king square of %s is %s", c, p.kingSq[c])
		}
		var mat, nonPawn int32
		for pt := Pawn; pt <= Queen; pt++ {
			v := int32(popCount(p.pieces[c][pt])) * PieceValue[pt]
			mat += v
			if pt != Pawn {
				nonPawn += v
			}
		}
		if mat != p.material[c] || nonPawn != p.nonPawn[c] {
			return fmt.Errorf("material of %s is %d/%d, want %d/%d", c, p.material[c], p.nonPawn[c], mat, nonPawn)
		}
		if sig := p.computeSignature(c); sig != p.signature[c] {
			return fmt.Errorf("material signature of %s is %#x, want %#x", c, p.signature[c], sig)
		}
	}
	if p.all != p.occupied[White]|p.occupied[Black] {
		return fmt.Errorf("aggregate occupancy out of sync")
	}

	for sq := Square(0); sq < 64; sq++ {
		want := uint64(0)
		if pc := p.board[sq]; pc != NoPiece {
			want = pieceAttacks(pc, sq, p.all)
		}
		if p.attacksFrom[sq] != want {
			return fmt.Errorf("attacks-from %s is %#x, want %#x", sq, p.attacksFrom[sq], want)
		}
	}
	for s := Square(0); s < 64; s++ {
		for t := Square(0); t < 64; t++ {
			to := p.attacksTo[s]&bit(t) != 0
			from := p.attacksFrom[t]&bit(s) != 0
			if to != from {
				return fmt.Errorf("attacks-to %s and attacks-from %s disagree", s, t)
			}
		}
	}

	key, pawnKey := p.computeKeys()
	if key != p.key {
		return fmt.Errorf("hash key %#x, want %#x", p.key, key)
	}
	if pawnKey != p.pawnKey {
		return fmt.Errorf("pawn key %#x, want %#x", p.pawnKey, pawnKey)
	}
	return nil
}
