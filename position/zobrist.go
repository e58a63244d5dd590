package position

import "math/rand"

// Zobrist keys. Piece keys are indexed by the packed Piece value.
var zobristPiece [15][64]uint64
var zobristCastle [16]uint64
var zobristEnPassant [8]uint64
var zobristSide uint64

func initZobrist() {
	// Fixed seed so keys, and therefore hash-table contents, are reproducible.
	rnd := rand.New(rand.NewSource(0xC0DE))
	for pc := 0; pc < 15; pc++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[pc][sq] = rnd.Uint64()
		}
	}
	for cr := range zobristCastle {
		zobristCastle[cr] = rnd.Uint64()
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rnd.Uint64()
	}
	zobristSide = rnd.Uint64()
}

// computeKeys derives both hash keys from scratch.
func (p *Position) computeKeys() (key, pawnKey uint64) {
	for sq := Square(0); sq < 64; sq++ {
		pc := p.board[sq]
		if pc == NoPiece {
			continue
		}
		key ^= zobristPiece[pc][sq]
		if pc.Type() == Pawn {
			pawnKey ^= zobristPiece[pc][sq]
		}
	}
	key ^= zobristCastle[p.castling]
	if p.epSquare != NoEnPassant {
		key ^= zobristEnPassant[p.epSquare.File()]
	}
	if p.side == Black {
		key ^= zobristSide
	}
	return key, pawnKey
}
