package position

import "fmt"

// Color of a side. White = 0, Black = 1.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

// PieceType values 1..6; 0 means no piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece packs the type in the low 3 bits and the color in bit 3 (Black = type|8).
type Piece uint8

const NoPiece Piece = 0

// MakePiece builds a colored piece.
func MakePiece(c Color, pt PieceType) Piece { return Piece(pt) | Piece(c)<<3 }

// Type returns the piece type.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the piece color. Meaningless for NoPiece.
func (p Piece) Color() Color { return Color(p >> 3) }

// Square indexes the board from a1 = 0 to h8 = 63.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// NoEnPassant marks an absent en-passant target. a1 can never be one.
const NoEnPassant Square = 0

// File returns 0..7 for a..h.
func (sq Square) File() int { return int(sq) & 7 }

// Rank returns 0..7 for ranks 1..8.
func (sq Square) Rank() int { return int(sq) >> 3 }

func (sq Square) String() string {
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare reads a square in "e4" form.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("bad square %q", s)
	}
	return Square(int(s[1]-'1')*8 + int(s[0]-'a')), nil
}

// CastlingRights is a bitmask of the four castling options.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = 15
)

// castleMask[sq] clears the rights lost when a move touches sq.
var castleMask = func() (m [64]CastlingRights) {
	for i := range m {
		m[i] = AllCastling
	}
	m[E1] &^= WhiteKingside | WhiteQueenside
	m[H1] &^= WhiteKingside
	m[A1] &^= WhiteQueenside
	m[E8] &^= BlackKingside | BlackQueenside
	m[H8] &^= BlackKingside
	m[A8] &^= BlackQueenside
	return m
}()

// PieceValue is the material weight used for material sums and signatures.
var PieceValue = [7]int32{0, 100, 300, 300, 500, 900, 0}

// undo is one slot of the history log: the irreversible state saved before a move.
type undo struct {
	move     Move
	captured Piece
	castling CastlingRights
	epSquare Square
	key      uint64
	pawnKey  uint64
	rule50   int
}

// Position is the mutable board state. attacksTo and attacksFrom are kept in
// sync with the occupancy after every Make/Unmake.
type Position struct {
	pieces   [2][7]uint64
	occupied [2]uint64
	all      uint64
	board    [64]Piece

	attacksTo   [64]uint64
	attacksFrom [64]uint64

	key     uint64
	pawnKey uint64

	castling CastlingRights
	epSquare Square
	side     Color
	kingSq   [2]Square

	material  [2]int32
	nonPawn   [2]int32
	signature [2]uint16

	rule50   int
	fullmove int
	hist     []undo
}

// Clone returns a deep copy including the history log.
func (p *Position) Clone() *Position {
	c := *p
	c.hist = make([]undo, len(p.hist), cap(p.hist))
	copy(c.hist, p.hist)
	return &c
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color { return p.side }

// Key returns the Zobrist key of the position.
func (p *Position) Key() uint64 { return p.key }

// PawnKey returns the pawn-only Zobrist key.
func (p *Position) PawnKey() uint64 { return p.pawnKey }

// PieceAt returns the piece on sq or NoPiece.
func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

// Pieces returns the bitboard of one color and piece type.
func (p *Position) Pieces(c Color, pt PieceType) uint64 { return p.pieces[c][pt] }

// Occupied returns the occupancy of one color.
func (p *Position) Occupied(c Color) uint64 { return p.occupied[c] }

// All returns the occupancy of both colors.
func (p *Position) All() uint64 { return p.all }

// AttacksTo returns the squares whose pieces attack sq.
func (p *Position) AttacksTo(sq Square) uint64 { return p.attacksTo[sq] }

// AttacksFrom returns the squares attacked by the piece on sq.
func (p *Position) AttacksFrom(sq Square) uint64 { return p.attacksFrom[sq] }

// KingSquare returns the king location of c.
func (p *Position) KingSquare(c Color) Square { return p.kingSq[c] }

// Castling returns the castling rights.
func (p *Position) Castling() CastlingRights { return p.castling }

// EnPassant returns the en-passant target or NoEnPassant.
func (p *Position) EnPassant() Square { return p.epSquare }

// Material returns the sum of piece values of c.
func (p *Position) Material(c Color) int32 { return p.material[c] }

// NonPawnMaterial returns the material of c excluding pawns.
func (p *Position) NonPawnMaterial(c Color) int32 { return p.nonPawn[c] }

// MaterialBalance is material from the side to move's point of view.
func (p *Position) MaterialBalance() int32 {
	return p.material[p.side] - p.material[p.side.Other()]
}

// MaterialSignature returns the compact material signature of c.
func (p *Position) MaterialSignature(c Color) uint16 { return p.signature[c] }

// Rule50 returns the reversible-move counter.
func (p *Position) Rule50() int { return p.rule50 }

// Ply returns the number of moves made on this position since it was created.
func (p *Position) Ply() int { return len(p.hist) }

// LastMove returns the move that led to this position, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.hist) == 0 {
		return NoMove
	}
	return p.hist[len(p.hist)-1].move
}

// LastCaptured returns the piece captured by the last move.
func (p *Position) LastCaptured() Piece {
	if len(p.hist) == 0 {
		return NoPiece
	}
	return p.hist[len(p.hist)-1].captured
}

// Moves returns the moves made since the position was created, oldest first.
func (p *Position) Moves() []Move {
	out := make([]Move, len(p.hist))
	for i, u := range p.hist {
		out[i] = u.move
	}
	return out
}

// sliders returns the bishops, rooks and queens of both colors.
func (p *Position) sliders() uint64 {
	return p.pieces[White][Bishop] | p.pieces[White][Rook] | p.pieces[White][Queen] |
		p.pieces[Black][Bishop] | p.pieces[Black][Rook] | p.pieces[Black][Queen]
}

// signature layout: bit 0 pawns present, then two saturating bits each for
// knights, bishops, rooks and queens.
func (p *Position) computeSignature(c Color) uint16 {
	sig := uint16(0)
	if p.pieces[c][Pawn] != 0 {
		sig = 1
	}
	for i, pt := range [4]PieceType{Knight, Bishop, Rook, Queen} {
		n := popCount(p.pieces[c][pt])
		if n > 3 {
			n = 3
		}
		sig |= uint16(n) << uint(1+2*i)
	}
	return sig
}

// setPiece puts pc on an empty square and updates everything but the attack tables.
func (p *Position) setPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	b := bit(sq)
	p.board[sq] = pc
	p.pieces[c][pt] |= b
	p.occupied[c] |= b
	p.all |= b
	p.key ^= zobristPiece[pc][sq]
	switch pt {
	case Pawn:
		p.pawnKey ^= zobristPiece[pc][sq]
	case King:
		p.kingSq[c] = sq
		return
	default:
		p.nonPawn[c] += PieceValue[pt]
	}
	p.material[c] += PieceValue[pt]
	p.signature[c] = p.computeSignature(c)
}

// clearPiece is the inverse of setPiece.
func (p *Position) clearPiece(sq Square) Piece {
	pc := p.board[sq]
	c, pt := pc.Color(), pc.Type()
	b := bit(sq)
	p.board[sq] = NoPiece
	p.pieces[c][pt] &^= b
	p.occupied[c] &^= b
	p.all &^= b
	p.key ^= zobristPiece[pc][sq]
	switch pt {
	case Pawn:
		p.pawnKey ^= zobristPiece[pc][sq]
	case King:
		return pc
	default:
		p.nonPawn[c] -= PieceValue[pt]
	}
	p.material[c] -= PieceValue[pt]
	p.signature[c] = p.computeSignature(c)
	return pc
}
