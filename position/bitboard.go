package position

import "math/bits"

const (
	FileA uint64 = 0x0101010101010101
	FileB uint64 = FileA << 1
	FileG uint64 = FileA << 6
	FileH uint64 = FileA << 7

	Rank1 uint64 = 0xFF
	Rank2 uint64 = Rank1 << 8
	Rank3 uint64 = Rank1 << 16
	Rank4 uint64 = Rank1 << 24
	Rank5 uint64 = Rank1 << 32
	Rank6 uint64 = Rank1 << 40
	Rank7 uint64 = Rank1 << 48
	Rank8 uint64 = Rank1 << 56
)

// Ray directions, opposite pairs adjacent so d^1 reverses d. N, E, NE and NW
// walk towards higher square indices.
const (
	dirN = iota
	dirS
	dirE
	dirW
	dirNE
	dirSW
	dirNW
	dirSE
	numDirs
	noDir = -1
)

var dirStep = [numDirs][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {-1, -1}, {-1, 1}, {1, -1},
}

// Static attack tables.
var knightAttacks [64]uint64
var kingAttacks [64]uint64
var pawnAttacks [2][64]uint64

// rays[d][sq] is every square reachable from sq along d on an empty board.
var rays [numDirs][64]uint64

// direction[a][b] is the ray direction leading from a to b, or noDir.
var direction [64][64]int8

// between[a][b] holds the squares strictly between two aligned squares.
var between [64][64]uint64

func init() {
	initLeaperTables()
	initRays()
	initMagics()
	initZobrist()
}

func bit(sq Square) uint64 { return 1 << uint(sq) }

func lsb(b uint64) Square { return Square(bits.TrailingZeros64(b)) }

func msb(b uint64) Square { return Square(63 - bits.LeadingZeros64(b)) }

func popLSB(b *uint64) Square {
	sq := Square(bits.TrailingZeros64(*b))
	*b &= *b - 1
	return sq
}

func popCount(b uint64) int { return bits.OnesCount64(b) }

func onBoard(file, rank int) bool { return file >= 0 && file < 8 && rank >= 0 && rank < 8 }

func initLeaperTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		for _, off := range knightOffsets {
			if f, r := file+off[0], rank+off[1]; onBoard(f, r) {
				knightAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		for _, step := range dirStep {
			if f, r := file+step[0], rank+step[1]; onBoard(f, r) {
				kingAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		for _, df := range [2]int{-1, 1} {
			if onBoard(file+df, rank+1) {
				pawnAttacks[White][sq] |= 1 << uint((rank+1)*8+file+df)
			}
			if onBoard(file+df, rank-1) {
				pawnAttacks[Black][sq] |= 1 << uint((rank-1)*8+file+df)
			}
		}
	}
}

func initRays() {
	for a := 0; a < 64; a++ {
		for b := 0; b < 64; b++ {
			direction[a][b] = noDir
		}
	}
	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		for d, step := range dirStep {
			var walked uint64
			f, r := file+step[0], rank+step[1]
			for onBoard(f, r) {
				t := r*8 + f
				direction[sq][t] = int8(d)
				between[sq][t] = walked
				walked |= 1 << uint(t)
				f += step[0]
				r += step[1]
			}
			rays[d][sq] = walked
		}
	}
}

func positiveDir(d int) bool {
	return d == dirN || d == dirE || d == dirNE || d == dirNW
}

// interrupt returns the part of the ray from sq along d that a slider standing
// behind sq sees: every square up to and including the first blocker in occ.
func interrupt(d int, sq Square, occ uint64) uint64 {
	ray := rays[d][sq]
	blockers := ray & occ
	if blockers == 0 {
		return ray
	}
	var first Square
	if positiveDir(d) {
		first = lsb(blockers)
	} else {
		first = msb(blockers)
	}
	return ray &^ rays[d][first]
}

// Aligned reports whether a, b and c lie on one line.
func Aligned(a, b, c Square) bool {
	d := direction[a][b]
	if d == noDir {
		return false
	}
	return a == c || (rays[d][a]|rays[d^1][a])&bit(c) != 0
}

// Between returns the squares strictly between a and b, or 0 when they are not aligned.
func Between(a, b Square) uint64 { return between[a][b] }

// KnightAttacks returns the knight attack mask from sq.
func KnightAttacks(sq Square) uint64 { return knightAttacks[sq] }

// KingAttacks returns the king attack mask from sq.
func KingAttacks(sq Square) uint64 { return kingAttacks[sq] }

// PawnAttacks returns the capture squares of a pawn of color c on sq.
func PawnAttacks(c Color, sq Square) uint64 { return pawnAttacks[c][sq] }

// QueenAttacks combines the two magic lookups.
func QueenAttacks(sq Square, occ uint64) uint64 {
	return RookAttacks(sq, occ) | BishopAttacks(sq, occ)
}

func pieceAttacks(pc Piece, sq Square, occ uint64) uint64 {
	switch pc.Type() {
	case Pawn:
		return pawnAttacks[pc.Color()][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occ)
	case Rook:
		return RookAttacks(sq, occ)
	case Queen:
		return QueenAttacks(sq, occ)
	case King:
		return kingAttacks[sq]
	}
	return 0
}
