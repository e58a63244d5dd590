package engine

import (
	"math/bits"

	"chesskernel/position"
)

// Evaluator is the static evaluation used by the search. Scores are from the
// side to move's point of view.
type Evaluator interface {
	Evaluate(p *position.Position) int32
}

// TablebaseProber returns an exact score for positions it knows.
type TablebaseProber interface {
	Probe(p *position.Position, ply int) (int32, bool)
}

// BookProber suggests a move for positions in an opening book.
type BookProber interface {
	BookMove(p *position.Position) (position.Move, bool)
}

// FlipView maps a square to the same square seen from black's side.
func FlipView(sq position.Square) position.Square { return sq ^ 56 }

func relativeSquare(sq position.Square, c position.Color) position.Square {
	if c == position.Black {
		return FlipView(sq)
	}
	return sq
}

// =============================================================================
// PIECE SQUARE TABLES (a1 first, white's point of view)
// =============================================================================
var PSQT_MG = [7][64]int32{
	position.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		-46, -41, -42, -39, -40, -12, 1, -21,
		-51, -52, -45, -45, -37, -37, -20, -30,
		-46, -40, -33, -33, -23, -26, -15, -30,
		-36, -27, -27, -11, 1, 2, -4, -21,
		-33, -6, 7, 13, 27, 57, 19, -11,
		57, 54, 55, 54, 46, 32, 4, 9,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	position.Knight: {
		-24, -28, -46, -30, -25, -21, -27, -40,
		-35, -32, -18, -10, -14, -12, -20, -18,
		-25, -8, -4, 6, 7, -1, -1, -17,
		-14, -1, 8, 5, 13, 10, 26, -1,
		-5, 8, 30, 35, 24, 43, 19, 22,
		-21, 12, 40, 49, 67, 64, 37, 14,
		-17, -12, 20, 33, 33, 37, -8, 3,
		-61, -6, -12, -2, 1, -6, -1, -16,
	},
	position.Bishop: {
		4, -2, -15, -21, -18, -8, -8, 2,
		4, 8, 11, -2, 1, 5, 20, 11,
		-2, 11, 8, 13, 10, 8, 10, 13,
		-7, 10, 15, 21, 26, 11, 10, 7,
		-4, 22, 24, 49, 34, 37, 20, 6,
		4, 18, 36, 36, 47, 55, 37, 24,
		-22, 6, 3, -7, 4, 14, -3, 8,
		-27, -8, -13, -12, -8, -21, 1, -10,
	},
	position.Rook: {
		-46, -41, -37, -34, -36, -40, -19, -42,
		-71, -45, -44, -43, -47, -37, -25, -51,
		-60, -46, -50, -44, -47, -48, -21, -38,
		-49, -45, -43, -35, -37, -34, -13, -29,
		-33, -21, -11, 6, 0, 7, 8, 2,
		-22, 10, 4, 25, 41, 38, 44, 20,
		-3, -5, 16, 28, 31, 37, 9, 30,
		23, 22, 19, 24, 23, 20, 21, 34,
	},
	position.Queen: {
		-6, -17, -12, -3, -6, -28, -27, -12,
		-11, -4, 2, -2, -1, 7, 8, -7,
		-8, -1, -2, -4, -4, -1, 8, 7,
		-5, -3, -2, -6, -6, 10, 7, 16,
		-11, -6, -2, -1, 12, 22, 26, 26,
		-13, -6, -1, 14, 36, 58, 71, 42,
		-11, -40, 5, 5, 20, 44, -2, 27,
		0, 16, 21, 29, 36, 38, 25, 36,
	},
	position.King: {
		-4, 36, -1, -69, -23, -74, 19, 26,
		12, 0, -18, -53, -33, -39, 7, 25,
		-6, -4, -3, -11, -6, -8, 4, -15,
		-1, 8, 16, 10, 15, 12, 23, -9,
		0, 9, 16, 10, 13, 15, 15, -8,
		1, 11, 12, 9, 8, 14, 12, 0,
		-2, 6, 6, 2, 3, 4, 3, -2,
		-1, 0, 0, 2, 0, 0, 0, -2,
	},
}
var PSQT_EG = [7][64]int32{
	position.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		-9, -8, -4, -2, 7, 2, -14, -29,
		-16, -17, -13, -12, -9, -12, -26, -29,
		-8, -10, -19, -18, -19, -17, -22, -21,
		3, -2, -5, -23, -16, -14, -10, -12,
		21, 22, 21, 22, 22, 11, 25, 17,
		75, 69, 58, 48, 43, 43, 55, 63,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	position.Knight: {
		-29, -60, -26, -18, -20, -28, -48, -30,
		-28, -13, -13, -6, -4, -16, -18, -31,
		-38, -3, 6, 19, 18, 5, -2, -33,
		-15, 11, 32, 36, 34, 35, 16, -9,
		-11, 14, 28, 43, 48, 36, 28, -1,
		-20, 6, 24, 26, 20, 31, 12, -11,
		-25, -12, 1, 21, 19, -3, -9, -16,
		-41, -11, 2, 0, 1, 4, -4, -17,
	},
	position.Bishop: {
		-28, -16, -38, -14, -19, -24, -21, -20,
		-10, -20, -12, -4, -5, -18, -18, -33,
		-12, -1, 7, 10, 8, 3, -11, -11,
		-5, 6, 17, 18, 15, 14, 4, -10,
		0, 11, 12, 17, 24, 15, 19, 3,
		-5, 8, 11, 11, 13, 19, 12, 3,
		-7, 7, 10, 11, 12, 10, 12, -6,
		1, 5, 5, 8, 4, 0, 2, 2,
	},
	position.Rook: {
		-10, 0, 5, 5, 3, 3, -1, -18,
		-8, -10, -3, -6, -5, -11, -14, -10,
		-2, 7, 8, 5, 4, 3, -1, -8,
		13, 25, 26, 22, 20, 18, 12, 6,
		25, 27, 30, 26, 23, 20, 16, 16,
		34, 24, 32, 25, 17, 24, 14, 18,
		36, 42, 40, 41, 40, 23, 28, 22,
		32, 37, 40, 37, 38, 42, 39, 37,
	},
	position.Queen: {
		-25, -35, -41, -48, -50, -39, -27, -9,
		-26, -24, -44, -27, -36, -62, -57, -17,
		-22, -17, 5, -10, -11, 1, -19, -14,
		-19, 5, 6, 38, 32, 30, 17, 20,
		-11, 14, 13, 42, 52, 57, 49, 33,
		-1, 3, 20, 29, 45, 56, 40, 38,
		7, 31, 25, 36, 57, 44, 28, 25,
		14, 26, 29, 38, 44, 43, 31, 33,
	},
	position.King: {
		-37, -29, -20, -26, -54, -14, -35, -78,
		-15, -9, -3, 4, -2, 1, -15, -35,
		-16, -3, 7, 16, 13, 6, -8, -18,
		-16, 8, 21, 28, 25, 19, 5, -18,
		-2, 22, 29, 30, 29, 26, 20, -5,
		1, 26, 25, 19, 16, 32, 31, -1,
		-12, 14, 11, 3, 5, 10, 20, -9,
		-17, -12, -6, -1, -6, -6, -6, -14,
	},
}

var PassedPawnPSQT_MG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	-11, -10, -11, -11, -1, -6, 16, 14,
	-2, -4, -17, -17, -7, -6, -5, 15,
	15, 6, -8, -5, -8, -8, -2, 6,
	34, 33, 25, 17, 11, 8, 15, 17,
	68, 52, 41, 33, 24, 24, 19, 17,
	56, 53, 55, 54, 46, 31, 4, 9,
	0, 0, 0, 0, 0, 0, 0, 0,
}
var PassedPawnPSQT_EG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	18, 16, 10, 9, 4, 0, 8, 15,
	13, 22, 12, 10, 9, 8, 25, 13,
	32, 36, 29, 24, 23, 30, 44, 33,
	60, 54, 40, 41, 35, 37, 48, 45,
	102, 86, 64, 41, 33, 50, 57, 78,
	68, 66, 56, 46, 43, 42, 55, 62,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Piece base values (midgame/endgame) and mobility values
var pieceValueMG = [7]int32{
	position.Pawn: 88, position.Knight: 316, position.Bishop: 331, position.Rook: 494, position.Queen: 993,
}
var pieceValueEG = [7]int32{
	position.Pawn: 111, position.Knight: 305, position.Bishop: 333, position.Rook: 535, position.Queen: 963,
}
var mobilityValueMG = [7]int32{
	position.Knight: 2, position.Bishop: 3, position.Rook: 2, position.Queen: 1,
}
var mobilityValueEG = [7]int32{
	position.Knight: 3, position.Bishop: 2, position.Rook: 4, position.Queen: 4,
}

var phaseWeight = [7]int{position.Knight: 1, position.Bishop: 1, position.Rook: 2, position.Queen: 4}

const totalPhase = 24

var (
	BishopPairBonusMG int32 = 10
	BishopPairBonusEG int32 = 50

	IsolatedPawnMG int32 = 6
	IsolatedPawnEG int32 = 7
	PawnDoubledMG  int32 = 4
	PawnDoubledEG  int32 = 17

	ShieldRank2MG   int32 = 12
	ShieldRank3MG   int32 = 6
	ShieldMissingMG int32 = -15
	FianchettoMG    int32 = 10

	TempoBonus int32 = 10
)

var (
	fileMask      [8]uint64
	adjacentFiles [8]uint64
	forwardFile   [2][64]uint64 // squares ahead on the same file
	passedSpan    [2][64]uint64 // squares ahead on the same and adjacent files
)

func init() {
	for f := 0; f < 8; f++ {
		fileMask[f] = position.FileA << uint(f)
	}
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFiles[f] |= fileMask[f-1]
		}
		if f < 7 {
			adjacentFiles[f] |= fileMask[f+1]
		}
	}
	for sq := 0; sq < 64; sq++ {
		f, r := sq&7, sq>>3
		for rr := r + 1; rr < 8; rr++ {
			forwardFile[position.White][sq] |= 1 << uint(rr*8+f)
		}
		for rr := r - 1; rr >= 0; rr-- {
			forwardFile[position.Black][sq] |= 1 << uint(rr*8+f)
		}
		for c := position.White; c <= position.Black; c++ {
			span := forwardFile[c][sq]
			passedSpan[c][sq] = span | (span<<1)&^position.FileA | (span>>1)&^position.FileH
		}
	}
}

// Evaluation is the default Evaluator: material, piece-square tables,
// mobility from the attack tables and pawn structure through the pawn table.
// Whole-position results go through the score table.
type Evaluation struct {
	pawns  *PawnTable
	scores *ScoreTable
}

// NewEvaluation builds the default evaluator over the shared tables.
func NewEvaluation(t *SharedTables) *Evaluation {
	return &Evaluation{pawns: t.Pawns, scores: t.Scores}
}

// Evaluate implements Evaluator.
func (e *Evaluation) Evaluate(p *position.Position) int32 {
	if s, ok := e.scores.Probe(p.Key()); ok {
		return s
	}
	s := e.evaluate(p)
	e.scores.Store(p.Key(), s)
	return s
}

// GetPiecePhase returns 24 with all pieces on the board down to 0 with none.
func GetPiecePhase(p *position.Position) int {
	phase := 0
	for c := position.White; c <= position.Black; c++ {
		for pt := position.Knight; pt <= position.Queen; pt++ {
			phase += phaseWeight[pt] * bits.OnesCount64(p.Pieces(c, pt))
		}
	}
	return Min(phase, totalPhase)
}

func (e *Evaluation) evaluate(p *position.Position) int32 {
	var mg, eg [2]int32
	for c := position.White; c <= position.Black; c++ {
		own := p.Occupied(c)
		for pt := position.Knight; pt <= position.King; pt++ {
			for b := p.Pieces(c, pt); b != 0; b &= b - 1 {
				sq := firstSquare(b)
				rel := relativeSquare(sq, c)
				mg[c] += pieceValueMG[pt] + PSQT_MG[pt][rel]
				eg[c] += pieceValueEG[pt] + PSQT_EG[pt][rel]
				mobility := int32(bits.OnesCount64(p.AttacksFrom(sq) &^ own))
				mg[c] += mobility * mobilityValueMG[pt]
				eg[c] += mobility * mobilityValueEG[pt]
			}
		}
		mg[c] += pieceValueMG[position.Pawn] * int32(bits.OnesCount64(p.Pieces(c, position.Pawn)))
		eg[c] += pieceValueEG[position.Pawn] * int32(bits.OnesCount64(p.Pieces(c, position.Pawn)))
		if bits.OnesCount64(p.Pieces(c, position.Bishop)) >= 2 {
			mg[c] += BishopPairBonusMG
			eg[c] += BishopPairBonusEG
		}
	}

	pawn := e.pawnEntry(p)
	mgScore := mg[position.White] - mg[position.Black] + pawn.ScoreMG
	egScore := eg[position.White] - eg[position.Black] + pawn.ScoreEG
	for c := position.White; c <= position.Black; c++ {
		safety := kingShelter(p, &pawn, c)
		if c == position.White {
			mgScore += safety
		} else {
			mgScore -= safety
		}
	}

	phase := int32(GetPiecePhase(p))
	score := (mgScore*phase + egScore*(totalPhase-phase)) / totalPhase
	if p.SideToMove() == position.Black {
		score = -score
	}
	return score + TempoBonus
}

// kingShelter scores the pawn shield in front of a castled king and a
// fianchettoed bishop guarding it.
func kingShelter(p *position.Position, pawn *PawnHashEntry, c position.Color) int32 {
	ksq := relativeSquare(p.KingSquare(c), c)
	if ksq.Rank() > 1 {
		return 0
	}
	var side int
	var flag uint8
	var bishopHome position.Square
	switch f := ksq.File(); {
	case f >= 5:
		side, flag, bishopHome = 0, FianchettoKingside, relativeSquare(position.G1+8, c)
	case f <= 2:
		side, flag, bishopHome = 1, FianchettoQueenside, relativeSquare(position.B1+8, c)
	default:
		return 0
	}
	score := pawn.Shield[c][side]
	if pawn.Fianchetto[c]&flag != 0 && p.PieceAt(bishopHome) == position.MakePiece(c, position.Bishop) {
		score += FianchettoMG
	}
	return score
}

func (e *Evaluation) pawnEntry(p *position.Position) PawnHashEntry {
	if entry, ok := e.pawns.Probe(p.PawnKey()); ok {
		return entry
	}
	entry := ComputePawnEntry(p)
	e.pawns.Store(p.PawnKey(), entry)
	return entry
}

// ComputePawnEntry calculates all pawn structure data from scratch (on a cache miss).
func ComputePawnEntry(p *position.Position) PawnHashEntry {
	var entry PawnHashEntry
	for c := position.White; c <= position.Black; c++ {
		own, opp := p.Pieces(c, position.Pawn), p.Pieces(c.Other(), position.Pawn)
		var mg, eg int32
		for b := own; b != 0; b &= b - 1 {
			sq := firstSquare(b)
			rel := relativeSquare(sq, c)
			mg += PSQT_MG[position.Pawn][rel]
			eg += PSQT_EG[position.Pawn][rel]
			if own&adjacentFiles[sq.File()] == 0 {
				mg -= IsolatedPawnMG
				eg -= IsolatedPawnEG
			}
			if own&forwardFile[c][sq] != 0 {
				mg -= PawnDoubledMG
				eg -= PawnDoubledEG
			}
			if opp&passedSpan[c][sq] == 0 && own&forwardFile[c][sq] == 0 {
				entry.Passed[c] |= squareBit(sq)
				mg += PassedPawnPSQT_MG[rel]
				eg += PassedPawnPSQT_EG[rel]
			}
		}
		entry.Shield[c][0] = shieldScore(own, c, 5)
		entry.Shield[c][1] = shieldScore(own, c, 0)
		entry.Fianchetto[c] = fianchettoFlags(own, c)
		if c == position.White {
			entry.ScoreMG += mg
			entry.ScoreEG += eg
		} else {
			entry.ScoreMG -= mg
			entry.ScoreEG -= eg
		}
	}
	return entry
}

// shieldScore rates the pawns of color c on the three files starting at
// firstFile, on the second and third rank from c's side.
func shieldScore(own uint64, c position.Color, firstFile int) int32 {
	rank2, rank3 := position.Rank2, position.Rank3
	if c == position.Black {
		rank2, rank3 = position.Rank7, position.Rank6
	}
	var score int32
	for f := firstFile; f < firstFile+3; f++ {
		switch {
		case own&fileMask[f]&rank2 != 0:
			score += ShieldRank2MG
		case own&fileMask[f]&rank3 != 0:
			score += ShieldRank3MG
		default:
			score += ShieldMissingMG
		}
	}
	return score
}

// fianchettoFlags detects the g3/b3 pawn with both neighbours at home.
func fianchettoFlags(own uint64, c position.Color) uint8 {
	rel := func(sq position.Square) uint64 { return squareBit(relativeSquare(sq, c)) }
	var flags uint8
	if own&rel(position.G1+16) != 0 && own&rel(position.F1+8) != 0 && own&rel(position.H1+8) != 0 {
		flags |= FianchettoKingside
	}
	if own&rel(position.B1+16) != 0 && own&rel(position.A1+8) != 0 && own&rel(position.C1+8) != 0 {
		flags |= FianchettoQueenside
	}
	return flags
}

// =============================================================================
// RECOGNIZERS
// =============================================================================

// Material signatures as maintained by the board: one bit for pawns, then two
// bits each for knights, bishops, rooks and queens.
const (
	sigNone    uint16 = 0
	sigKnight  uint16 = 1 << 1
	sigKnight2 uint16 = 2 << 1
	sigBishop  uint16 = 1 << 3
)

func signaturePair(white, black uint16) uint32 { return uint32(white) | uint32(black)<<16 }

// drawnSignatures lists material balances where neither side can force mate.
var drawnSignatures = map[uint32]bool{}

func init() {
	weak := []uint16{sigNone, sigKnight, sigBishop}
	for _, w := range weak {
		for _, b := range weak {
			drawnSignatures[signaturePair(w, b)] = true
		}
	}
	drawnSignatures[signaturePair(sigKnight2, sigNone)] = true
	drawnSignatures[signaturePair(sigNone, sigKnight2)] = true
}

// Recognize returns an exact score for material balances known to be drawn.
func Recognize(p *position.Position) (int32, bool) {
	key := signaturePair(p.MaterialSignature(position.White), p.MaterialSignature(position.Black))
	if drawnSignatures[key] {
		return DrawScore, true
	}
	return 0, false
}
