// Package notation converts engine moves to standard algebraic notation.
package notation

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"

	"chesskernel/position"
)

// ErrUnknownMove is returned when a move is not legal in the given position.
var ErrUnknownMove = errors.New("move not legal in position")

// SAN renders m, a move of the position described by fen, in standard
// algebraic notation.
func SAN(fen string, m position.Move) (string, error) {
	line, err := SANLine(fen, []position.Move{m})
	if err != nil {
		return "", err
	}
	return line[0], nil
}

// SANLine renders a sequence of moves starting from fen, each in the
// position left by the previous one.
func SANLine(fen string, moves []position.Move) ([]string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", position.ErrInvalidFEN, err)
	}
	game := chess.NewGame(opt)
	out := make([]string, 0, len(moves))
	for i, m := range moves {
		pos := game.Position()
		cm, err := chess.UCINotation{}.Decode(pos, m.String())
		if err != nil {
			return out, fmt.Errorf("%w: %s at ply %d", ErrUnknownMove, m, i)
		}
		// The decoded move carries no check tags; the generated one does.
		if tagged := findValid(pos, cm); tagged != nil {
			cm = tagged
		}
		if err := game.Move(cm); err != nil {
			return out, fmt.Errorf("%w: %s at ply %d: %v", ErrUnknownMove, m, i, err)
		}
		out = append(out, chess.AlgebraicNotation{}.Encode(pos, cm))
	}
	return out, nil
}

func findValid(pos *chess.Position, m *chess.Move) *chess.Move {
	for _, v := range pos.ValidMoves() {
		if v.S1() == m.S1() && v.S2() == m.S2() && v.Promo() == m.Promo() {
			return v
		}
	}
	return nil
}

// FromPosition renders moves from p's current position.
func FromPosition(p *position.Position, moves []position.Move) ([]string, error) {
	return SANLine(p.ToFEN(), moves)
}
