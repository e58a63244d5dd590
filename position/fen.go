package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FENStartPos is the FEN string for the standard initial chess position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	// ErrInvalidFEN is wrapped by every ParseFEN failure.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrIllegalMove is returned when a move text does not name a legal move.
	ErrIllegalMove = errors.New("illegal move")
)

const pieceChars = " PNBRQK  pnbrqk"

func pieceFromChar(ch byte) Piece {
	if i := strings.IndexByte(pieceChars, ch); i > 0 && ch != ' ' {
		return Piece(i)
	}
	return NoPiece
}

func charFromPiece(pc Piece) byte {
	if int(pc) < len(pieceChars) && pc != NoPiece {
		return pieceChars[pc]
	}
	return '?'
}

// StartPosition returns the initial position.
func StartPosition() *Position {
	p, err := ParseFEN(FENStartPos)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseFEN builds a position from the board, turn, castling and en-passant
// fields of a FEN or EPD string. The clock fields are optional.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: not enough fields", ErrInvalidFEN)
	}

	p := &Position{fullmove: 1, hist: make([]undo, 0, 64)}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: incorrect number of ranks", ErrInvalidFEN)
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc := pieceFromChar(ch)
			if pc == NoPiece {
				return nil, fmt.Errorf("%w: unrecognized piece character %q", ErrInvalidFEN, ch)
			}
			if file >= 8 {
				return nil, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}
			p.setPiece(pc, Square(rank*8+file))
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d does not have 8 columns", ErrInvalidFEN, rank+1)
		}
	}
	for c := White; c <= Black; c++ {
		if popCount(p.pieces[c][King]) != 1 {
			return nil, fmt.Errorf("%w: side %s needs exactly one king", ErrInvalidFEN, c)
		}
	}

	switch fields[1] {
	case "w":
		p.side = White
	case "b":
		p.side = Black
	default:
		return nil, fmt.Errorf("%w: side to move must be 'w' or 'b'", ErrInvalidFEN)
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				p.castling |= WhiteKingside
			case 'Q':
				p.castling |= WhiteQueenside
			case 'k':
				p.castling |= BlackKingside
			case 'q':
				p.castling |= BlackQueenside
			default:
				return nil, fmt.Errorf("%w: invalid castling rights character %q", ErrInvalidFEN, ch)
			}
		}
	}
	// Drop rights the piece placement contradicts.
	for _, home := range [...]struct {
		sq Square
		pc Piece
	}{
		{E1, MakePiece(White, King)}, {H1, MakePiece(White, Rook)}, {A1, MakePiece(White, Rook)},
		{E8, MakePiece(Black, King)}, {H8, MakePiece(Black, Rook)}, {A8, MakePiece(Black, Rook)},
	} {
		if p.board[home.sq] != home.pc {
			p.castling &= castleMask[home.sq]
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		if (sq.Rank() == 2 || sq.Rank() == 5) && p.enPassantCapturable(sq, p.side) {
			p.epSquare = sq
		}
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("%w: halfmove clock is not a number", ErrInvalidFEN)
		}
		p.rule50 = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("%w: fullmove number is not a number", ErrInvalidFEN)
		}
		p.fullmove = n
	}

	p.key, p.pawnKey = p.computeKeys()
	p.refreshAttacks()
	return p, nil
}

// ToFEN produces the FEN string of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.board[rank*8+file]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(charFromPiece(pc))
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(p.side.String())
	sb.WriteByte(' ')

	if p.castling == NoCastling {
		sb.WriteByte('-')
	} else {
		for i, ch := range "KQkq" {
			if p.castling&(1<<uint(i)) != 0 {
				sb.WriteRune(ch)
			}
		}
	}
	sb.WriteByte(' ')

	if p.epSquare != NoEnPassant {
		sb.WriteString(p.epSquare.String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " %d %d", p.rule50, p.fullmove)
	return sb.String()
}

// ParseMove resolves a coordinate move ("e2e4", "e7e8q") against the legal
// moves of p.
func ParseMove(p *Position, s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}
	for _, m := range p.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}
