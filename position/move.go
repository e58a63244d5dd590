package position

// Move encodes a chess move in a 32-bit value.
//
//	bits  0-5   from square
//	bits  6-11  to square
//	bits 12-14  promotion piece type
//	bits 15-21  flags (capture, en passant, double push, short/long castle, null, hashed)
//	bits 22-24  moved piece type
//	bits 25-27  captured piece type
type Move uint32

const (
	moveToShift       = 6
	movePromoteShift  = 12
	moveMovedShift    = 22
	moveCapturedShift = 25
)

// Move flags.
const (
	FlagCapture     Move = 1 << 15
	FlagEnPassant   Move = 1 << 16
	FlagDoublePush  Move = 1 << 17
	FlagShortCastle Move = 1 << 18
	FlagLongCastle  Move = 1 << 19
	FlagNull        Move = 1 << 20
	FlagHashed      Move = 1 << 21
)

const (
	NoMove   Move = 0
	NullMove Move = FlagNull

	// identityMask covers from, to and promotion: the fields that identify a
	// move independently of how it was generated.
	identityMask Move = 1<<15 - 1
)

// NewMove constructs a move from its parts.
func NewMove(from, to Square, moved, captured PieceType, flags Move) Move {
	return Move(from) | Move(to)<<moveToShift | Move(moved)<<moveMovedShift |
		Move(captured)<<moveCapturedShift | flags
}

// WithPromotion returns m promoting to pt.
func (m Move) WithPromotion(pt PieceType) Move {
	return m&^(7<<movePromoteShift) | Move(pt)<<movePromoteShift
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square(m >> moveToShift & 0x3F) }

// Promotion returns the promotion piece type, or NoPieceType.
func (m Move) Promotion() PieceType { return PieceType(m >> movePromoteShift & 7) }

// Moved returns the type of the moving piece.
func (m Move) Moved() PieceType { return PieceType(m >> moveMovedShift & 7) }

// Captured returns the type of the captured piece, or NoPieceType.
func (m Move) Captured() PieceType { return PieceType(m >> moveCapturedShift & 7) }

func (m Move) IsCapture() bool     { return m&FlagCapture != 0 }
func (m Move) IsEnPassant() bool   { return m&FlagEnPassant != 0 }
func (m Move) IsDoublePush() bool  { return m&FlagDoublePush != 0 }
func (m Move) IsShortCastle() bool { return m&FlagShortCastle != 0 }
func (m Move) IsLongCastle() bool  { return m&FlagLongCastle != 0 }
func (m Move) IsCastle() bool      { return m&(FlagShortCastle|FlagLongCastle) != 0 }
func (m Move) IsNull() bool        { return m&FlagNull != 0 }
func (m Move) IsHashed() bool      { return m&FlagHashed != 0 }

// IsQuiet reports moves that neither capture nor promote.
func (m Move) IsQuiet() bool { return m&FlagCapture == 0 && m.Promotion() == NoPieceType }

// Hashed returns m marked as coming from a hash table hit.
func (m Move) Hashed() Move { return m | FlagHashed }

// Key is the 12-bit (from,to) index used by history and counter-move tables.
func (m Move) Key() int { return int(m & 0xFFF) }

// Same reports whether two moves have the same origin, destination and promotion.
func (m Move) Same(o Move) bool { return m&identityMask == o&identityMask }

var promoLetter = [7]byte{0, 'p', 'n', 'b', 'r', 'q', 'k'}

// String returns the coordinate form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	switch {
	case m == NoMove:
		return "(none)"
	case m.IsNull():
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if pt := m.Promotion(); pt != NoPieceType {
		s += string(promoLetter[pt])
	}
	return s
}
