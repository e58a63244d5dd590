package engine

import (
	"strings"

	"github.com/notnil/chess"
	"github.com/notnil/chess/opening"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"chesskernel/position"
)

// ECOBook is a BookProber over the ECO opening classification. It only
// answers for positions reached from the standard initial position, since
// openings are matched by their move sequence.
type ECOBook struct {
	eco *opening.BookECO
}

// NewECOBook loads the embedded ECO table.
func NewECOBook() *ECOBook {
	return &ECOBook{eco: opening.NewBookECO()}
}

// BookMove implements BookProber: it continues the longest named opening the
// game so far is a prefix of.
func (b *ECOBook) BookMove(p *position.Position) (position.Move, bool) {
	played, ok := movesFromStart(p)
	if !ok {
		return position.NoMove, false
	}
	game, ok := replay(played)
	if !ok {
		return position.NoMove, false
	}

	n := len(played)
	candidates := lo.Filter(b.eco.Possible(game.Moves()), func(op *opening.Opening, _ int) bool {
		moves := op.Game().Moves()
		if len(moves) <= n {
			return false
		}
		for i, s := range played {
			if moves[i].String() != s {
				return false
			}
		}
		return true
	})
	if len(candidates) == 0 {
		return position.NoMove, false
	}
	longest := lo.MaxBy(candidates, func(a, b *opening.Opening) bool {
		return len(a.Game().Moves()) > len(b.Game().Moves())
	})
	next, err := position.ParseMove(p, longest.Game().Moves()[n].String())
	if err != nil {
		return position.NoMove, false
	}
	return next, true
}

// Opening names the longest ECO opening matching the game, or "".
func (b *ECOBook) Opening(p *position.Position) string {
	played, ok := movesFromStart(p)
	if !ok {
		return ""
	}
	game, ok := replay(played)
	if !ok {
		return ""
	}
	if op := b.eco.Find(game.Moves()); op != nil {
		return op.Title()
	}
	return ""
}

// movesFromStart returns the coordinate moves leading to p when p was set
// up from the initial position, and false otherwise.
func movesFromStart(p *position.Position) ([]string, bool) {
	moves := p.Moves()
	root := p.Clone()
	for i := len(moves) - 1; i >= 0; i-- {
		if moves[i].IsNull() {
			return nil, false
		}
		root.UnmakeMove(moves[i])
	}
	if !samePlacement(root.ToFEN(), position.FENStartPos) {
		return nil, false
	}
	return lo.Map(moves, func(m position.Move, _ int) string { return m.String() }), true
}

// replay plays coordinate moves from the initial position.
func replay(moves []string) (*chess.Game, bool) {
	game := chess.NewGame()
	for _, s := range moves {
		m, err := chess.UCINotation{}.Decode(game.Position(), s)
		if err != nil {
			return nil, false
		}
		if err := game.Move(m); err != nil {
			return nil, false
		}
	}
	return game, true
}

// samePlacement compares the board, side, castling and en-passant fields of two FENs.
func samePlacement(a, b string) bool {
	fa, fb := strings.Fields(a), strings.Fields(b)
	if len(fa) < 4 || len(fb) < 4 {
		return false
	}
	return slices.Equal(fa[:4], fb[:4])
}
