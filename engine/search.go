package engine

import (
	"math/bits"

	"chesskernel/position"
)

// onEvaluation is what a node returns instead of a score when another thread
// is searching it at the same depth. It lies outside every search window so
// it cannot be confused with a result.
const onEvaluation int32 = MaxScore + 1

type searchFlags uint8

const (
	// flagExclusive asks the node to report onEvaluation rather than
	// duplicate another thread's work.
	flagExclusive searchFlags = 1 << iota
	// flagNoNull marks a null-move verification search.
	flagNoNull
	// flagReentry marks a second search of the same node (IID or null-move
	// verification) that must leave the node's in-progress mark alone.
	flagReentry
)

// node carries the bookkeeping of one search node between its move loop and
// searchMove.
type node struct {
	alpha, beta int32
	best        int32
	bestMove    position.Move
	depth       int
	ply         int
	legal       int
	searched    int

	pvNode      bool
	cutNode     bool
	singleReply bool
	exclusive   bool

	futility     bool
	futilityBase int32
}

// search is the recursive PVS search. depth is in OnePly units.
func (sc *SearchContext) search(alpha, beta int32, depth, ply int, cutNode bool, flags searchFlags) int32 {
	p := sc.pos
	cfg := &sc.eng.cfg
	tt := sc.eng.tables.TT
	st := &sc.status[ply]
	st.pv.Clear()

	sc.stats.Nodes++
	if sc.aborted() {
		return 0
	}
	if ply > sc.selDepth {
		sc.selDepth = ply
	}
	if ply >= MaxPly-1 {
		return sc.staticEval()
	}

	if p.IsFiftyMoveDraw() || p.Repeated() > 0 {
		return DrawScore
	}

	// Mate distance pruning: no line from here can beat a mate already found nearer the root.
	alpha = Max(alpha, matedIn(ply))
	beta = Min(beta, -matedIn(ply+1))
	if alpha >= beta {
		sc.stats.MateDistanceCutoffs++
		return alpha
	}

	inCheck := p.InCheck()
	if depth < OnePly && !inCheck {
		return sc.quiesce(alpha, beta, ply, 0)
	}
	pvNode := beta-alpha > 1

	/*
		TRANSPOSITION TABLE LOOKUP
	*/
	key := p.Key()
	hit := tt.Probe(key, depth, alpha, beta, ply, flags&flagExclusive != 0)
	switch hit.Result {
	case ProbeOnEvaluation:
		return onEvaluation
	case ProbeExact, ProbeLower, ProbeUpper:
		if !pvNode {
			sc.stats.TTCutoffs++
			return hit.Score
		}
	}

	if !inCheck {
		if v, ok := Recognize(p); ok {
			sc.stats.RecognizerHits++
			return v
		}
	}
	if sc.eng.tb != nil {
		if v, ok := sc.eng.tb.Probe(p, ply); ok {
			tt.Store(key, depth, ply, position.NoMove, v, BoundExact, false)
			return v
		}
	}

	// Tell other threads this node is in progress until its result is stored.
	abdada := cfg.Threads > 1 && depth >= cfg.DeferDepth
	if abdada && flags&flagReentry == 0 {
		token := tt.StartEvaluation(key, depth)
		defer tt.FinishEvaluation(key, token)
	}

	us := p.SideToMove()
	material := p.MaterialBalance()
	threat := hit.Threat
	var eval int32
	if !inCheck {
		eval = sc.staticEval()
	}

	/*
		NULL MOVE PRUNING
		Only at expected cut nodes. Below NullVerifyMaterial a fail-high is
		verified by a full-depth search without null move, and a failed
		verification extends the node since the side to move is in zugzwang.
	*/
	if !pvNode && cutNode && !inCheck && !threat && flags&flagNoNull == 0 &&
		depth >= 2*OnePly && !p.LastMove().IsNull() && p.NonPawnMaterial(us) > 0 &&
		eval >= beta && !isMateScore(beta) {

		r := cfg.NullMoveReduction * OnePly
		if depth >= cfg.NullMoveDeepDepth {
			r = cfg.NullMoveDeepReduction * OnePly
		}
		p.MakeNullMove()
		v := -sc.search(-beta, -beta+1, depth-OnePly-r, ply+1, false, 0)
		p.UnmakeNullMove()
		if sc.ctl.stop.Load() {
			return 0
		}

		if v >= beta {
			if v >= Checkmate {
				v = beta
			}
			if p.NonPawnMaterial(us) >= cfg.NullVerifyMaterial {
				sc.stats.NullMoveCutoffs++
				tt.Store(key, depth, ply, position.NoMove, v, BoundLower, false)
				return v
			}
			sc.stats.NullMoveVerified++
			vv := sc.search(beta-1, beta, depth, ply, true, flagNoNull|flagReentry)
			if sc.ctl.stop.Load() {
				return 0
			}
			if vv >= beta {
				sc.stats.NullMoveCutoffs++
				return vv
			}
			sc.stats.ZugzwangExtensions++
			depth += cfg.ZugzwangExtension
		} else if v <= -Checkmate {
			threat = true
		}
	}

	// Limited razoring: three plies from the horizon a position far below
	// alpha loses a ply.
	if !pvNode && !inCheck && !threat && depth >= 3*OnePly && depth < 4*OnePly &&
		!isMateScore(alpha) && material+sc.maxPos+cfg.RazorMargin <= alpha {
		sc.stats.RazoringReductions++
		depth -= OnePly
	}

	/*
	   INTERNAL ITERATIVE DEEPENING
	   With no hash move, a reduced search at this node finds one.
	*/
	hashMove := hit.Move
	if hashMove == position.NoMove && !inCheck && depth >= cfg.IIDDepth && (pvNode || eval+cfg.FutilityMargin >= beta) {
		sc.stats.IIDSearches++
		sc.search(alpha, beta, depth-2*OnePly, ply, cutNode, flags&^flagExclusive|flagReentry)
		if sc.ctl.stop.Load() {
			return 0
		}
		hashMove = tt.Probe(key, 0, alpha, beta, ply, false).Move
	}

	singleReply := false
	if inCheck {
		switch legalReplies(p, 2) {
		case 0:
			return matedIn(ply)
		case 1:
			singleReply = true
		}
	}

	n := node{
		alpha:       alpha,
		beta:        beta,
		best:        -MaxScore,
		depth:       depth,
		ply:         ply,
		pvNode:      pvNode,
		cutNode:     cutNode,
		singleReply: singleReply,
		exclusive:   abdada,
	}
	if !pvNode && !inCheck && !threat && depth < 3*OnePly && !isMateScore(alpha) {
		margin := cfg.FutilityMargin
		if depth >= 2*OnePly {
			margin = cfg.ExtendedFutilityMargin
		}
		n.futility = true
		n.futilityBase = material + sc.maxPos + margin
	}

	mp := &st.picker
	mp.Init(p, sc, ply, hashMove)
	defer mp.Release()
	st.deferred = st.deferred[:0]

	cutoff := false
	for m := mp.Next(); m != position.NoMove; m = mp.Next() {
		deferred, cut := sc.searchMove(&n, m, false)
		if deferred {
			st.deferred = append(st.deferred, m)
		}
		if cut {
			cutoff = true
			break
		}
	}
	// Second pass over the moves other threads were busy with.
	if !cutoff {
		for _, m := range st.deferred {
			if _, cut := sc.searchMove(&n, m, true); cut {
				break
			}
		}
	}
	if sc.ctl.stop.Load() {
		return 0
	}

	if n.legal == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return DrawScore
	}

	bound := BoundUpper
	switch {
	case n.best >= beta:
		bound = BoundLower
	case n.best > alpha:
		bound = BoundExact
	}
	tt.Store(key, depth, ply, n.bestMove, n.best, bound, threat)
	return n.best
}

// searchMove searches one move of node n. It reports whether the move was
// deferred because another thread owns the child, and whether the node is
// done (beta cutoff or abort). retry is set on the second pass over deferred
// moves.
func (sc *SearchContext) searchMove(n *node, m position.Move, retry bool) (deferred, done bool) {
	p := sc.pos
	cfg := &sc.eng.cfg
	st := &sc.status[n.ply]
	us := p.SideToMove()
	prev := p.LastMove()
	givesCheck := p.IsCheckingMove(m)

	/*
		FUTILITY PRUNING / EXTENDED FUTILITY
		Near the horizon a move that cannot bring material plus the largest
		positional swing up to alpha is not searched. Its optimistic bound
		still counts towards the node's fail-soft result.
	*/
	if n.futility && n.searched > 0 && !givesCheck && !m.IsHashed() {
		bound := n.futilityBase + materialGain(m)
		if bound <= n.alpha {
			sc.stats.FutilityPrunes++
			if bound > n.best {
				n.best = bound
			}
			return false, false
		}
	}

	p.MakeMove(m)
	if p.LastMoveIllegal() {
		p.UnmakeMove(m)
		return false, false
	}
	if !retry {
		n.legal++
	}

	/*
		EXTENSIONS
	*/
	ext := 0
	if givesCheck {
		sc.stats.CheckExtensions++
		checkers := p.Checkers()
		if bits.OnesCount64(checkers) > 1 || checkers&squareBit(m.To()) == 0 {
			ext += cfg.DoubleCheckExtension
		} else {
			ext += cfg.CheckExtension
		}
	}
	if n.singleReply {
		sc.stats.SingleReplyExtensions++
		ext += cfg.SingleReplyExtension
	}
	if m.IsCapture() && prev.IsCapture() && prev.To() == m.To() {
		sc.stats.RecaptureExtensions++
		ext += cfg.RecaptureExtension[capturedType(m)]
	}
	if m.Moved() == position.Pawn && isPassedPush(p, us, m.To()) {
		sc.stats.PassedPawnExtensions++
		ext += cfg.PassedPawnExtension
	}
	ext = Min(ext, OnePly)
	if n.ply > sc.rootDepth {
		ext /= 2
	}
	newDepth := n.depth - OnePly + ext

	/*
		PRINCIPAL VARIATION SEARCH
		The first move gets the full window, the rest a null window and a
		re-search when they land inside it.
	*/
	childCut := !n.cutNode
	if n.pvNode {
		childCut = n.searched > 0
	}
	var v int32
	if n.searched == 0 {
		v = -sc.search(-n.beta, -n.alpha, newDepth, n.ply+1, childCut, 0)
	} else {
		var flags searchFlags
		if n.exclusive && !retry {
			flags = flagExclusive
		}
		raw := sc.search(-n.alpha-1, -n.alpha, newDepth, n.ply+1, childCut, flags)
		if raw == onEvaluation {
			p.UnmakeMove(m)
			sc.stats.DeferredMoves++
			return true, false
		}
		v = -raw
		if v > n.alpha && v < n.beta && !sc.ctl.stop.Load() {
			sc.stats.ReSearches++
			v = -sc.search(-n.beta, -n.alpha, newDepth, n.ply+1, false, 0)
		}
	}
	p.UnmakeMove(m)
	n.searched++

	if sc.ctl.stop.Load() {
		return false, true
	}

	// The PV and the tables keep the plain move.
	m &^= position.FlagHashed
	if v > n.best {
		n.best = v
		n.bestMove = m
		if v > n.alpha {
			st.pv.Update(m, sc.status[n.ply+1].pv)
			if m.IsQuiet() {
				sc.history.add(us, m, n.depth)
			}
			if v >= n.beta {
				sc.stats.BetaCutoffs++
				if n.searched == 1 {
					sc.stats.FirstMoveCutoffs++
				}
				if m.IsQuiet() {
					sc.killers.insert(m, n.ply)
					sc.counters.store(us, prev, m)
				}
				return false, true
			}
			n.alpha = v
		}
	}
	return false, false
}

// legalReplies counts the legal moves of the side to move, stopping at limit.
func legalReplies(p *position.Position, limit int) int {
	var buf [128]position.Move
	n := 0
	for _, m := range p.GenerateEvasions(buf[:0]) {
		p.MakeMove(m)
		if !p.LastMoveIllegal() {
			n++
		}
		p.UnmakeMove(m)
		if n >= limit {
			break
		}
	}
	return n
}

func capturedType(m position.Move) position.PieceType {
	if m.IsEnPassant() {
		return position.Pawn
	}
	return m.Captured()
}

// materialGain is the optimistic material change of m: the captured piece
// plus what a promotion adds.
func materialGain(m position.Move) int32 {
	gain := position.PieceValue[capturedType(m)]
	if promo := m.Promotion(); promo != position.NoPieceType {
		gain += position.PieceValue[promo] - position.PieceValue[position.Pawn]
	}
	return gain
}

// isPassedPush reports a pawn of color c arriving on its seventh rank with
// no enemy pawn in front of it or on the neighbouring files.
func isPassedPush(p *position.Position, c position.Color, to position.Square) bool {
	if relativeSquare(to, c).Rank() != 6 {
		return false
	}
	return p.Pieces(c.Other(), position.Pawn)&passedSpan[c][to] == 0
}
