package engine

import (
	"chesskernel/position"
)

// quiesce resolves captures below the horizon. Without check the side to
// move may stand pat; in check every evasion is searched. Quiet checking
// moves are tried at the first quiescence ply when enabled.
func (sc *SearchContext) quiesce(alpha, beta int32, ply, qply int) int32 {
	p := sc.pos
	st := &sc.status[ply]
	st.pv.Clear()

	sc.stats.Nodes++
	sc.stats.QNodes++
	if sc.aborted() {
		return 0
	}
	if ply > sc.selDepth {
		sc.selDepth = ply
	}
	if ply >= MaxPly-1 {
		return sc.staticEval()
	}
	if p.InCheck() {
		return sc.quiesceEvasions(alpha, beta, ply, qply)
	}
	if v, ok := Recognize(p); ok {
		sc.stats.RecognizerHits++
		return v
	}

	standPat := sc.staticEval()
	if standPat >= beta {
		sc.stats.QStandPatCutoffs++
		return standPat
	}
	best := standPat
	alpha = Max(alpha, standPat)

	// Captures of a piece class whose value cannot lift material plus the
	// positional swing to alpha are not even generated.
	them := p.SideToMove().Other()
	budget := p.MaterialBalance() + sc.maxPos
	var victims uint64
	for pt := position.Pawn; pt <= position.Queen; pt++ {
		if budget+position.PieceValue[pt] > alpha {
			victims |= p.Pieces(them, pt)
		}
	}

	base := sc.heap.top()
	defer sc.heap.truncate(base)
	var buf [128]position.Move
	sc.heap.push(p.GenerateCapturesOf(buf[:0], victims, true))
	end := sc.heap.top()
	for i := base; i < end; i++ {
		sc.heap.moves[i].score = captureScore(p, sc.heap.moves[i].move)
	}

	for i := base; i < end; i++ {
		sm := sc.heap.pickBest(i, end)
		if sm.score < 0 {
			break
		}
		if budget+sm.score/64 <= alpha {
			continue
		}
		v, ok := sc.quiesceMove(sm.move, alpha, beta, ply, qply)
		if !ok {
			continue
		}
		if sc.ctl.stop.Load() {
			return 0
		}
		if v > best {
			best = v
			if v > alpha {
				st.pv.Update(sm.move, sc.status[ply+1].pv)
				if v >= beta {
					sc.stats.QBetaCutoffs++
					return v
				}
				alpha = v
			}
		}
	}

	if qply == 0 && sc.eng.cfg.QuiescenceChecks {
		for _, m := range p.GenerateChecks(buf[:0]) {
			if SEE(p, m) < 0 {
				continue
			}
			v, ok := sc.quiesceMove(m, alpha, beta, ply, qply)
			if !ok {
				continue
			}
			if sc.ctl.stop.Load() {
				return 0
			}
			if v > best {
				best = v
				if v > alpha {
					st.pv.Update(m, sc.status[ply+1].pv)
					if v >= beta {
						sc.stats.QBetaCutoffs++
						return v
					}
					alpha = v
				}
			}
		}
	}
	return best
}

// quiesceEvasions searches every legal reply to a check. No reply is mate.
func (sc *SearchContext) quiesceEvasions(alpha, beta int32, ply, qply int) int32 {
	st := &sc.status[ply]
	mp := &st.picker
	mp.Init(sc.pos, sc, ply, position.NoMove)
	defer mp.Release()

	best := matedIn(ply)
	for m := mp.Next(); m != position.NoMove; m = mp.Next() {
		v, ok := sc.quiesceMove(m, alpha, beta, ply, qply)
		if !ok {
			continue
		}
		if sc.ctl.stop.Load() {
			return 0
		}
		if v > best {
			best = v
			if v > alpha {
				st.pv.Update(m, sc.status[ply+1].pv)
				if v >= beta {
					sc.stats.QBetaCutoffs++
					return v
				}
				alpha = v
			}
		}
	}
	return best
}

// quiesceMove plays m and searches the reply; ok is false for illegal moves.
func (sc *SearchContext) quiesceMove(m position.Move, alpha, beta int32, ply, qply int) (int32, bool) {
	p := sc.pos
	p.MakeMove(m)
	if p.LastMoveIllegal() {
		p.UnmakeMove(m)
		return 0, false
	}
	v := -sc.quiesce(-beta, -alpha, ply+1, qply+1)
	p.UnmakeMove(m)
	return v, true
}
