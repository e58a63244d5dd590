package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"chesskernel/position"
)

// unboundedWindow is the aspiration half-width past which a failing side of
// the window is opened completely.
const unboundedWindow int32 = 1000

// Iterate searches pos by iterative deepening and returns the best move
// found within limits. pos is not modified. Positions without a legal move
// come back with StatusCheckmate or StatusStalemate and an error wrapping
// ErrNoLegalMoves. Cancelling ctx stops the search like a hard deadline.
func (e *Engine) Iterate(ctx context.Context, pos *position.Position, limits Limits) (Result, error) {
	start := time.Now()
	log := e.cfg.Logger

	legal := pos.LegalMoves()
	if len(legal) == 0 {
		if pos.InCheck() {
			return Result{Score: matedIn(0), Status: StatusCheckmate}, fmt.Errorf("%w: checkmate", ErrNoLegalMoves)
		}
		return Result{Score: DrawScore, Status: StatusStalemate}, fmt.Errorf("%w: stalemate", ErrNoLegalMoves)
	}
	if e.book != nil {
		if m, ok := e.book.BookMove(pos); ok {
			if i := slices.IndexFunc(legal, m.Same); i >= 0 {
				log.Debug().Str("move", legal[i].String()).Msg("book-move")
				return Result{Move: legal[i], Status: StatusBook, Elapsed: time.Since(start)}, nil
			}
		}
	}
	if len(legal) == 1 {
		return Result{Move: legal[0], Score: e.eval.Evaluate(pos), Status: StatusForced, Elapsed: time.Since(start)}, nil
	}

	e.tables.TT.NewSearch()
	ctl := &searchControl{
		tm:     NewTimeManager(limits, pos, start),
		limits: limits,
		done:   ctx.Done(),
	}
	maxDepth := e.cfg.MaxDepth
	if limits.Depth > 0 {
		maxDepth = Min(limits.Depth, MaxPly-1)
	}

	// Helpers search their own clones with the root moves in random order;
	// they only cooperate through the shared tables.
	var g errgroup.Group
	helpers := make([]*SearchContext, 0, e.cfg.Threads-1)
	for id := 1; id < e.cfg.Threads; id++ {
		h := NewSearchContext(id, pos.Clone(), e, ctl)
		h.setRootMoves(legal)
		frand.Shuffle(len(h.rootMoves), func(i, j int) {
			h.rootMoves[i], h.rootMoves[j] = h.rootMoves[j], h.rootMoves[i]
		})
		helpers = append(helpers, h)
		g.Go(func() error {
			log.Debug().Int("thread", h.id).Msg("helper-start")
			r := h.iterate(maxDepth, false)
			log.Debug().Int("thread", h.id).Int("depth", r.Depth).Uint64("nodes", h.stats.Nodes).Msg("helper-done")
			return nil
		})
	}

	main := NewSearchContext(0, pos.Clone(), e, ctl)
	main.setRootMoves(legal)
	res := main.iterate(maxDepth, true)
	ctl.stop.Store(true)
	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Stats = main.stats
	for _, h := range helpers {
		res.Stats.Add(h.stats)
	}
	res.Elapsed = time.Since(start)
	log.Info().
		Str("best", res.Move.String()).
		Str("score", FormatScore(res.Score)).
		Int("depth", res.Depth).
		Str("status", res.Status.String()).
		Bool("aborted", res.Aborted).
		Int("hashfull", e.tables.TT.HashFull()).
		Object("stats", res.Stats).
		Msg("search-done")
	return res, nil
}

func (sc *SearchContext) setRootMoves(moves []position.Move) {
	sc.rootMoves = sc.rootMoves[:0]
	for _, m := range moves {
		sc.rootMoves = append(sc.rootMoves, rootMove{move: m, score: -MaxScore})
	}
}

// promoteRootMove moves the root move at i to the front, keeping the order
// of the others.
func (sc *SearchContext) promoteRootMove(i int) {
	if i == 0 {
		return
	}
	rm := sc.rootMoves[i]
	sc.rootMoves = slices.Delete(sc.rootMoves, i, i+1)
	sc.rootMoves = slices.Insert(sc.rootMoves, 0, rm)
}

// iterate is the iterative deepening driver run by every thread. Only the
// main thread logs iterations and manages the clock.
func (sc *SearchContext) iterate(maxDepth int, main bool) Result {
	cfg := &sc.eng.cfg
	log := cfg.Logger
	res := Result{Move: sc.rootMoves[0].move, Score: -MaxScore}

	var prev int32
	mateIterations := 0
	startDepth := 1
	if !main {
		startDepth += sc.id % 2
	}

	for depth := startDepth; depth <= maxDepth; depth++ {
		sc.newIteration(depth)
		window := cfg.AspirationWindow
		alpha, beta := -MaxScore, MaxScore
		if depth > startDepth && !isMateScore(prev) {
			alpha, beta = prev-window, prev+window
		}

		var score int32
		for {
			score = sc.rootSearch(alpha, beta, depth*OnePly)
			if sc.ctl.stop.Load() {
				break
			}
			if score <= alpha {
				if main {
					log.Debug().Int("depth", depth).Str("score", FormatScore(score)).Int32("alpha", alpha).Msg("fail-low")
					if sc.ctl.tm.Extend() {
						log.Debug().Int("depth", depth).Msg("time-extended")
					}
				}
				window *= 2
				alpha = score - window
				if window >= unboundedWindow || alpha < -MaxScore {
					alpha = -MaxScore
				}
				continue
			}
			if score >= beta {
				if main {
					log.Debug().Int("depth", depth).Str("score", FormatScore(score)).Str("move", sc.rootMoves[0].move.String()).Msg("fail-high")
				}
				window *= 2
				beta = score + window
				if window >= unboundedWindow || beta > MaxScore {
					beta = MaxScore
				}
				continue
			}
			break
		}

		pv := sc.status[0].pv
		if sc.ctl.stop.Load() {
			// A move that beat the window in the unfinished iteration is kept.
			if len(pv.Moves) > 0 {
				res.Move = pv.Moves[0]
				res.PV = pv.Clone()
				res.Score = sc.rootMoves[0].score
			}
			res.Aborted = true
			break
		}

		res.Move = sc.rootMoves[0].move
		if len(pv.Moves) > 0 {
			res.Move = pv.Moves[0]
			res.PV = pv.Clone()
		}
		res.Score = score
		res.Depth = depth

		if main {
			elapsed := sc.ctl.tm.Elapsed()
			nps := int64(0)
			if ms := elapsed.Milliseconds(); ms > 0 {
				nps = int64(sc.stats.Nodes) * 1000 / ms
			}
			log.Info().
				Int("depth", depth).
				Int("seldepth", sc.selDepth).
				Str("score", FormatScore(score)).
				Uint64("nodes", sc.stats.Nodes).
				Uint64("qnodes", sc.stats.QNodes).
				Int64("nps", nps).
				Int64("elapsed_ms", elapsed.Milliseconds()).
				Str("pv", res.PV.String()).
				Msg("iteration")
		}

		// A mate score that repeats over several iterations will not change.
		if isMateScore(score) && score == prev {
			mateIterations++
		} else if isMateScore(score) {
			mateIterations = 1
		} else {
			mateIterations = 0
		}
		prev = score
		if mateIterations >= cfg.MateStopDepth {
			break
		}
		if main && sc.ctl.tm.SoftExpired(time.Now()) {
			break
		}
	}
	return res
}

// rootSearch searches every root move once with PVS. Moves raising alpha
// are moved to the front, so on a fail-high the refuting move leads the
// next search.
func (sc *SearchContext) rootSearch(alpha, beta int32, depth int) int32 {
	p := sc.pos
	cfg := &sc.eng.cfg
	st := &sc.status[0]
	st.pv.Clear()
	sc.stats.Nodes++

	best := -MaxScore
	for i := 0; i < len(sc.rootMoves); i++ {
		rm := &sc.rootMoves[i]
		m := rm.move
		nodes := sc.stats.Nodes

		ext := 0
		if p.IsCheckingMove(m) {
			ext = cfg.CheckExtension
		}
		newDepth := depth - OnePly + ext

		p.MakeMove(m)
		var v int32
		if i == 0 {
			v = -sc.search(-beta, -alpha, newDepth, 1, false, 0)
		} else {
			v = -sc.search(-alpha-1, -alpha, newDepth, 1, true, 0)
			if v > alpha && v < beta && !sc.ctl.stop.Load() {
				sc.stats.ReSearches++
				v = -sc.search(-beta, -alpha, newDepth, 1, false, 0)
			}
		}
		p.UnmakeMove(m)
		rm.nodes += sc.stats.Nodes - nodes

		if sc.ctl.stop.Load() {
			break
		}
		if v > best {
			best = v
		}
		if v > alpha {
			rm.score = v
			st.pv.Update(m, sc.status[1].pv)
			sc.promoteRootMove(i)
			if v >= beta {
				return v
			}
			alpha = v
		}
	}
	return best
}
