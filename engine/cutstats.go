package engine

import "github.com/rs/zerolog"

// SearchStats collects counts for each pruning, cutoff and extension
// mechanism. Every thread keeps its own and the driver sums them at the end.
type SearchStats struct {
	Nodes  uint64
	QNodes uint64

	TTCutoffs           uint64
	NullMoveCutoffs     uint64
	NullMoveVerified    uint64
	RazoringReductions  uint64
	FutilityPrunes      uint64
	BetaCutoffs         uint64
	FirstMoveCutoffs    uint64
	QStandPatCutoffs    uint64
	QBetaCutoffs        uint64
	RecognizerHits      uint64
	MateDistanceCutoffs uint64

	CheckExtensions       uint64
	SingleReplyExtensions uint64
	RecaptureExtensions   uint64
	PassedPawnExtensions  uint64
	ZugzwangExtensions    uint64

	IIDSearches   uint64
	DeferredMoves uint64
	ReSearches    uint64
}

// Add accumulates o into s.
func (s *SearchStats) Add(o SearchStats) {
	s.Nodes += o.Nodes
	s.QNodes += o.QNodes
	s.TTCutoffs += o.TTCutoffs
	s.NullMoveCutoffs += o.NullMoveCutoffs
	s.NullMoveVerified += o.NullMoveVerified
	s.RazoringReductions += o.RazoringReductions
	s.FutilityPrunes += o.FutilityPrunes
	s.BetaCutoffs += o.BetaCutoffs
	s.FirstMoveCutoffs += o.FirstMoveCutoffs
	s.QStandPatCutoffs += o.QStandPatCutoffs
	s.QBetaCutoffs += o.QBetaCutoffs
	s.RecognizerHits += o.RecognizerHits
	s.MateDistanceCutoffs += o.MateDistanceCutoffs
	s.CheckExtensions += o.CheckExtensions
	s.SingleReplyExtensions += o.SingleReplyExtensions
	s.RecaptureExtensions += o.RecaptureExtensions
	s.PassedPawnExtensions += o.PassedPawnExtensions
	s.ZugzwangExtensions += o.ZugzwangExtensions
	s.IIDSearches += o.IIDSearches
	s.DeferredMoves += o.DeferredMoves
	s.ReSearches += o.ReSearches
}

// MoveOrderingRate is the share of beta cutoffs produced by the first move searched.
func (s *SearchStats) MoveOrderingRate() float64 {
	if s.BetaCutoffs == 0 {
		return 0
	}
	return float64(s.FirstMoveCutoffs) / float64(s.BetaCutoffs)
}

// MarshalZerologObject lets the stats be attached to a log event with Object.
func (s SearchStats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("qnodes", s.QNodes).
		Uint64("tt_cutoffs", s.TTCutoffs).
		Uint64("null_move_cutoffs", s.NullMoveCutoffs).
		Uint64("null_move_verified", s.NullMoveVerified).
		Uint64("razoring", s.RazoringReductions).
		Uint64("futility_prunes", s.FutilityPrunes).
		Uint64("beta_cutoffs", s.BetaCutoffs).
		Float64("first_move_cutoff_rate", s.MoveOrderingRate()).
		Uint64("qstandpat_cutoffs", s.QStandPatCutoffs).
		Uint64("qbeta_cutoffs", s.QBetaCutoffs).
		Uint64("recognizer_hits", s.RecognizerHits).
		Uint64("mate_distance_cutoffs", s.MateDistanceCutoffs).
		Uint64("check_ext", s.CheckExtensions).
		Uint64("single_reply_ext", s.SingleReplyExtensions).
		Uint64("recapture_ext", s.RecaptureExtensions).
		Uint64("passed_pawn_ext", s.PassedPawnExtensions).
		Uint64("zugzwang_ext", s.ZugzwangExtensions).
		Uint64("iid", s.IIDSearches).
		Uint64("deferred", s.DeferredMoves).
		Uint64("re_searches", s.ReSearches)
}
