package engine

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	// MaxScore bounds every search window.
	MaxScore int32 = 32500
	// MateScore is the score of giving mate at the root; mate at ply n scores MateScore-n.
	MateScore int32 = 32000
	// Checkmate is the threshold above which a score is a mate score.
	Checkmate int32 = MateScore - MaxPly
	DrawScore int32 = 0
	// InvalidScore marks cleared hash-table slots.
	InvalidScore int32 = -32768
)

// MaxPly bounds the search stack.
const MaxPly = 128

// OnePly is the fractional depth unit. Extensions are added in sixteenths of a ply.
const OnePly = 16

// Abs returns the absolute value of x.
func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of x or y.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x or y.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Clamp restricts f to the inclusive range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func isMateScore(score int32) bool { return Abs(score) >= Checkmate }

// matedIn is the score of the side to move being mated at ply.
func matedIn(ply int) int32 { return -MateScore + int32(ply) }

// scoreToTT converts a root-relative mate score into one relative to the node at ply.
func scoreToTT(score int32, ply int) int32 {
	switch {
	case score >= Checkmate:
		return score + int32(ply)
	case score <= -Checkmate:
		return score - int32(ply)
	}
	return score
}

// scoreFromTT is the inverse of scoreToTT.
func scoreFromTT(score int32, ply int) int32 {
	switch {
	case score >= Checkmate:
		return score - int32(ply)
	case score <= -Checkmate:
		return score + int32(ply)
	}
	return score
}

// FormatScore renders a score as "cp N" or "mate N".
func FormatScore(score int32) string {
	if score >= Checkmate {
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	}
	if score <= -Checkmate {
		return fmt.Sprintf("mate %d", -(MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}
