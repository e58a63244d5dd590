package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/dylhunn/dragontoothmg"

	"chesskernel/position"
)

func main() {
	fen := flag.String("fen", position.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	crosscheck := flag.Bool("crosscheck", false, "Compare per-move counts with dragontoothmg and report differences")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := position.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	if *crosscheck {
		os.Exit(runCrosscheck(board, *fen, *depth))
	}

	// Optional divide output
	if *divide {
		div := position.PerftDivide(board, *depth)
		var sum uint64
		for _, line := range position.DivideLines(div) {
			fmt.Println(line)
		}
		for _, n := range div {
			sum += n
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	// Optional CPU profiling
	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	// Timing loop
	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += position.Perft(board, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	// Optional heap profile after run
	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

// runCrosscheck prints every root move whose subtree count differs from the
// reference generator and returns the process exit code.
func runCrosscheck(board *position.Position, fen string, depth int) int {
	ours := make(map[string]uint64)
	for m, n := range position.PerftDivide(board, depth) {
		ours[m.String()] = n
	}

	ref := dragontoothmg.ParseFen(fen)
	theirs := make(map[string]uint64)
	for _, m := range ref.GenerateLegalMoves() {
		unapply := ref.Apply(m)
		theirs[m.String()] = referencePerft(&ref, depth-1)
		unapply()
	}

	keys := make([]string, 0, len(ours)+len(theirs))
	for k := range ours {
		keys = append(keys, k)
	}
	for k := range theirs {
		if _, ok := ours[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	mismatches := 0
	for _, k := range keys {
		if ours[k] != theirs[k] {
			mismatches++
			fmt.Printf("%s: ours %d, reference %d\n", k, ours[k], theirs[k])
		}
	}
	if mismatches > 0 {
		fmt.Printf("%d root moves differ\n", mismatches)
		return 1
	}
	fmt.Printf("depth %d: %d root moves agree\n", depth, len(keys))
	return 0
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		n += referencePerft(b, depth-1)
		unapply()
	}
	return n
}
