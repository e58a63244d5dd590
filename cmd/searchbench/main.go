package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chesskernel/engine"
	"chesskernel/notation"
	"chesskernel/position"
)

// Positions searched when no FEN or FEN file is given.
var benchPositions = []string{
	position.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r1bq1rk1/pp2bppp/2n1pn2/3p4/2PP4/2N1PN2/PP1B1PPP/R2QKB1R w KQ - 0 8",
	"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
}

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", 10, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run per position")
	fenFlag := flag.String("fen", "", "FEN to search (empty = built-in positions)")
	fileFlag := flag.String("file", "", "file with one FEN per line")
	threadsFlag := flag.Int("threads", 1, "search threads")
	hashFlag := flag.Int("hash", 64, "transposition table size in MB")
	moveTime := flag.Duration("movetime", 0, "time limit per search (0 = depth only)")
	bookFlag := flag.Bool("book", false, "answer from the ECO opening book when possible")
	verbose := flag.Bool("v", false, "log every iteration")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	fens, err := loadPositions(*fenFlag, *fileFlag)
	if err != nil {
		log.Fatalf("loading positions: %v", err)
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	eng := engine.New(
		engine.WithThreads(*threadsFlag),
		engine.WithHashMB(*hashFlag),
		engine.WithLogger(logger),
	)
	if *bookFlag {
		eng.SetBook(engine.NewECOBook())
	}
	limits := engine.Limits{Depth: *depthFlag, MoveTime: *moveTime}

	fmt.Printf("searchbench: positions=%d depth=%d repeat=%d threads=%d\n", len(fens), *depthFlag, *repeatFlag, *threadsFlag)

	var totalNodes uint64
	startAll := time.Now()
	for _, fen := range fens {
		for i := 0; i < *repeatFlag; i++ {
			board, err := position.ParseFEN(fen)
			if err != nil {
				log.Fatalf("%q: %v", fen, err)
			}
			eng.NewGame()

			res, err := eng.Iterate(context.Background(), board, limits)
			if err != nil && !errors.Is(err, engine.ErrNoLegalMoves) {
				log.Fatalf("search: %v", err)
			}
			totalNodes += res.Stats.Nodes

			pv, err := notation.FromPosition(board, res.PV.Moves)
			if err != nil {
				pv = []string{res.PV.String()}
			}
			fmt.Printf("%s\n  bestmove %v  %s  depth %d  status %s  nodes %d  time %v\n  pv %s\n",
				fen, res.Move, engine.FormatScore(res.Score), res.Depth, res.Status,
				res.Stats.Nodes, res.Elapsed.Round(time.Millisecond), strings.Join(pv, " "))
		}
	}
	totalElapsed := time.Since(startAll)
	nps := float64(totalNodes) / totalElapsed.Seconds()
	fmt.Printf("total time: %v  nodes: %d  nps: %.0f\n", totalElapsed, totalNodes, nps)

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("could not create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("could not write memory profile: %v", err)
		}
	}
}

func loadPositions(fen, file string) ([]string, error) {
	switch {
	case fen != "":
		return []string{fen}, nil
	case file == "":
		return benchPositions, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fens = append(fens, line)
	}
	return fens, sc.Err()
}
