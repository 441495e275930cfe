// Command myjql-bench runs a synthetic insert/select workload against a
// scratch table and renders latency and leaf fill charts, the way the
// original thesis harness measured this engine's predecessors.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"myjql/internal/bench"
	"myjql/internal/btree"
)

func main() {
	dbPath := flag.String("db", "bench.myjql", "scratch database file")
	ops := flag.Int("ops", 5000, "number of operations to run")
	workload := flag.String("workload", "oltp", "oltp, olap, or reporting")
	outDir := flag.String("out", ".", "directory to write PNG charts to")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	var w bench.Workload
	switch *workload {
	case "oltp":
		w = bench.OLTP
	case "olap":
		w = bench.OLAP
	case "reporting":
		w = bench.Reporting
	default:
		log.Fatalf("unknown workload %q", *workload)
	}

	os.Remove(*dbPath)
	tree, err := btree.Open(*dbPath)
	if err != nil {
		log.Fatalf("open: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	results, err := bench.Run(tree, w, *ops, rng)
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	ratios, err := tree.LeafFillRatios()
	if err != nil {
		log.Fatalf("leaf fill ratios: %v", err)
	}

	if err := tree.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}

	latencyPath := filepath.Join(*outDir, "latency.png")
	if err := bench.PlotLatencies(results, latencyPath); err != nil {
		log.Fatalf("plot latencies: %v", err)
	}
	fillPath := filepath.Join(*outDir, "fill_ratio.png")
	if err := bench.PlotFillRatios(ratios, fillPath); err != nil {
		log.Fatalf("plot fill ratios: %v", err)
	}

	fmt.Printf("ran %d %s operations against %s\n", *ops, *workload, *dbPath)
	fmt.Printf("wrote %s and %s\n", latencyPath, fillPath)
}
