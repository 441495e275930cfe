// Package bench runs a synthetic workload against a table and renders
// the results as two PNG charts: per-operation latency and leaf page fill
// distribution. It is not part of the shell; it exists to exercise the
// table from outside the line-oriented interface the way the original
// benchmark harness measured this codebase's predecessor engines.
package bench

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"myjql/internal/btree"
	"myjql/internal/row"
)

// Workload names the read/write mix to generate.
type Workload string

const (
	OLTP      Workload = "OLTP (90/10)"
	OLAP      Workload = "OLAP (10/90)"
	Reporting Workload = "Reporting"
)

// OpLatency is one measured operation.
type OpLatency struct {
	Op    string
	Nanos int64
}

// Run executes ops operations of the given workload against tree,
// returning the measured per-operation latencies.
func Run(tree *btree.Tree, w Workload, ops int, rng *rand.Rand) ([]OpLatency, error) {
	results := make([]OpLatency, 0, ops)
	for i := 0; i < ops; i++ {
		choice := rng.Intn(100)
		key := fmt.Sprintf("k%05d", rng.Intn(ops))

		var op string
		start := time.Now()
		var err error
		switch w {
		case OLTP:
			if choice < 90 {
				op = "select"
				_, err = tree.Search(key)
			} else {
				op = "insert"
				err = tree.Insert(row.Row{A: uint32(i), B: key})
			}
		case OLAP:
			if choice < 10 {
				op = "select"
				_, err = tree.Search(key)
			} else {
				op = "insert"
				err = tree.Insert(row.Row{A: uint32(i), B: key})
			}
		case Reporting:
			op = "select"
			_, err = tree.Search(key)
		}
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("bench: %s: %w", op, err)
		}
		results = append(results, OpLatency{Op: op, Nanos: elapsed.Nanoseconds()})
	}
	return results, nil
}

// PlotLatencies renders a scatter of operation index against latency
// and saves it to path.
func PlotLatencies(results []OpLatency, path string) error {
	p := plot.New()
	p.Title.Text = "operation latency"
	p.X.Label.Text = "operation index"
	p.Y.Label.Text = "nanoseconds"

	pts := make(plotter.XYs, len(results))
	for i, r := range results {
		pts[i].X = float64(i)
		pts[i].Y = float64(r.Nanos)
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("bench: plot latencies: %w", err)
	}
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("bench: save %s: %w", path, err)
	}
	return nil
}

// PlotFillRatios renders a histogram of leaf page fill ratios and saves
// it to path.
func PlotFillRatios(ratios []float64, path string) error {
	p := plot.New()
	p.Title.Text = "leaf page fill ratio"
	p.X.Label.Text = "fraction of LEAF_NODE_MAX_CELLS occupied"
	p.Y.Label.Text = "leaf count"

	values := make(plotter.Values, len(ratios))
	copy(values, ratios)
	hist, err := plotter.NewHist(values, 20)
	if err != nil {
		return fmt.Errorf("bench: plot fill ratios: %w", err)
	}
	p.Add(hist)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("bench: save %s: %w", path, err)
	}
	return nil
}
