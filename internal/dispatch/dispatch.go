// Package dispatch turns parsed statement text into tree operations and
// formatted output, the contract the shell drives the engine through.
package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"myjql/internal/btree"
	"myjql/internal/row"
)

// Result carries everything a dispatched statement produced: lines of
// output to show the user and whether it executed successfully.
type Result struct {
	Lines []string
	OK    bool
}

// Dispatcher binds a tree to the three statements the shell accepts.
type Dispatcher struct {
	tree *btree.Tree
}

// New wraps tree for dispatch.
func New(tree *btree.Tree) *Dispatcher {
	return &Dispatcher{tree: tree}
}

// Execute parses and runs one statement line (dot-prefixed meta-commands
// are handled by the shell and never reach it). A returned error is always a fatal,
// process-terminating condition; user-input errors are reported through
// Result instead.
func (d *Dispatcher) Execute(line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Lines: []string{"Syntax error."}}, nil
	}
	switch fields[0] {
	case "insert":
		return d.execInsert(fields[1:])
	case "select":
		return d.execSelect(fields[1:])
	case "delete":
		return d.execDelete(fields[1:])
	default:
		return Result{Lines: []string{fmt.Sprintf("Unrecognized keyword at start of '%s'.", line)}}, nil
	}
}

func (d *Dispatcher) execInsert(args []string) (Result, error) {
	if len(args) != 2 {
		return Result{Lines: []string{"Syntax error."}}, nil
	}
	if strings.HasPrefix(args[0], "-") {
		return Result{Lines: []string{"Column `a` must be positive."}}, nil
	}
	a, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Result{Lines: []string{"Syntax error."}}, nil
	}
	b := args[1]
	if len(b) > row.MaxBLen {
		return Result{Lines: []string{"String for column `b` is too long."}}, nil
	}
	if err := d.tree.Insert(row.Row{A: uint32(a), B: b}); err != nil {
		return Result{}, err
	}
	return Result{OK: true}, nil
}

func (d *Dispatcher) execSelect(args []string) (Result, error) {
	var rows []row.Row
	var err error
	switch len(args) {
	case 0:
		rows, err = d.tree.Traverse()
	case 1:
		rows, err = d.tree.Search(args[0])
	default:
		return Result{Lines: []string{"Syntax error."}}, nil
	}
	if err != nil {
		return Result{}, err
	}
	lines := formatRows(rows)
	return Result{Lines: lines, OK: true}, nil
}

func (d *Dispatcher) execDelete(args []string) (Result, error) {
	if len(args) != 1 {
		return Result{Lines: []string{"Syntax error."}}, nil
	}
	if err := d.tree.Delete(args[0]); err != nil {
		return Result{}, err
	}
	return Result{OK: true}, nil
}

func formatRows(rows []row.Row) []string {
	if len(rows) == 0 {
		return []string{"(Empty)"}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("(%d, %s)", r.A, r.B)
	}
	return lines
}
