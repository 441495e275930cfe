// Package shell implements the line-oriented front end: a small editor
// with a length limit, meta-command handling, and statement dispatch.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"myjql/internal/dispatch"
	"myjql/internal/page"
	"myjql/internal/pager"
	"myjql/internal/row"
)

const (
	prompt     = "myjql> "
	maxLineLen = 31
)

// Shell drives the read-dispatch-print loop over an input/output pair.
type Shell struct {
	in   *bufio.Reader
	out  io.Writer
	disp *dispatch.Dispatcher
}

// New builds a shell reading from in and writing prompts/output to out.
func New(in io.Reader, out io.Writer, disp *dispatch.Dispatcher) *Shell {
	return &Shell{in: bufio.NewReader(in), out: out, disp: disp}
}

// Run reads and executes lines until EOF, an explicit .exit, or a fatal
// engine error. A fatal error is returned to the caller so it can print
// a diagnostic and exit non-zero; EOF and .exit both return nil.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, prompt)
		line, err := s.readLine()
		if err == io.EOF {
			fmt.Fprintln(s.out, "bye~")
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			done, err := s.metaCommand(line)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			continue
		}
		if err := s.execute(line); err != nil {
			return err
		}
	}
}

// readLine reads one line, rejecting anything longer than maxLineLen
// characters (excluding the newline).
func (s *Shell) readLine() (string, error) {
	raw, err := s.in.ReadString('\n')
	if err != nil && raw == "" {
		return "", io.EOF
	}
	line := strings.TrimRight(raw, "\r\n")
	if len(line) > maxLineLen {
		fmt.Fprintln(s.out, "Input is too long.")
		return "", nil
	}
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}

func (s *Shell) metaCommand(line string) (exit bool, err error) {
	switch line {
	case ".exit":
		fmt.Fprintln(s.out, "bye~")
		return true, nil
	case ".constants":
		s.printConstants()
		return false, nil
	default:
		fmt.Fprintf(s.out, "Unrecognized command '%s'.\n", line)
		return false, nil
	}
}

func (s *Shell) printConstants() {
	fmt.Fprintln(s.out, "Constants:")
	fmt.Fprintf(s.out, "ROW_SIZE: %d\n", row.Size)
	fmt.Fprintf(s.out, "COMMON_NODE_HEADER_SIZE: %d\n", page.CommonHeaderSize)
	fmt.Fprintf(s.out, "LEAF_NODE_HEADER_SIZE: %d\n", page.LeafHeaderSize)
	fmt.Fprintf(s.out, "LEAF_NODE_CELL_SIZE: %d\n", page.LeafCellSize)
	fmt.Fprintf(s.out, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", pager.PageSize-page.LeafHeaderSize)
	fmt.Fprintf(s.out, "LEAF_NODE_MAX_CELLS: %d\n", page.LeafMaxCells)
}

func (s *Shell) execute(line string) error {
	result, err := s.disp.Execute(line)
	if err != nil {
		return err
	}
	for _, l := range result.Lines {
		fmt.Fprintln(s.out, l)
	}
	if result.OK {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Executed.")
		fmt.Fprintln(s.out)
	}
	return nil
}
