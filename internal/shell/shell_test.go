package shell

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"myjql/internal/btree"
	"myjql/internal/dispatch"
)

func newTestShell(t *testing.T, in string) (*Shell, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.myjql")
	tr, err := btree.Open(path)
	if err != nil {
		t.Fatalf("btree.Open: %v", err)
	}
	t.Cleanup(func() { tr.Close() })

	var out bytes.Buffer
	return New(strings.NewReader(in), &out, dispatch.New(tr)), &out
}

func TestRunInsertAndSelect(t *testing.T) {
	sh, out := newTestShell(t, "insert 1 apple\nselect\n.exit\n")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "(1, apple)") {
		t.Fatalf("output = %q, want to contain row output", out.String())
	}
	if !strings.Contains(out.String(), "Executed.") {
		t.Fatalf("output = %q, want to contain Executed.", out.String())
	}
}

func TestRunUnrecognizedMetaCommand(t *testing.T) {
	sh, out := newTestShell(t, ".frobnicate\n.exit\n")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Unrecognized command '.frobnicate'.") {
		t.Fatalf("output = %q, want unrecognized-command message", out.String())
	}
}

func TestRunTooLongLineIsRejected(t *testing.T) {
	long := "insert 1 " + strings.Repeat("x", 40)
	sh, out := newTestShell(t, long+"\n.exit\n")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Input is too long.") {
		t.Fatalf("output = %q, want too-long message", out.String())
	}
}

func TestRunEOFPrintsGoodbye(t *testing.T) {
	sh, out := newTestShell(t, "insert 1 apple\n")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "bye~") {
		t.Fatalf("output = %q, want bye~ on EOF", out.String())
	}
}

func TestConstantsMetaCommand(t *testing.T) {
	sh, out := newTestShell(t, ".constants\n.exit\n")
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "LEAF_NODE_MAX_CELLS: 254") {
		t.Fatalf("output = %q, want LEAF_NODE_MAX_CELLS constant", out.String())
	}
}
