package pager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestOpenCreatesEmptyFile(t *testing.T) {
	path := tempPath(t)
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()
	if p.NumPages() != 0 {
		t.Fatalf("NumPages() = %d, want 0", p.NumPages())
	}
}

func TestGetPageAllocatesAndZeroFills(t *testing.T) {
	p, err := Open(tempPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	pg, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for i, b := range pg {
		if b != 0 {
			t.Fatalf("page byte %d = %d, want 0", i, b)
		}
	}
	if p.NumPages() != 1 {
		t.Fatalf("NumPages() = %d, want 1", p.NumPages())
	}
}

func TestGetPageOutOfBoundsIsFatal(t *testing.T) {
	p, err := Open(tempPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	_, err = p.GetPage(MaxPages)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("GetPage(MaxPages) error = %v, want *FatalError", err)
	}
}

func TestFlushUnpopulatedSlotIsFatal(t *testing.T) {
	p, err := Open(tempPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	var fatal *FatalError
	if err := p.Flush(3); !errors.As(err, &fatal) {
		t.Fatalf("Flush(3) error = %v, want *FatalError", err)
	}
}

func TestUnusedPageNumReservesNewPage(t *testing.T) {
	p, err := Open(tempPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if got := p.UnusedPageNum(); got != 0 {
		t.Fatalf("UnusedPageNum() = %d, want 0", got)
	}
	if _, err := p.GetPage(p.UnusedPageNum()); err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got := p.UnusedPageNum(); got != 1 {
		t.Fatalf("UnusedPageNum() after one allocation = %d, want 1", got)
	}
}

func TestCloseWritesPersistedData(t *testing.T) {
	path := tempPath(t)
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pg, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	pg[0] = 0xAB
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != PageSize {
		t.Fatalf("file size = %d, want %d", info.Size(), PageSize)
	}

	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()
	pg2, err := p2.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage after reopen: %v", err)
	}
	if pg2[0] != 0xAB {
		t.Fatalf("pg2[0] = %x, want 0xAB", pg2[0])
	}
}

func TestOpenRejectsCorruptFileLength(t *testing.T) {
	path := tempPath(t)
	if err := os.WriteFile(path, make([]byte, PageSize+1), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(path)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("Open corrupt file error = %v, want *FatalError", err)
	}
}
