// Package pager owns the on-disk file backing a table and a bounded,
// unevicted cache of its pages. It lazily loads pages from disk on first
// touch and defers every write until Close, matching the durability
// boundary described for this engine: there is no fsync and no
// per-operation flush.
package pager

import (
	"fmt"
	"io"
	"os"
)

const (
	// PageSize is the fixed size of every page, chosen to match a common
	// OS page size.
	PageSize = 4096

	// MaxPages bounds the flat, unevicted page cache. A working set that
	// exceeds this is outside the contract this pager offers; see
	// FatalError.
	MaxPages = 4096
)

// Page is a single raw page, read or written as a whole.
type Page [PageSize]byte

// FatalError marks an invariant or I/O failure the engine cannot recover
// from: a corrupt file length, a page number outside MaxPages, or a flush
// of a slot that was never populated. Callers are expected to report the
// message and terminate, though the pager itself does not call os.Exit so
// that a deferred Close can still attempt to flush what it can.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

func fatalf(format string, args ...any) error {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// Pager mediates all access to the pages of one table file.
type Pager struct {
	file     *os.File
	fileSize int64
	numPages uint32
	pages    [MaxPages]*Page
}

// Open opens (creating if necessary) the file at path and prepares an
// empty page cache. The file length must already be a multiple of
// PageSize or the file is considered corrupt.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: stat %s: %w", path, err)
	}
	if info.Size()%PageSize != 0 {
		f.Close()
		return nil, fatalf("Corrupt file")
	}
	return &Pager{
		file:     f,
		fileSize: info.Size(),
		numPages: uint32(info.Size() / PageSize),
	}, nil
}

// GetPage returns the page at pageNum, loading it from disk on first
// touch. Pages beyond the current end of file are zero-filled and, per
// the allocation-on-touch rule, bump NumPages — so GetPage(UnusedPageNum())
// is how callers reserve a fresh page.
func (p *Pager) GetPage(pageNum uint32) (*Page, error) {
	if pageNum >= MaxPages {
		return nil, fatalf("Tried to fetch page number out of bounds. %d >= %d", pageNum, MaxPages)
	}
	if p.pages[pageNum] == nil {
		pg := new(Page)
		onDisk := uint32(p.fileSize / PageSize)
		if pageNum < onDisk {
			_, err := p.file.ReadAt(pg[:], int64(pageNum)*PageSize)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("pager: read page %d: %w", pageNum, err)
			}
		}
		p.pages[pageNum] = pg
		if pageNum >= p.numPages {
			p.numPages = pageNum + 1
		}
	}
	return p.pages[pageNum], nil
}

// Flush writes the page at pageNum to disk. Flushing a page that was
// never populated via GetPage is a fatal invariant violation.
func (p *Pager) Flush(pageNum uint32) error {
	if pageNum >= MaxPages || p.pages[pageNum] == nil {
		return fatalf("Tried to flush null page")
	}
	pg := p.pages[pageNum]
	if _, err := p.file.WriteAt(pg[:], int64(pageNum)*PageSize); err != nil {
		return fmt.Errorf("pager: write page %d: %w", pageNum, err)
	}
	if end := int64(pageNum+1) * PageSize; end > p.fileSize {
		p.fileSize = end
	}
	return nil
}

// UnusedPageNum returns the next page number that has not yet been
// allocated.
func (p *Pager) UnusedPageNum() uint32 { return p.numPages }

// NumPages returns the number of pages the table currently spans.
func (p *Pager) NumPages() uint32 { return p.numPages }

// Close flushes every populated slot, in page-number order, then closes
// the underlying file. It is the only durability boundary this engine
// has: nothing is written to disk before this point.
func (p *Pager) Close() error {
	var firstErr error
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil && firstErr == nil {
			firstErr = err
		}
		p.pages[i] = nil
	}
	if err := p.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
