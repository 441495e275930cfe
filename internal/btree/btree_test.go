package btree

import (
	"fmt"
	"path/filepath"
	"testing"

	"myjql/internal/page"
	"myjql/internal/row"
)

func openTestTree(t *testing.T) (*Tree, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.myjql")
	tr, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tr, path
}

func rowsEqual(t *testing.T, got []row.Row, want []row.Row) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows %+v, want %d rows %+v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestInsertAndSelectAll(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	mustInsert(t, tr, 1, "apple")
	mustInsert(t, tr, 2, "banana")

	got, err := tr.Traverse()
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	rowsEqual(t, got, []row.Row{{A: 1, B: "apple"}, {A: 2, B: "banana"}})
}

func TestSelectDuplicateKeyInInsertionOrder(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	mustInsert(t, tr, 1, "apple")
	mustInsert(t, tr, 2, "apple")

	got, err := tr.Search("apple")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	rowsEqual(t, got, []row.Row{{A: 1, B: "apple"}, {A: 2, B: "apple"}})

	got, err = tr.Search("banana")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search(banana) = %+v, want empty", got)
	}
}

func TestInsertManyDistinctKeysProducesMultiLevelTree(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	for i := 0; i < 300; i++ {
		mustInsert(t, tr, uint32(i), fmt.Sprintf("k%03d", i))
	}

	got, err := tr.Search("k150")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	rowsEqual(t, got, []row.Row{{A: 150, B: "k150"}})

	root, err := tr.getPage(rootPageNum)
	if err != nil {
		t.Fatalf("getPage: %v", err)
	}
	if page.GetNodeType(root) != page.TypeInternal {
		t.Fatalf("root node type = %v, want internal after 300 inserts", page.GetNodeType(root))
	}
}

func TestDeleteRemovesKeyAndLeavesOthersIntact(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	for i := 0; i < 300; i++ {
		mustInsert(t, tr, uint32(i), fmt.Sprintf("k%03d", i))
	}
	if err := tr.Delete("k150"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := tr.Search("k150")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search(k150) after delete = %+v, want empty", got)
	}

	all, err := tr.Traverse()
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if len(all) != 299 {
		t.Fatalf("Traverse after delete = %d rows, want 299", len(all))
	}
}

func TestDeleteAllDuplicatesLeavesEmptyRoot(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	for i := 0; i < 300; i++ {
		mustInsert(t, tr, uint32(i), "dup")
	}
	if err := tr.Delete("dup"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := tr.Search("dup")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search(dup) after delete-all = %+v, want empty", got)
	}

	root, err := tr.getPage(rootPageNum)
	if err != nil {
		t.Fatalf("getPage: %v", err)
	}
	if page.GetNodeType(root) != page.TypeLeaf {
		t.Fatalf("root node type = %v, want leaf after collapse", page.GetNodeType(root))
	}
	if page.LeafNumCells(root) != 0 {
		t.Fatalf("root leaf cells = %d, want 0", page.LeafNumCells(root))
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	tr, path := openTestTree(t)
	for i := 0; i < 300; i++ {
		mustInsert(t, tr, uint32(i), fmt.Sprintf("k%03d", i))
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tr2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tr2.Close()

	got, err := tr2.Search("k150")
	if err != nil {
		t.Fatalf("Search after reopen: %v", err)
	}
	rowsEqual(t, got, []row.Row{{A: 150, B: "k150"}})
}

func TestFillDisciplineAfterInsertsAndDeletes(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	for i := 0; i < 500; i++ {
		mustInsert(t, tr, uint32(i), fmt.Sprintf("k%04d", i))
	}
	for i := 0; i < 400; i++ {
		if err := tr.Delete(fmt.Sprintf("k%04d", i)); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}

	ratios, err := tr.LeafFillRatios()
	if err != nil {
		t.Fatalf("LeafFillRatios: %v", err)
	}
	for i, r := range ratios {
		if r > 1.0 {
			t.Fatalf("leaf %d fill ratio %f exceeds 1.0", i, r)
		}
	}

	got, err := tr.Traverse()
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("Traverse after partial delete = %d rows, want 100", len(got))
	}
}

// TestLeafRedistributeFromRightKeepsSeparatorsRoutable deletes enough of
// the leftmost leaf's keys to force a borrow from its right sibling, then
// checks that every surviving key is still reachable through Find's
// separator-driven routing, not just through the leaf chain.
func TestLeafRedistributeFromRightKeepsSeparatorsRoutable(t *testing.T) {
	tr, _ := openTestTree(t)
	defer tr.Close()

	const n = 400
	for i := 0; i < n; i++ {
		mustInsert(t, tr, uint32(i), fmt.Sprintf("k%04d", i))
	}

	// Thin out the front of the key space so the leftmost leaf dips
	// below minimum fill and has to borrow rather than merge.
	for i := 0; i < 80; i++ {
		if err := tr.Delete(fmt.Sprintf("k%04d", i)); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}

	for i := 80; i < n; i++ {
		b := fmt.Sprintf("k%04d", i)
		got, err := tr.Search(b)
		if err != nil {
			t.Fatalf("Search(%q): %v", b, err)
		}
		rowsEqual(t, got, []row.Row{{A: uint32(i), B: b}})
	}

	all, err := tr.Traverse()
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if len(all) != n-80 {
		t.Fatalf("Traverse after thinning = %d rows, want %d", len(all), n-80)
	}
	for i := 1; i < len(all); i++ {
		if row.Compare(row.EncodeKey(all[i-1].B), row.EncodeKey(all[i].B)) >= 0 {
			t.Fatalf("Traverse not strictly increasing at %d: %q then %q", i, all[i-1].B, all[i].B)
		}
	}
}

func mustInsert(t *testing.T, tr *Tree, a uint32, b string) {
	t.Helper()
	if err := tr.Insert(row.Row{A: a, B: b}); err != nil {
		t.Fatalf("Insert(%d, %q): %v", a, b, err)
	}
}
