package journal

import (
	"path/filepath"
	"strconv"
	"testing"
)

// createTestJournal creates a file-backed journal in a temp dir.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// addEntry builds an add_to_cart entry with the cart figures that follow it.
func addEntry(session string, seq int64, name string, price, total int64, distinct int) Entry {
	return Entry{
		Session:      session,
		Seq:          seq,
		Action:       ActionAddToCart,
		Payload:      `{"product":{"id":1,"name":"` + name + `","price":` + strconv.FormatInt(price, 10) + `}}`,
		CartTotal:    total,
		CartDistinct: distinct,
	}
}
