package archive

import (
	"path/filepath"
	"testing"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
	"github.com/roach88/salesdb/internal/testutil"
)

// createTestArchive opens an archive in a temp dir with predictable snapshot ids.
func createTestArchive(t *testing.T) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	a, err := Open(path,
		WithIDGenerator(testutil.NewSequenceIDGenerator("snap")),
		WithLogger(testutil.DiscardLogger()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// createSalesDB returns a database with a goods and a buyers table.
func createSalesDB(t *testing.T) *store.Database {
	t.Helper()
	db := store.New(store.WithLogger(testutil.DiscardLogger()))
	for _, g := range []model.Good{
		{ID: 1, Category: "Food", Price: 10},
		{ID: 2, Category: "Toys & <Games>", Price: 25},
	} {
		if err := store.InsertValue(db, g); err != nil {
			t.Fatalf("insert good: %v", err)
		}
	}
	for _, b := range []model.Buyer{
		{ID: 7, Name: "Zoë", City: "Oslo"},
		{ID: 3, Name: "Ann", City: "Rome"},
	} {
		if err := store.InsertValue(db, b); err != nil {
			t.Fatalf("insert buyer: %v", err)
		}
	}
	return db
}
