package store

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/salesdb/internal/model"
)

// createTestDB creates an empty Database with logging suppressed.
func createTestDB(t *testing.T) *Database {
	t.Helper()
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// createGoodsDB creates a Database with a Good table holding goods in order.
func createGoodsDB(t *testing.T, goods ...model.Good) *Database {
	t.Helper()
	db := createTestDB(t)
	require.NoError(t, CreateTable[model.Good](db))
	for _, g := range goods {
		require.NoError(t, InsertValue(db, g))
	}
	return db
}
