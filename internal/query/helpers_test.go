package query

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

// fixture lists the rows of each table for a test database.
type fixture struct {
	goods  []model.Good
	buyers []model.Buyer
	shops  []model.Shop
	sales  []model.Sale
}

// createTestDB creates a Database with all four tables populated from f.
func createTestDB(t *testing.T, f fixture) *store.Database {
	t.Helper()
	db := store.New(store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	require.NoError(t, store.CreateTable[model.Good](db))
	require.NoError(t, store.CreateTable[model.Buyer](db))
	require.NoError(t, store.CreateTable[model.Shop](db))
	require.NoError(t, store.CreateTable[model.Sale](db))

	for _, g := range f.goods {
		require.NoError(t, store.InsertValue(db, g))
	}
	for _, b := range f.buyers {
		require.NoError(t, store.InsertValue(db, b))
	}
	for _, s := range f.shops {
		require.NoError(t, store.InsertValue(db, s))
	}
	for _, s := range f.sales {
		require.NoError(t, store.InsertValue(db, s))
	}
	return db
}

func sale(id, goodID, buyerID, shopID, qty int64) model.Sale {
	return model.Sale{ID: id, GoodID: goodID, BuyerID: buyerID, ShopID: shopID, Quantity: qty}
}

func ids[T model.Entity](rows []T) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.EntityID()
	}
	return out
}
