package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

func TestQueries_EmptyTablesGiveNeutralResults(t *testing.T) {
	db := createTestDB(t, fixture{})

	goods, err := GoodsOfLongestNameBuyer(db)
	require.NoError(t, err)
	assert.NotNil(t, goods)
	assert.Empty(t, goods)

	_, ok, err := MostExpensiveGoodCategory(db)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = MinimumSalesCity(db)
	require.NoError(t, err)
	assert.False(t, ok)

	buyers, err := MostPopularGoodBuyers(db)
	require.NoError(t, err)
	assert.NotNil(t, buyers)
	assert.Empty(t, buyers)

	n, err := MinimumNumberOfShopsInCountry(db)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	sales, err := OtherCitySales(db)
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)

	total, err := TotalSalesValue(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestQueries_MissingTablePropagates(t *testing.T) {
	db := store.New()

	_, err := GoodsOfLongestNameBuyer(db)
	assert.True(t, store.IsTableNotFound(err))
	_, _, err = MostExpensiveGoodCategory(db)
	assert.True(t, store.IsTableNotFound(err))
	_, _, err = MinimumSalesCity(db)
	assert.True(t, store.IsTableNotFound(err))
	_, err = MostPopularGoodBuyers(db)
	assert.True(t, store.IsTableNotFound(err))
	_, err = MinimumNumberOfShopsInCountry(db)
	assert.True(t, store.IsTableNotFound(err))
	_, err = OtherCitySales(db)
	assert.True(t, store.IsTableNotFound(err))
	_, err = TotalSalesValue(db)
	assert.True(t, store.IsTableNotFound(err))
	_, err = Run(db)
	assert.True(t, store.IsTableNotFound(err))
}

func TestTotalSalesValue(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 10}, {ID: 2, Price: 5}},
		sales: []model.Sale{sale(1, 1, 1, 1, 2), sale(2, 2, 1, 1, 3)},
	})

	total, err := TotalSalesValue(db)
	require.NoError(t, err)
	assert.Equal(t, int64(35), total)
}

func TestTotalSalesValue_DanglingGoodExcluded(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 10}},
		sales: []model.Sale{sale(1, 1, 1, 1, 2), sale(2, 99, 1, 1, 100)},
	})

	total, err := TotalSalesValue(db)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)
}

func TestMinimumNumberOfShopsInCountry(t *testing.T) {
	db := createTestDB(t, fixture{
		shops: []model.Shop{
			{ID: 1, Country: "A"}, {ID: 2, Country: "B"}, {ID: 3, Country: "A"},
			{ID: 4, Country: "C"}, {ID: 5, Country: "B"},
		},
	})

	n, err := MinimumNumberOfShopsInCountry(db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMinimumNumberOfShopsInCountry_SingleCountry(t *testing.T) {
	db := createTestDB(t, fixture{
		shops: []model.Shop{{ID: 1, Country: "A"}, {ID: 2, Country: "A"}},
	})

	n, err := MinimumNumberOfShopsInCountry(db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOtherCitySales(t *testing.T) {
	db := createTestDB(t, fixture{
		buyers: []model.Buyer{{ID: 1, Name: "Ann", City: "X"}},
		shops:  []model.Shop{{ID: 1, City: "X"}, {ID: 2, City: "Y"}},
		sales: []model.Sale{
			sale(1, 1, 1, 1, 1),  // same city
			sale(2, 1, 1, 2, 1),  // other city
			sale(3, 1, 99, 2, 1), // dangling buyer
			sale(4, 1, 1, 99, 1), // dangling shop
			sale(5, 2, 1, 2, 4),  // other city
		},
	})

	sales, err := OtherCitySales(db)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, ids(sales))
}

func TestMostExpensiveGoodCategory(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 10, Category: "A"}, {ID: 2, Price: 20, Category: "B"}},
	})

	category, ok, err := MostExpensiveGoodCategory(db)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "B", category)
}

func TestMostExpensiveGoodCategory_TieFirstInTableOrderWins(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{
			{ID: 1, Price: 5, Category: "cheap"},
			{ID: 2, Price: 20, Category: "first"},
			{ID: 3, Price: 20, Category: "second"},
		},
	})

	category, ok, err := MostExpensiveGoodCategory(db)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", category)
}

func TestGoodsOfLongestNameBuyer(t *testing.T) {
	goods := []model.Good{{ID: 1, Category: "a"}, {ID: 2, Category: "b"}, {ID: 3, Category: "c"}}
	sales := []model.Sale{
		sale(1, 3, 2, 1, 1), // Alexandra buys 3
		sale(2, 1, 1, 1, 1), // Ann buys 1
		sale(3, 1, 2, 1, 1), // Alexandra buys 1
		sale(4, 3, 2, 1, 1), // Alexandra buys 3 again
	}

	orders := map[string][]model.Buyer{
		"short first": {{ID: 1, Name: "Ann"}, {ID: 2, Name: "Alexandra"}},
		"long first":  {{ID: 2, Name: "Alexandra"}, {ID: 1, Name: "Ann"}},
	}

	for name, buyers := range orders {
		t.Run(name, func(t *testing.T) {
			db := createTestDB(t, fixture{goods: goods, buyers: buyers, sales: sales})

			got, err := GoodsOfLongestNameBuyer(db)
			require.NoError(t, err)
			// goods table order, each good once
			assert.Equal(t, []int64{1, 3}, ids(got))
		})
	}
}

func TestGoodsOfLongestNameBuyer_TieBreaks(t *testing.T) {
	goods := []model.Good{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name   string
		buyers []model.Buyer
		want   []int64
	}{
		{
			name:   "equal length, lexicographically last wins",
			buyers: []model.Buyer{{ID: 2, Name: "Zoe"}, {ID: 1, Name: "Amy"}},
			want:   []int64{2},
		},
		{
			name:   "identical names, last inserted wins",
			buyers: []model.Buyer{{ID: 1, Name: "Amy"}, {ID: 3, Name: "Amy"}},
			want:   []int64{3},
		},
		{
			name:   "length counts code points, not bytes",
			buyers: []model.Buyer{{ID: 1, Name: "Zoë"}, {ID: 2, Name: "Abcd"}},
			want:   []int64{2},
		},
		{
			name:   "decomposed accents count once",
			buyers: []model.Buyer{{ID: 1, Name: "Zoe\u0308"}, {ID: 2, Name: "Abcd"}},
			want:   []int64{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := createTestDB(t, fixture{
				goods:  goods,
				buyers: tt.buyers,
				sales:  []model.Sale{sale(1, 1, 1, 1, 1), sale(2, 2, 2, 1, 1), sale(3, 3, 3, 1, 1)},
			})

			got, err := GoodsOfLongestNameBuyer(db)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestGoodsOfLongestNameBuyer_NoSales(t *testing.T) {
	db := createTestDB(t, fixture{
		goods:  []model.Good{{ID: 1}},
		buyers: []model.Buyer{{ID: 1, Name: "Ann"}},
	})

	got, err := GoodsOfLongestNameBuyer(db)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMinimumSalesCity(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 10}, {ID: 2, Price: 1}},
		shops: []model.Shop{
			{ID: 1, City: "Big"},
			{ID: 2, City: "Small"},
			{ID: 3, City: "Big"},
			{ID: 4, City: "Empty"},
		},
		sales: []model.Sale{
			sale(1, 1, 1, 1, 1), // Big 10
			sale(2, 2, 1, 2, 5), // Small 5
			sale(3, 2, 1, 3, 1), // Big 1
			sale(4, 2, 1, 2, 1), // Small 1
		},
	})

	city, ok, err := MinimumSalesCity(db)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Small", city, "cities without sales never appear")
}

func TestMinimumSalesCity_SumsAcrossShopsInCity(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 4}},
		shops: []model.Shop{{ID: 1, City: "A"}, {ID: 2, City: "A"}, {ID: 3, City: "B"}},
		sales: []model.Sale{
			sale(1, 1, 1, 1, 1), // A 4
			sale(2, 1, 1, 2, 1), // A 4
			sale(3, 1, 1, 3, 2), // B 8 == A total, but B is not smaller
		},
	})

	city, ok, err := MinimumSalesCity(db)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", city, "tie goes to the city first in shop order")
}

func TestMinimumSalesCity_TieIgnoresShopsWithoutSales(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 5}},
		shops: []model.Shop{
			{ID: 1, City: "X"}, // no sales
			{ID: 2, City: "Y"},
			{ID: 3, City: "X"},
		},
		sales: []model.Sale{
			sale(1, 1, 1, 3, 1), // X 5
			sale(2, 1, 1, 2, 1), // Y 5
		},
	})

	city, ok, err := MinimumSalesCity(db)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Y", city, "X's first shop has no sales, so Y's shop comes first")
}

func TestMinimumSalesCity_DanglingReferencesExcluded(t *testing.T) {
	db := createTestDB(t, fixture{
		goods: []model.Good{{ID: 1, Price: 4}},
		shops: []model.Shop{{ID: 1, City: "A"}},
		sales: []model.Sale{
			sale(1, 99, 1, 1, 1), // unknown good
			sale(2, 1, 1, 99, 1), // unknown shop
		},
	})

	_, ok, err := MinimumSalesCity(db)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMostPopularGoodBuyers(t *testing.T) {
	db := createTestDB(t, fixture{
		buyers: []model.Buyer{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}},
		sales: []model.Sale{
			sale(1, 10, 3, 1, 2), // good 10: 2+3 = 5
			sale(2, 20, 1, 1, 4), // good 20: 4
			sale(3, 10, 1, 1, 3),
			sale(4, 20, 2, 1, 0),
			sale(5, 10, 3, 1, 0),
		},
	})

	buyers, err := MostPopularGoodBuyers(db)
	require.NoError(t, err)
	// buyer table order, one row per matching sale
	assert.Equal(t, []int64{1, 3, 3}, ids(buyers))
}

func TestMostPopularGoodBuyers_TieFirstSoldWins(t *testing.T) {
	db := createTestDB(t, fixture{
		buyers: []model.Buyer{{ID: 1}, {ID: 2}},
		sales: []model.Sale{
			sale(1, 20, 2, 1, 3),
			sale(2, 10, 1, 1, 3),
		},
	})

	buyers, err := MostPopularGoodBuyers(db)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(buyers))
}

func TestQueries_DoNotMutateStore(t *testing.T) {
	db := createTestDB(t, fixture{
		goods:  []model.Good{{ID: 2, Price: 1}, {ID: 1, Price: 9}},
		buyers: []model.Buyer{{ID: 1, Name: "Bob"}, {ID: 2, Name: "Al"}},
	})

	_, err := Run(db)
	require.NoError(t, err)

	goods, err := store.GetTable[model.Good](db)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(goods))
	buyers, err := store.GetTable[model.Buyer](db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(buyers))
}
