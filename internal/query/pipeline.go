package query

import (
	"github.com/roach88/salesdb/internal/model"
)

// group is one group of rows sharing a key.
type group[K comparable, V any] struct {
	Key  K
	Rows []V
}

// groupBy groups rows by key, in order of each key's first appearance.
func groupBy[K comparable, V any](rows []V, key func(V) K) []group[K, V] {
	var groups []group[K, V]
	pos := make(map[K]int)
	for _, row := range rows {
		k := key(row)
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, group[K, V]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// sumBy sums f over rows.
func sumBy[V any](rows []V, f func(V) int64) int64 {
	var total int64
	for _, row := range rows {
		total += f(row)
	}
	return total
}

// indexByID maps identity to row. Identities are unique per table; if a
// caller broke that, the first row wins.
func indexByID[T model.Entity](rows []T) map[int64]T {
	idx := make(map[int64]T, len(rows))
	for _, row := range rows {
		if _, ok := idx[row.EntityID()]; !ok {
			idx[row.EntityID()] = row
		}
	}
	return idx
}

// pricedSale is a sale joined with its good.
type pricedSale struct {
	Sale model.Sale
	Good model.Good
}

// Value is the sale's total at the good's price.
func (p pricedSale) Value() int64 {
	return p.Sale.Value(p.Good.Price)
}

// joinSaleGoods joins sales to goods on Sale.GoodID, in sale order.
func joinSaleGoods(sales []model.Sale, goods []model.Good) []pricedSale {
	byID := indexByID(goods)
	joined := make([]pricedSale, 0, len(sales))
	for _, sale := range sales {
		if good, ok := byID[sale.GoodID]; ok {
			joined = append(joined, pricedSale{Sale: sale, Good: good})
		}
	}
	return joined
}
