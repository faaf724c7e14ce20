package query

import (
	"cmp"
	"slices"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

// rankedBuyer pairs a buyer with its name's ordering key.
type rankedBuyer struct {
	model.Buyer
	key nameKey
}

// GoodsOfLongestNameBuyer returns the goods bought by the buyer with the
// longest name, in goods table order, each good once.
//
// Among names of equal length the lexicographically last wins; among
// identical names the last inserted wins. No buyers gives an empty result.
func GoodsOfLongestNameBuyer(db *store.Database) ([]model.Good, error) {
	buyers, err := store.GetTable[model.Buyer](db)
	if err != nil {
		return nil, err
	}
	sales, err := store.GetTable[model.Sale](db)
	if err != nil {
		return nil, err
	}
	goods, err := store.GetTable[model.Good](db)
	if err != nil {
		return nil, err
	}

	result := []model.Good{}
	if len(buyers) == 0 {
		return result, nil
	}

	// sort: ascending (length, name), take last
	ranked := make([]rankedBuyer, len(buyers))
	for i, b := range buyers {
		ranked[i] = rankedBuyer{Buyer: b, key: newNameKey(b.Name)}
	}
	slices.SortStableFunc(ranked, func(a, b rankedBuyer) int {
		return compareNameKeys(a.key, b.key)
	})
	buyer := ranked[len(ranked)-1].Buyer

	// filter: goods referenced by that buyer's sales
	bought := make(map[int64]bool)
	for _, sale := range sales {
		if sale.BuyerID == buyer.ID {
			bought[sale.GoodID] = true
		}
	}

	for _, good := range goods {
		if bought[good.ID] {
			result = append(result, good)
		}
	}
	return result, nil
}

// MostExpensiveGoodCategory returns the category of the highest priced good.
// The first such good in table order wins. ok is false if there are no goods.
func MostExpensiveGoodCategory(db *store.Database) (category string, ok bool, err error) {
	goods, err := store.GetTable[model.Good](db)
	if err != nil {
		return "", false, err
	}
	if len(goods) == 0 {
		return "", false, nil
	}

	sorted := slices.Clone(goods)
	slices.SortStableFunc(sorted, func(a, b model.Good) int {
		return cmp.Compare(b.Price, a.Price)
	})
	return sorted[0].Category, true, nil
}

// cityRevenue is the revenue of one shop, labelled with the shop's city.
type cityRevenue struct {
	City    string
	Revenue int64
}

// MinimumSalesCity returns the city whose shops took the least revenue,
// where revenue is the sum of price × quantity over the city's sales.
//
// Cities without joined sales never appear. Ties go to the city whose first
// shop with joined sales comes first in the shop table; shops without sales
// do not count. ok is false if no sale joins.
func MinimumSalesCity(db *store.Database) (city string, ok bool, err error) {
	sales, err := store.GetTable[model.Sale](db)
	if err != nil {
		return "", false, err
	}
	goods, err := store.GetTable[model.Good](db)
	if err != nil {
		return "", false, err
	}
	shops, err := store.GetTable[model.Shop](db)
	if err != nil {
		return "", false, err
	}

	// join Sale→Good, group by shop, sum
	byShop := groupBy(joinSaleGoods(sales, goods), func(p pricedSale) int64 {
		return p.Sale.ShopID
	})
	shopRevenue := make(map[int64]int64, len(byShop))
	for _, g := range byShop {
		shopRevenue[g.Key] = sumBy(g.Rows, pricedSale.Value)
	}

	// join Shop→revenue in shop order, group by city, sum
	var perShop []cityRevenue
	for _, shop := range shops {
		if revenue, ok := shopRevenue[shop.ID]; ok {
			perShop = append(perShop, cityRevenue{City: shop.City, Revenue: revenue})
		}
	}
	byCity := groupBy(perShop, func(r cityRevenue) string { return r.City })
	if len(byCity) == 0 {
		return "", false, nil
	}

	totals := make([]cityRevenue, len(byCity))
	for i, g := range byCity {
		totals[i] = cityRevenue{
			City:    g.Key,
			Revenue: sumBy(g.Rows, func(r cityRevenue) int64 { return r.Revenue }),
		}
	}

	slices.SortStableFunc(totals, func(a, b cityRevenue) int {
		return cmp.Compare(a.Revenue, b.Revenue)
	})
	return totals[0].City, true, nil
}

// goodQuantity is the total quantity sold of one good.
type goodQuantity struct {
	GoodID   int64
	Quantity int64
}

// MostPopularGoodBuyers returns the buyers of the good with the largest
// total quantity sold.
//
// Buyers come in buyer table order, once per matching sale, so a buyer who
// bought the good twice appears twice. Among goods with equal totals the one
// sold first wins. No sales gives an empty result.
func MostPopularGoodBuyers(db *store.Database) ([]model.Buyer, error) {
	sales, err := store.GetTable[model.Sale](db)
	if err != nil {
		return nil, err
	}
	buyers, err := store.GetTable[model.Buyer](db)
	if err != nil {
		return nil, err
	}

	result := []model.Buyer{}
	if len(sales) == 0 {
		return result, nil
	}

	// group sales by good, sum quantity, sort descending, take first
	byGood := groupBy(sales, func(s model.Sale) int64 { return s.GoodID })
	counts := make([]goodQuantity, len(byGood))
	for i, g := range byGood {
		counts[i] = goodQuantity{
			GoodID:   g.Key,
			Quantity: sumBy(g.Rows, func(s model.Sale) int64 { return s.Quantity }),
		}
	}
	slices.SortStableFunc(counts, func(a, b goodQuantity) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	popular := counts[0].GoodID

	// join Buyer→sales of the popular good
	matches := make(map[int64]int)
	for _, sale := range sales {
		if sale.GoodID == popular {
			matches[sale.BuyerID]++
		}
	}
	for _, buyer := range buyers {
		for range matches[buyer.ID] {
			result = append(result, buyer)
		}
	}
	return result, nil
}

// MinimumNumberOfShopsInCountry returns the smallest number of shops any
// country has. No shops gives 0.
func MinimumNumberOfShopsInCountry(db *store.Database) (int, error) {
	shops, err := store.GetTable[model.Shop](db)
	if err != nil {
		return 0, err
	}

	byCountry := groupBy(shops, func(s model.Shop) string { return s.Country })
	if len(byCountry) == 0 {
		return 0, nil
	}

	least := len(byCountry[0].Rows)
	for _, g := range byCountry[1:] {
		least = min(least, len(g.Rows))
	}
	return least, nil
}

// OtherCitySales returns, in sale order, every sale made at a shop in a city
// other than the buyer's own. Sales whose buyer or shop does not resolve are
// dropped.
func OtherCitySales(db *store.Database) ([]model.Sale, error) {
	sales, err := store.GetTable[model.Sale](db)
	if err != nil {
		return nil, err
	}
	buyers, err := store.GetTable[model.Buyer](db)
	if err != nil {
		return nil, err
	}
	shops, err := store.GetTable[model.Shop](db)
	if err != nil {
		return nil, err
	}

	buyerByID := indexByID(buyers)
	shopByID := indexByID(shops)

	result := []model.Sale{}
	for _, sale := range sales {
		buyer, ok := buyerByID[sale.BuyerID]
		if !ok {
			continue
		}
		shop, ok := shopByID[sale.ShopID]
		if !ok {
			continue
		}
		if buyer.City != shop.City {
			result = append(result, sale)
		}
	}
	return result, nil
}

// TotalSalesValue returns the sum of price × quantity over all sales whose
// good resolves. No sales gives 0.
func TotalSalesValue(db *store.Database) (int64, error) {
	sales, err := store.GetTable[model.Sale](db)
	if err != nil {
		return 0, err
	}
	goods, err := store.GetTable[model.Good](db)
	if err != nil {
		return 0, err
	}

	return sumBy(joinSaleGoods(sales, goods), pricedSale.Value), nil
}
