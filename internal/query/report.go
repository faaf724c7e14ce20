package query

import (
	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

// Query names, as used in reports, scenario files and the CLI.
const (
	NameGoodsOfLongestNameBuyer       = "goods_of_longest_name_buyer"
	NameMostExpensiveGoodCategory     = "most_expensive_good_category"
	NameMinimumSalesCity              = "minimum_sales_city"
	NameMostPopularGoodBuyers         = "most_popular_good_buyers"
	NameMinimumNumberOfShopsInCountry = "minimum_number_of_shops_in_country"
	NameOtherCitySales                = "other_city_sales"
	NameTotalSalesValue               = "total_sales_value"
)

// Names returns every query name in report order.
func Names() []string {
	return []string{
		NameGoodsOfLongestNameBuyer,
		NameMostExpensiveGoodCategory,
		NameMinimumSalesCity,
		NameMostPopularGoodBuyers,
		NameMinimumNumberOfShopsInCountry,
		NameOtherCitySales,
		NameTotalSalesValue,
	}
}

// IsName reports whether name is a known query name.
func IsName(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Report holds the result of every query over one Database.
// Absent results are nil pointers and encode as JSON null.
type Report struct {
	GoodsOfLongestNameBuyer       []model.Good  `json:"goods_of_longest_name_buyer"`
	MostExpensiveGoodCategory     *string       `json:"most_expensive_good_category"`
	MinimumSalesCity              *string       `json:"minimum_sales_city"`
	MostPopularGoodBuyers         []model.Buyer `json:"most_popular_good_buyers"`
	MinimumNumberOfShopsInCountry int           `json:"minimum_number_of_shops_in_country"`
	OtherCitySales                []model.Sale  `json:"other_city_sales"`
	TotalSalesValue               int64         `json:"total_sales_value"`
}

// Run evaluates every query against db.
func Run(db *store.Database) (*Report, error) {
	var r Report
	var err error

	if r.GoodsOfLongestNameBuyer, err = GoodsOfLongestNameBuyer(db); err != nil {
		return nil, err
	}

	category, ok, err := MostExpensiveGoodCategory(db)
	if err != nil {
		return nil, err
	}
	if ok {
		r.MostExpensiveGoodCategory = &category
	}

	city, ok, err := MinimumSalesCity(db)
	if err != nil {
		return nil, err
	}
	if ok {
		r.MinimumSalesCity = &city
	}

	if r.MostPopularGoodBuyers, err = MostPopularGoodBuyers(db); err != nil {
		return nil, err
	}
	if r.MinimumNumberOfShopsInCountry, err = MinimumNumberOfShopsInCountry(db); err != nil {
		return nil, err
	}
	if r.OtherCitySales, err = OtherCitySales(db); err != nil {
		return nil, err
	}
	if r.TotalSalesValue, err = TotalSalesValue(db); err != nil {
		return nil, err
	}

	return &r, nil
}

// Value returns the named result. ok is false for an unknown name.
// Absent results are returned as a nil *string.
func (r *Report) Value(name string) (value any, ok bool) {
	switch name {
	case NameGoodsOfLongestNameBuyer:
		return r.GoodsOfLongestNameBuyer, true
	case NameMostExpensiveGoodCategory:
		return r.MostExpensiveGoodCategory, true
	case NameMinimumSalesCity:
		return r.MinimumSalesCity, true
	case NameMostPopularGoodBuyers:
		return r.MostPopularGoodBuyers, true
	case NameMinimumNumberOfShopsInCountry:
		return r.MinimumNumberOfShopsInCountry, true
	case NameOtherCitySales:
		return r.OtherCitySales, true
	case NameTotalSalesValue:
		return r.TotalSalesValue, true
	}
	return nil, false
}
