package model

// Entity is the capability every storable record type satisfies.
// EntityID returns the record's identity, unique within its own table.
type Entity interface {
	EntityID() int64
}

// Good is an item for sale.
type Good struct {
	ID       int64  `json:"id" yaml:"id"`
	Category string `json:"category" yaml:"category"`
	Price    int64  `json:"price" yaml:"price"` // minor currency units, non-negative
}

// Buyer is a customer.
type Buyer struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	City string `json:"city" yaml:"city"`
}

// Shop is a point of sale.
type Shop struct {
	ID      int64  `json:"id" yaml:"id"`
	City    string `json:"city" yaml:"city"`
	Country string `json:"country" yaml:"country"`
}

// Sale records one purchase of Quantity units of a good by a buyer at a shop.
type Sale struct {
	ID       int64 `json:"id" yaml:"id"`
	GoodID   int64 `json:"good_id" yaml:"good_id"`
	BuyerID  int64 `json:"buyer_id" yaml:"buyer_id"`
	ShopID   int64 `json:"shop_id" yaml:"shop_id"`
	Quantity int64 `json:"quantity" yaml:"quantity"` // positive
}

func (g Good) EntityID() int64  { return g.ID }
func (b Buyer) EntityID() int64 { return b.ID }
func (s Shop) EntityID() int64  { return s.ID }
func (s Sale) EntityID() int64  { return s.ID }

// Value returns the sale's total in minor currency units for the given unit price.
func (s Sale) Value(price int64) int64 {
	return price * s.Quantity
}
