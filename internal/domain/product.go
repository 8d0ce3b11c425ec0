package domain

import "github.com/shopspring/decimal"

// Product is a read-only catalog entry as served by the products API.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	BrandName   string
	BrandLogo   string
	Images      []string
	Colors      []string
	Sizes       []string
	// Quantity is the declared stock for the SKU. Zero or negative means
	// the stock is unlimited.
	Quantity int
	Release  string
}

// HasStockLimit reports whether the product declares a positive stock
// quantity that purchases must be capped against.
func (p Product) HasStockLimit() bool {
	return p.Quantity > 0
}

func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

func (p Product) HasColors() bool {
	return len(p.Colors) > 0
}
