// Package stock computes how many more units of a product variant may be
// added to the cart, and tracks the color/size/image selection on a product
// detail view.
package stock

import (
	"context"
	"strings"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

// OneSize stands in for the size dimension when a product declares none.
const OneSize = "OneSize"

// CartReader is the read-only slice of the cart engine the resolver needs.
type CartReader interface {
	Items(ctx context.Context) domain.Cart
}

// Remaining is the purchasable quantity left for a variant. Unlimited is set
// when the product declares no positive stock, in which case N is
// meaningless.
type Remaining struct {
	Unlimited bool
	N         int
}

// Depleted reports whether the variant cannot take even one more unit.
func (r Remaining) Depleted() bool {
	return !r.Unlimited && r.N <= 0
}

// Cap clamps a staged quantity to what the variant can still take; a
// depleted variant caps to 1, deferring to the add-disable rule.
func (r Remaining) Cap(qty int) int {
	if qty < 1 {
		qty = 1
	}
	if r.Unlimited || qty <= r.N {
		return qty
	}
	if r.N < 1 {
		return 1
	}
	return r.N
}

type Resolver struct {
	cart CartReader
}

func NewResolver(cart CartReader) *Resolver {
	return &Resolver{cart: cart}
}

// Remaining subtracts what the cart already holds of the exact
// (product, color, size) variant from the declared stock, floored at zero.
// The size compares against OneSize when the product has no size dimension.
func (r *Resolver) Remaining(ctx context.Context, p domain.Product, color, size string) Remaining {
	if !p.HasStockLimit() {
		return Remaining{Unlimited: true}
	}

	used := 0
	wantColor := strings.TrimSpace(color)
	wantSize := NormalizeSize(p, size)
	for _, line := range r.cart.Items(ctx) {
		if line.ID == p.ID && line.ColorKey() == wantColor && line.Size == wantSize {
			used = line.Qty
			break
		}
	}

	left := p.Quantity - used
	if left < 0 {
		left = 0
	}
	return Remaining{N: left}
}

// NormalizeSize maps the active size onto the sentinel for size-less
// products.
func NormalizeSize(p domain.Product, size string) string {
	if !p.HasSizes() {
		return OneSize
	}
	return size
}
