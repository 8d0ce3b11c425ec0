package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CartLine is one product variant held in the cart with a quantity.
type CartLine struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	ColorID   string          `json:"color_id,omitempty"`
	ColorName string          `json:"color_name,omitempty"`
	Size      string          `json:"size,omitempty"`
	Qty       int             `json:"qty"`
}

// ColorKey is the canonical variant discriminant: the trimmed color name,
// falling back to the color id when no name is set. Cart identity, server
// sync and stock resolution all compare colors through this.
func (l CartLine) ColorKey() string {
	if name := strings.TrimSpace(l.ColorName); name != "" {
		return name
	}
	return strings.TrimSpace(l.ColorID)
}

// LineTotal is price multiplied by quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart is an ordered list of lines; insertion order is preserved for new
// lines and the document is always persisted as a whole.
type Cart []CartLine

func (c Cart) TotalQty() int {
	total := 0
	for _, l := range c {
		total += l.Qty
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Clone returns a copy that can be mutated without touching the receiver.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
