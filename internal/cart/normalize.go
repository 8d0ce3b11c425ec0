package cart

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

// itemListPaths are the response shapes the cart endpoint has been seen to
// use, probed in order. The server contract is not strictly pinned, so an
// unrecognized shape falls back to an empty cart rather than failing.
var itemListPaths = [][]string{
	nil, // top-level array
	{"items"},
	{"data", "items"},
	{"cart", "items"},
	{"data", "cart", "items"},
	{"items", "data"},
}

// NormalizeCart turns a decoded cart response of any known shape into the
// canonical line list.
func NormalizeCart(payload any) domain.Cart {
	for _, path := range itemListPaths {
		items, ok := dig(payload, path)
		if !ok {
			continue
		}
		return normalizeItems(items)
	}
	return domain.Cart{}
}

func dig(payload any, path []string) ([]any, bool) {
	cur := payload
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	items, ok := cur.([]any)
	return items, ok
}

func normalizeItems(items []any) domain.Cart {
	out := make(domain.Cart, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		line := domain.CartLine{
			ID:        asInt64(first(m, "id", "product_id")),
			Title:     asString(first(m, "name", "title")),
			Price:     asDecimal(m["price"]),
			Image:     asString(first(m, "image", "cover_image")),
			ColorID:   asString(m["color_id"]),
			ColorName: asString(first(m, "color", "color_name")),
			Size:      asString(m["size"]),
			Qty:       int(asInt64(first(m, "quantity", "qty"))),
		}
		if line.Qty < 1 {
			line.Qty = 1
		}
		out = append(out, line)
	}
	return out
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
