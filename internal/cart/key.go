package cart

import (
	"strconv"
	"strings"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

// keyDelimiter must never appear in a color or size; both are treated as
// opaque strings that exclude it.
const keyDelimiter = "|"

// KeyOf encodes the identity of a cart line as "id|color|size". Missing
// components encode as empty strings, so a product without variants keys as
// "42||".
func KeyOf(l domain.CartLine) string {
	return strings.Join([]string{
		strconv.FormatInt(l.ID, 10),
		l.ColorKey(),
		l.Size,
	}, keyDelimiter)
}

// FindIndexByKey locates the line matching an encoded identity key, or -1.
// Matching is string-coerced equality on all three components, mirroring
// KeyOf.
func FindIndexByKey(c domain.Cart, key string) int {
	parts := strings.Split(key, keyDelimiter)
	if len(parts) != 3 {
		return -1
	}
	for i, l := range c {
		if strconv.FormatInt(l.ID, 10) == parts[0] &&
			l.ColorKey() == parts[1] &&
			l.Size == parts[2] {
			return i
		}
	}
	return -1
}
