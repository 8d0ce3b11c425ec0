package stock

import (
	"context"
	"sync"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
)

// Selection is the ephemeral per-product-detail state: active image, color,
// size and staged quantity, with the remaining stock for the exact variant.
// It recomputes on every color, size or cart change.
type Selection struct {
	mu       sync.Mutex
	product  domain.Product
	resolver *Resolver

	activeImage int
	activeColor string
	activeSize  string
	qty         int
	remaining   Remaining

	unsubscribe func()
}

// Snapshot is a read-only copy of the current selection.
type Snapshot struct {
	ActiveImageIndex int
	ActiveColor      string
	ActiveSize       string
	Qty              int
	Remaining        Remaining
	CanAdd           bool
}

// NewSelection starts at the first available color and size (or none) and
// the first image, then keeps itself consistent with the cart by
// subscribing to the bus. Call Close when the detail view goes away.
func NewSelection(ctx context.Context, p domain.Product, resolver *Resolver, bus *events.Bus) *Selection {
	s := &Selection{
		product:  p,
		resolver: resolver,
		qty:      1,
	}
	if p.HasColors() {
		s.activeColor = p.Colors[0]
	}
	if p.HasSizes() {
		s.activeSize = p.Sizes[0]
	}
	if s.activeColor != "" {
		if idx := FindImageIndexForColor(p.Images, s.activeColor); idx >= 0 {
			s.activeImage = idx
		}
	}
	s.recompute(ctx)

	if bus != nil {
		s.unsubscribe = bus.Subscribe(func(events.CartChanged) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.recompute(context.Background())
		})
	}
	return s
}

func (s *Selection) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// SelectColor switches the active color and moves the main image only when
// a filename matches the color.
func (s *Selection) SelectColor(ctx context.Context, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeColor = color
	if idx := FindImageIndexForColor(s.product.Images, color); idx >= 0 {
		s.activeImage = idx
	}
	s.recompute(ctx)
}

func (s *Selection) SelectSize(ctx context.Context, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSize = size
	s.recompute(ctx)
}

// SelectImage makes the image at idx active; when its filename matches a
// declared color, that color becomes active too.
func (s *Selection) SelectImage(ctx context.Context, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.product.Images) {
		return
	}
	s.activeImage = idx
	if color, ok := DetectColor(s.product.Images[idx], s.product.Colors); ok {
		s.activeColor = color
	}
	s.recompute(ctx)
}

// SetQty stages a quantity to add, clamped to at least 1 and at most the
// remaining stock.
func (s *Selection) SetQty(ctx context.Context, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty < 1 {
		qty = 1
	}
	s.qty = qty
	s.recompute(ctx)
}

// Snapshot returns the current selection state.
func (s *Selection) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ActiveImageIndex: s.activeImage,
		ActiveColor:      s.activeColor,
		ActiveSize:       s.activeSize,
		Qty:              s.qty,
		Remaining:        s.remaining,
		CanAdd:           s.canAdd(),
	}
}

// Line builds the cart line for the current selection.
func (s *Selection) Line() domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	image := ""
	if s.activeImage >= 0 && s.activeImage < len(s.product.Images) {
		image = s.product.Images[s.activeImage]
	}
	color := ""
	if s.product.HasColors() {
		color = s.activeColor
	}
	return domain.CartLine{
		ID:        s.product.ID,
		Title:     s.product.Name,
		Price:     s.product.Price,
		Image:     image,
		ColorName: color,
		Size:      NormalizeSize(s.product, s.activeSize),
		Qty:       s.qty,
	}
}

// canAdd is false while a declared size dimension has no selection, or the
// variant is depleted. Callers hold the lock.
func (s *Selection) canAdd() bool {
	if s.product.HasSizes() && s.activeSize == "" {
		return false
	}
	return !s.remaining.Depleted()
}

func (s *Selection) recompute(ctx context.Context) {
	s.remaining = s.resolver.Remaining(ctx, s.product, s.activeColor, s.activeSize)
	s.qty = s.remaining.Cap(s.qty)
}
