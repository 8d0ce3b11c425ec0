// Package cart owns cart line identity, quantity merge/update/remove logic
// and totals. Engine works purely against the local store; RemoteEngine
// drives the server-backed cart and reconciles local state from server
// responses.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
)

// Totals is a snapshot fold over the cart.
type Totals struct {
	TotalQty   int
	TotalPrice decimal.Decimal
}

// Mutator is the cart surface the presentation layer drives; Engine and
// RemoteEngine both implement it.
type Mutator interface {
	AddToCart(ctx context.Context, line domain.CartLine) error
	UpdateQty(ctx context.Context, key string, qty int) error
	RemoveItem(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Items(ctx context.Context) domain.Cart
	GetTotals(ctx context.Context) Totals
}

// Engine mutates the locally persisted cart. Every mutation persists the
// whole document and publishes exactly one cart-changed event with the new
// total quantity.
type Engine struct {
	state *state.Container
	bus   *events.Bus
	log   *zap.Logger
}

func NewEngine(st *state.Container, bus *events.Bus, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{state: st, bus: bus, log: log}
}

// AddToCart accumulates quantity on an existing line with the same identity
// key, or appends a new line. Quantities below 1 coerce to 1; an existing
// line with a mangled quantity counts as 0 before accumulation.
func (e *Engine) AddToCart(ctx context.Context, line domain.CartLine) error {
	qty := line.Qty
	if qty < 1 {
		qty = 1
	}

	next, err := e.state.UpdateCart(ctx, func(c domain.Cart) domain.Cart {
		idx := FindIndexByKey(c, KeyOf(line))
		if idx >= 0 {
			existing := c[idx].Qty
			if existing < 0 {
				existing = 0
			}
			c[idx].Qty = existing + qty
			return c
		}
		line.Qty = qty
		return append(c, line)
	})
	if err != nil {
		e.log.Error("cart add failed", zap.Error(err))
		return err
	}

	e.bus.Publish(events.CartChanged{Total: next.TotalQty()})
	return nil
}

// UpdateQty sets the quantity of the line matching key, clamping to a
// non-negative value; zero deletes the line. An unknown key is a silent
// no-op and publishes nothing.
func (e *Engine) UpdateQty(ctx context.Context, key string, qty int) error {
	if qty < 0 {
		qty = 0
	}

	changed := false
	next, err := e.state.UpdateCart(ctx, func(c domain.Cart) domain.Cart {
		idx := FindIndexByKey(c, key)
		if idx < 0 {
			return c
		}
		changed = true
		if qty == 0 {
			return append(c[:idx], c[idx+1:]...)
		}
		c[idx].Qty = qty
		return c
	})
	if err != nil {
		e.log.Error("cart quantity update failed", zap.Error(err))
		return err
	}
	if !changed {
		return nil
	}

	e.bus.Publish(events.CartChanged{Total: next.TotalQty()})
	return nil
}

// RemoveItem deletes the line matching key; an unknown key is a silent
// no-op.
func (e *Engine) RemoveItem(ctx context.Context, key string) error {
	changed := false
	next, err := e.state.UpdateCart(ctx, func(c domain.Cart) domain.Cart {
		idx := FindIndexByKey(c, key)
		if idx < 0 {
			return c
		}
		changed = true
		return append(c[:idx], c[idx+1:]...)
	})
	if err != nil {
		e.log.Error("cart remove failed", zap.Error(err))
		return err
	}
	if !changed {
		return nil
	}

	e.bus.Publish(events.CartChanged{Total: next.TotalQty()})
	return nil
}

// Clear empties the cart, used after a successful checkout.
func (e *Engine) Clear(ctx context.Context) error {
	if _, err := e.state.UpdateCart(ctx, func(domain.Cart) domain.Cart {
		return domain.Cart{}
	}); err != nil {
		e.log.Error("cart clear failed", zap.Error(err))
		return err
	}

	e.bus.Publish(events.CartChanged{Total: 0})
	return nil
}

func (e *Engine) Items(ctx context.Context) domain.Cart {
	return e.state.Cart(ctx)
}

// GetTotals folds the current snapshot; it never mutates state.
func (e *Engine) GetTotals(ctx context.Context) Totals {
	c := e.state.Cart(ctx)
	return Totals{TotalQty: c.TotalQty(), TotalPrice: c.TotalPrice()}
}
