package cart

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/api"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
)

// RemoteAPI is the slice of the gateway client the remote engine drives.
type RemoteAPI interface {
	FetchCart(ctx context.Context) (any, error)
	UpsertCartProduct(ctx context.Context, productID int64, req api.CartItemRequest) error
	UpdateCartProduct(ctx context.Context, productID int64, req api.CartItemRequest) error
	RemoveCartProduct(ctx context.Context, productID int64, color, size string) error
}

// RemoteEngine is the server-backed cart. Mutations never touch local state
// optimistically: each one issues its REST call and then replaces the local
// cart wholesale from a fresh server snapshot, so the client cannot drift
// from server truth. Overlapping mutations are not serialized; the last
// response to land wins.
type RemoteEngine struct {
	api   RemoteAPI
	state *state.Container
	bus   *events.Bus
	log   *zap.Logger
}

func NewRemoteEngine(a RemoteAPI, st *state.Container, bus *events.Bus, log *zap.Logger) *RemoteEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &RemoteEngine{api: a, state: st, bus: bus, log: log}
}

func (e *RemoteEngine) AddToCart(ctx context.Context, line domain.CartLine) error {
	qty := line.Qty
	if qty < 1 {
		qty = 1
	}
	req := api.CartItemRequest{Quantity: qty, Color: line.ColorKey(), Size: line.Size}
	if err := e.api.UpsertCartProduct(ctx, line.ID, req); err != nil {
		e.log.Error("remote cart add failed", zap.Int64("product_id", line.ID), zap.Error(err))
		return err
	}
	return e.sync(ctx)
}

func (e *RemoteEngine) UpdateQty(ctx context.Context, key string, qty int) error {
	if qty < 0 {
		qty = 0
	}
	id, color, size, ok := e.resolve(ctx, key)
	if !ok {
		return nil
	}
	var err error
	if qty == 0 {
		err = e.api.RemoveCartProduct(ctx, id, color, size)
	} else {
		err = e.api.UpdateCartProduct(ctx, id, api.CartItemRequest{Quantity: qty, Color: color, Size: size})
	}
	if err != nil {
		e.log.Error("remote cart quantity update failed", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	return e.sync(ctx)
}

func (e *RemoteEngine) RemoveItem(ctx context.Context, key string) error {
	id, color, size, ok := e.resolve(ctx, key)
	if !ok {
		return nil
	}
	if err := e.api.RemoveCartProduct(ctx, id, color, size); err != nil {
		e.log.Error("remote cart remove failed", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	return e.sync(ctx)
}

// Clear drops the local snapshot; it is used after checkout, when the server
// has already emptied its side.
func (e *RemoteEngine) Clear(ctx context.Context) error {
	if err := e.state.SetCart(ctx, domain.Cart{}); err != nil {
		return err
	}
	e.bus.Publish(events.CartChanged{Total: 0})
	return nil
}

func (e *RemoteEngine) Items(ctx context.Context) domain.Cart {
	return e.state.Cart(ctx)
}

func (e *RemoteEngine) GetTotals(ctx context.Context) Totals {
	c := e.state.Cart(ctx)
	return Totals{TotalQty: c.TotalQty(), TotalPrice: c.TotalPrice()}
}

// Sync fetches the authoritative cart, overwrites local state wholesale and
// publishes the new total. It is exported so the shell can pull the server
// cart on login.
func (e *RemoteEngine) Sync(ctx context.Context) error {
	return e.sync(ctx)
}

func (e *RemoteEngine) sync(ctx context.Context) error {
	payload, err := e.api.FetchCart(ctx)
	if err != nil {
		e.log.Error("cart fetch failed, keeping last known snapshot", zap.Error(err))
		return err
	}
	next := NormalizeCart(payload)
	if err := e.state.SetCart(ctx, next); err != nil {
		return err
	}
	e.bus.Publish(events.CartChanged{Total: next.TotalQty()})
	return nil
}

// resolve maps an identity key back to the call parameters, using the local
// snapshot only to confirm the key exists; unknown keys are a silent no-op
// like in the local engine.
func (e *RemoteEngine) resolve(ctx context.Context, key string) (id int64, color, size string, ok bool) {
	if FindIndexByKey(e.state.Cart(ctx), key) < 0 {
		return 0, "", "", false
	}
	parts := strings.Split(key, keyDelimiter)
	if len(parts) != 3 {
		return 0, "", "", false
	}
	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", "", false
	}
	return n, parts[1], parts[2], true
}
