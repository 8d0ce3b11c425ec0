// Package state owns the two persisted documents of the storefront: the
// session and the cart. Both live in a key-value store and are replaced as
// whole documents; corrupted or missing documents degrade to logged-out /
// empty-cart rather than erroring.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/store"
)

const (
	sessionKey = "session"
	cartKey    = "cart"
)

// Container is passed explicitly to every component that needs session or
// cart access; there is no package-level current state.
type Container struct {
	mu    sync.Mutex
	store store.Store
	log   *zap.Logger
}

func NewContainer(s store.Store, log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{store: s, log: log}
}

// Session returns the stored session, or nil when logged out or when the
// stored document cannot be parsed.
func (c *Container) Session(ctx context.Context) *domain.Session {
	data, err := c.store.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("session read failed", zap.Error(err))
		}
		return nil
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn("stored session is corrupt, treating as logged out", zap.Error(err))
		return nil
	}
	if s.Token == "" {
		return nil
	}
	return &s
}

// Token returns the bearer token of the current session, or "".
func (c *Container) Token(ctx context.Context) string {
	if s := c.Session(ctx); s != nil {
		return s.Token
	}
	return ""
}

func (c *Container) SetSession(ctx context.Context, s *domain.Session) error {
	if s == nil {
		return c.ClearSession(ctx)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, sessionKey, data)
}

func (c *Container) ClearSession(ctx context.Context) error {
	return c.store.Delete(ctx, sessionKey)
}

// Cart returns the stored cart; missing or unparseable documents come back
// as an empty cart.
func (c *Container) Cart(ctx context.Context) domain.Cart {
	data, err := c.store.Get(ctx, cartKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Warn("cart read failed", zap.Error(err))
		}
		return domain.Cart{}
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		c.log.Warn("stored cart is corrupt, treating as empty", zap.Error(err))
		return domain.Cart{}
	}
	return cart
}

// SetCart replaces the whole cart document.
func (c *Container) SetCart(ctx context.Context, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, cartKey, data)
}

// UpdateCart applies fn to the current cart and persists the result under
// the container lock, so concurrent mutators in one process cannot
// interleave their read-modify-write cycles.
func (c *Container) UpdateCart(ctx context.Context, fn func(domain.Cart) domain.Cart) (domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := fn(c.Cart(ctx).Clone())
	if err := c.SetCart(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}
