package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
)

// CartItemRequest is the body of cart product upserts and updates.
type CartItemRequest struct {
	Quantity int    `json:"quantity"`
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
}

type cartVariantRequest struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// CheckoutRequest is the shipping and contact payload for checkout.
type CheckoutRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	ZipCode string `json:"zip_code"`
	Address string `json:"address"`
}

// FetchCart returns the authoritative cart snapshot decoded into a generic
// value; the caller normalizes it because the item list shape is not
// strictly pinned.
func (c *Client) FetchCart(ctx context.Context) (any, error) {
	var payload any
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) UpsertCartProduct(ctx context.Context, productID int64, req CartItemRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/products/%d", productID), req, nil)
}

func (c *Client) UpdateCartProduct(ctx context.Context, productID int64, req CartItemRequest) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/cart/products/%d", productID), req, nil)
}

func (c *Client) RemoveCartProduct(ctx context.Context, productID int64, color, size string) error {
	req := cartVariantRequest{Color: color, Size: size}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/products/%d", productID), req, nil)
}

// Checkout submits the order. The confirmation has shipped both bare and
// under a data wrapper.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	var body json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/cart/checkout", req, &body); err != nil {
		return nil, err
	}

	order := &domain.Order{}
	if len(body) == 0 {
		return order, nil
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	raw := body
	if json.Unmarshal(body, &wrapped) == nil && len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
		raw = wrapped.Data
	}
	// A confirmation we cannot decode is still a successful checkout.
	_ = json.Unmarshal(raw, order)
	return order, nil
}
