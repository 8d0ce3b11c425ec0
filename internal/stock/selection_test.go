package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
)

type mutableCart struct {
	items domain.Cart
}

func (c *mutableCart) Items(context.Context) domain.Cart { return c.items }

func detailProduct() domain.Product {
	return domain.Product{
		ID:       1,
		Name:     "Tee",
		Quantity: 3,
		Colors:   []string{"Red", "Blue"},
		Sizes:    []string{"S", "M"},
		Images: []string{
			"https://cdn.example.com/tee_red.jpg",
			"https://cdn.example.com/tee_blue.jpg",
		},
	}
}

func TestSelection_InitialStateFirstColorSizeImage(t *testing.T) {
	sut := NewSelection(context.Background(), detailProduct(), NewResolver(&mutableCart{}), nil)

	snap := sut.Snapshot()
	assert.Equal(t, "Red", snap.ActiveColor)
	assert.Equal(t, "S", snap.ActiveSize)
	assert.Equal(t, 0, snap.ActiveImageIndex)
	assert.Equal(t, 1, snap.Qty)
	assert.True(t, snap.CanAdd)
}

func TestSelection_NoVariantsDeclared(t *testing.T) {
	p := domain.Product{ID: 1, Images: []string{"https://cdn.example.com/a.jpg"}}
	sut := NewSelection(context.Background(), p, NewResolver(&mutableCart{}), nil)

	snap := sut.Snapshot()
	assert.Empty(t, snap.ActiveColor)
	assert.Empty(t, snap.ActiveSize)
	assert.True(t, snap.Remaining.Unlimited)
	assert.True(t, snap.CanAdd)
}

func TestSelectColor_MovesImageOnlyOnFilenameMatch(t *testing.T) {
	ctx := context.Background()
	sut := NewSelection(ctx, detailProduct(), NewResolver(&mutableCart{}), nil)

	sut.SelectColor(ctx, "Blue")
	assert.Equal(t, 1, sut.Snapshot().ActiveImageIndex)

	sut.SelectColor(ctx, "Green") // no matching filename
	snap := sut.Snapshot()
	assert.Equal(t, "Green", snap.ActiveColor)
	assert.Equal(t, 1, snap.ActiveImageIndex, "image left unchanged")
}

func TestSelectImage_BackSelectsDetectedColor(t *testing.T) {
	ctx := context.Background()
	sut := NewSelection(ctx, detailProduct(), NewResolver(&mutableCart{}), nil)

	sut.SelectImage(ctx, 1)

	snap := sut.Snapshot()
	assert.Equal(t, 1, snap.ActiveImageIndex)
	assert.Equal(t, "Blue", snap.ActiveColor)
}

func TestSelectImage_OutOfRangeIgnored(t *testing.T) {
	ctx := context.Background()
	sut := NewSelection(ctx, detailProduct(), NewResolver(&mutableCart{}), nil)

	sut.SelectImage(ctx, 5)
	sut.SelectImage(ctx, -1)

	assert.Equal(t, 0, sut.Snapshot().ActiveImageIndex)
}

func TestSetQty_ClampsToRemaining(t *testing.T) {
	ctx := context.Background()
	cart := &mutableCart{items: domain.Cart{{ID: 1, ColorName: "Red", Size: "S", Qty: 2}}}
	sut := NewSelection(ctx, detailProduct(), NewResolver(cart), nil)

	sut.SetQty(ctx, 10)

	snap := sut.Snapshot()
	assert.Equal(t, 1, snap.Remaining.N)
	assert.Equal(t, 1, snap.Qty)
}

func TestCanAdd_FalseWithoutSizeSelection(t *testing.T) {
	ctx := context.Background()
	sut := NewSelection(ctx, detailProduct(), NewResolver(&mutableCart{}), nil)

	sut.SelectSize(ctx, "")

	assert.False(t, sut.Snapshot().CanAdd)
}

func TestCanAdd_FalseWhenVariantDepleted(t *testing.T) {
	ctx := context.Background()
	cart := &mutableCart{items: domain.Cart{{ID: 1, ColorName: "Red", Size: "S", Qty: 3}}}
	sut := NewSelection(ctx, detailProduct(), NewResolver(cart), nil)

	snap := sut.Snapshot()
	assert.True(t, snap.Remaining.Depleted())
	assert.False(t, snap.CanAdd)
}

func TestSelection_RecomputesOnCartChanged(t *testing.T) {
	ctx := context.Background()
	cart := &mutableCart{}
	bus := events.NewBus()
	sut := NewSelection(ctx, detailProduct(), NewResolver(cart), bus)
	defer sut.Close()

	sut.SetQty(ctx, 3)
	require.Equal(t, 3, sut.Snapshot().Qty)

	cart.items = domain.Cart{{ID: 1, ColorName: "Red", Size: "S", Qty: 2}}
	bus.Publish(events.CartChanged{Total: 2})

	snap := sut.Snapshot()
	assert.Equal(t, 1, snap.Remaining.N)
	assert.Equal(t, 1, snap.Qty, "staged qty clamped after cart change")
}

func TestSelectionLine_BuildsCartPayload(t *testing.T) {
	ctx := context.Background()
	sut := NewSelection(ctx, detailProduct(), NewResolver(&mutableCart{}), nil)
	sut.SelectColor(ctx, "Blue")
	sut.SelectSize(ctx, "M")
	sut.SetQty(ctx, 2)

	line := sut.Line()
	assert.Equal(t, int64(1), line.ID)
	assert.Equal(t, "Blue", line.ColorName)
	assert.Equal(t, "M", line.Size)
	assert.Equal(t, 2, line.Qty)
	assert.Equal(t, "https://cdn.example.com/tee_blue.jpg", line.Image)
}

func TestSelectionLine_SizelessProductGetsOneSize(t *testing.T) {
	p := domain.Product{ID: 1, Images: []string{"https://cdn.example.com/a.jpg"}}
	sut := NewSelection(context.Background(), p, NewResolver(&mutableCart{}), nil)

	assert.Equal(t, OneSize, sut.Line().Size)
}
