package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/store"
)

type eventRecorder struct {
	totals []int
}

func (r *eventRecorder) record(e events.CartChanged) {
	r.totals = append(r.totals, e.Total)
}

func newTestEngine(t *testing.T) (*Engine, *eventRecorder) {
	t.Helper()
	st := state.NewContainer(store.NewMemoryStore(), nil)
	bus := events.NewBus()
	rec := &eventRecorder{}
	bus.Subscribe(rec.record)
	return NewEngine(st, bus, nil), rec
}

func line(id int64, opts ...func(*domain.CartLine)) domain.CartLine {
	l := domain.CartLine{ID: id, Title: "Tee", Price: decimal.NewFromInt(10), Qty: 1}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func withQty(q int) func(*domain.CartLine)     { return func(l *domain.CartLine) { l.Qty = q } }
func withSize(s string) func(*domain.CartLine) { return func(l *domain.CartLine) { l.Size = s } }
func withColor(c string) func(*domain.CartLine) {
	return func(l *domain.CartLine) { l.ColorName = c }
}

func TestAddToCart_EmptyCartTotals(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, sut.AddToCart(ctx, line(1, withQty(2))))

	totals := sut.GetTotals(ctx)
	assert.Equal(t, 2, totals.TotalQty)
	assert.True(t, totals.TotalPrice.Equal(decimal.NewFromInt(20)),
		"expected 20, got %s", totals.TotalPrice)
}

func TestAddToCart_SameKeyAccumulates(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, sut.AddToCart(ctx, line(1, withSize("M"))))
	require.NoError(t, sut.AddToCart(ctx, line(1, withSize("M"))))

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
}

func TestAddToCart_DistinctVariantsGetOwnLines(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, sut.AddToCart(ctx, line(1, withSize("M"), withColor("Red"))))
	require.NoError(t, sut.AddToCart(ctx, line(1, withSize("L"), withColor("Red"))))
	require.NoError(t, sut.AddToCart(ctx, line(1, withSize("M"), withColor("Blue"))))

	assert.Len(t, sut.Items(ctx), 3)
}

func TestAddToCart_InvalidQtyCoercesToOne(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, sut.AddToCart(ctx, line(1, withQty(0))))
	require.NoError(t, sut.AddToCart(ctx, line(1, withQty(-5))))

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
}

func TestAddToCart_QtySumsOverRepeatedAdds(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()

	for _, q := range []int{2, 3, 0, 4} { // 0 coerces to 1
		require.NoError(t, sut.AddToCart(ctx, line(7, withQty(q))))
	}

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].Qty)
}

func TestUpdateQty_SetsExactQuantity(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1, withSize("M"))))

	key := KeyOf(line(1, withSize("M")))
	require.NoError(t, sut.UpdateQty(ctx, key, 5))

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Qty)
}

func TestUpdateQty_ZeroDeletesLine(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1)))

	require.NoError(t, sut.UpdateQty(ctx, KeyOf(line(1)), 0))

	assert.Empty(t, sut.Items(ctx))
}

func TestUpdateQty_NegativeClampsToDelete(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1)))

	require.NoError(t, sut.UpdateQty(ctx, KeyOf(line(1)), -3))

	assert.Empty(t, sut.Items(ctx))
}

func TestUpdateQty_UnknownKeyIsSilentNoop(t *testing.T) {
	sut, rec := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1)))
	published := len(rec.totals)

	require.NoError(t, sut.UpdateQty(ctx, "999||", 4))

	assert.Len(t, sut.Items(ctx), 1)
	assert.Len(t, rec.totals, published, "no event for a key miss")
}

func TestRemoveItem_DeletesMatchingLine(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1, withColor("Red"))))
	require.NoError(t, sut.AddToCart(ctx, line(2)))

	require.NoError(t, sut.RemoveItem(ctx, KeyOf(line(1, withColor("Red")))))

	items := sut.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestRemoveItem_UnknownKeyLeavesCartUnchanged(t *testing.T) {
	sut, rec := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1)))
	published := len(rec.totals)

	require.NoError(t, sut.RemoveItem(ctx, "42|Red|M"))

	assert.Len(t, sut.Items(ctx), 1)
	assert.Len(t, rec.totals, published)
}

func TestGetTotals_MatchesDirectFold(t *testing.T) {
	sut, _ := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1, withQty(2))))
	require.NoError(t, sut.AddToCart(ctx, domain.CartLine{
		ID: 2, Title: "Hoodie", Price: decimal.RequireFromString("19.99"), Qty: 3,
	}))

	totals := sut.GetTotals(ctx)

	items := sut.Items(ctx)
	assert.Equal(t, items.TotalQty(), totals.TotalQty)
	assert.True(t, items.TotalPrice().Equal(totals.TotalPrice))
	assert.Equal(t, 5, totals.TotalQty)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("79.97")))
}

func TestClear_EmptiesCartAndPublishesZeroOnce(t *testing.T) {
	sut, rec := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, sut.AddToCart(ctx, line(1, withQty(4))))
	published := len(rec.totals)

	require.NoError(t, sut.Clear(ctx))

	totals := sut.GetTotals(ctx)
	assert.Equal(t, 0, totals.TotalQty)
	assert.True(t, totals.TotalPrice.IsZero())
	require.Len(t, rec.totals, published+1, "clear publishes exactly one event")
	assert.Equal(t, 0, rec.totals[len(rec.totals)-1])
}

func TestMutations_PublishPostMutationTotal(t *testing.T) {
	sut, rec := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, sut.AddToCart(ctx, line(1, withQty(2))))
	require.NoError(t, sut.AddToCart(ctx, line(2, withQty(3))))
	require.NoError(t, sut.UpdateQty(ctx, KeyOf(line(2)), 1))
	require.NoError(t, sut.RemoveItem(ctx, KeyOf(line(1))))

	assert.Equal(t, []int{2, 5, 3, 1}, rec.totals)
}
