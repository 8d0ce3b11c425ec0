package checkout

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/api"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/cart"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/store"
)

func validForm() Form {
	return Form{
		Name:    "Nino",
		Surname: "Beridze",
		Email:   "nino@example.com",
		ZipCode: "4600",
		Address: "Rustaveli Ave 1",
	}
}

func TestValidate_AcceptsWellFormedForm(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_AcceptsGeorgianNames(t *testing.T) {
	form := validForm()
	form.Name = "ნინო"
	form.Surname = "ბერიძე"
	assert.NoError(t, Validate(form))
}

func TestValidate_FieldKeyedErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		field  string
	}{
		{"missing name", func(f *Form) { f.Name = "" }, "name"},
		{"digits in name", func(f *Form) { f.Name = "N1no" }, "name"},
		{"missing surname", func(f *Form) { f.Surname = "  " }, "surname"},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "email"},
		{"short zip", func(f *Form) { f.ZipCode = "12" }, "zip_code"},
		{"alpha zip", func(f *Form) { f.ZipCode = "46a0" }, "zip_code"},
		{"missing address", func(f *Form) { f.Address = "" }, "address"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)

			err := Validate(form)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestValidate_ReportsAllFailingFields(t *testing.T) {
	err := Validate(Form{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5, "validation does not stop at the first failure")
}

type mockCheckoutAPI struct {
	order *domain.Order
	err   error
	calls int
}

func (m *mockCheckoutAPI) Checkout(context.Context, api.CheckoutRequest) (*domain.Order, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func newFixture(t *testing.T, mock *mockCheckoutAPI) (*Service, *cart.Engine, *state.Container, *[]int) {
	t.Helper()
	st := state.NewContainer(store.NewMemoryStore(), nil)
	bus := events.NewBus()
	var totals []int
	bus.Subscribe(func(e events.CartChanged) { totals = append(totals, e.Total) })
	engine := cart.NewEngine(st, bus, nil)
	return NewService(mock, engine, st, nil), engine, st, &totals
}

func seedCart(t *testing.T, engine *cart.Engine) {
	t.Helper()
	require.NoError(t, engine.AddToCart(context.Background(), domain.CartLine{
		ID: 1, Title: "Tee", Price: decimal.NewFromInt(10), Qty: 2,
	}))
}

func TestSubmit_SuccessClearsCartWithSingleNotification(t *testing.T) {
	mock := &mockCheckoutAPI{order: &domain.Order{ID: 81}}
	sut, engine, st, totals := newFixture(t, mock)
	ctx := context.Background()
	require.NoError(t, st.SetSession(ctx, &domain.Session{Token: "tok"}))
	seedCart(t, engine)
	before := len(*totals)

	order, err := sut.Submit(ctx, validForm())
	require.NoError(t, err)

	assert.Equal(t, int64(81), order.ID)
	got := engine.GetTotals(ctx)
	assert.Equal(t, 0, got.TotalQty)
	assert.True(t, got.TotalPrice.IsZero())
	require.Len(t, *totals, before+1, "exactly one cart-changed after checkout")
	assert.Equal(t, 0, (*totals)[len(*totals)-1])
}

func TestSubmit_InvalidFormNeverCallsAPI(t *testing.T) {
	mock := &mockCheckoutAPI{}
	sut, engine, st, _ := newFixture(t, mock)
	ctx := context.Background()
	require.NoError(t, st.SetSession(ctx, &domain.Session{Token: "tok"}))
	seedCart(t, engine)

	form := validForm()
	form.ZipCode = "x"
	_, err := sut.Submit(ctx, form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, mock.calls)
	assert.Equal(t, 2, engine.GetTotals(ctx).TotalQty, "cart untouched")
}

func TestSubmit_EmptyCart(t *testing.T) {
	sut, _, st, _ := newFixture(t, &mockCheckoutAPI{})
	ctx := context.Background()
	require.NoError(t, st.SetSession(ctx, &domain.Session{Token: "tok"}))

	_, err := sut.Submit(ctx, validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_RequiresSession(t *testing.T) {
	sut, engine, _, _ := newFixture(t, &mockCheckoutAPI{})
	seedCart(t, engine)

	_, err := sut.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSubmit_ServerValidationSurfacesPerField(t *testing.T) {
	mock := &mockCheckoutAPI{err: &api.Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "The given data was invalid.",
		Fields:  map[string][]string{"zip_code": {"The zip code is not deliverable."}},
	}}
	sut, engine, st, _ := newFixture(t, mock)
	ctx := context.Background()
	require.NoError(t, st.SetSession(ctx, &domain.Session{Token: "tok"}))
	seedCart(t, engine)

	_, err := sut.Submit(ctx, validForm())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "zip_code")
	assert.Equal(t, 2, engine.GetTotals(ctx).TotalQty, "cart kept on failure")
}

func TestSubmit_TransportErrorLeavesCartIntact(t *testing.T) {
	mock := &mockCheckoutAPI{err: &api.Error{Status: http.StatusBadGateway, Message: "upstream down"}}
	sut, engine, st, _ := newFixture(t, mock)
	ctx := context.Background()
	require.NoError(t, st.SetSession(ctx, &domain.Session{Token: "tok"}))
	seedCart(t, engine)

	_, err := sut.Submit(ctx, validForm())

	require.EqualError(t, err, "upstream down")
	assert.Equal(t, 2, engine.GetTotals(ctx).TotalQty)
}
