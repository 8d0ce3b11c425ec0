// Package checkout validates the shipping form and submits the order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/api"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/domain"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
)

var (
	ErrNotAuthenticated = errors.New("checkout requires an authenticated session")
	ErrEmptyCart        = errors.New("cart is empty")
)

// Form carries the shipping and contact fields. Names allow Latin and
// Georgian letters plus apostrophe, space and hyphen; zip is 4-10 digits.
type Form struct {
	Name    string `validate:"required,humanname"`
	Surname string `validate:"required,humanname"`
	Email   string `validate:"required,email"`
	ZipCode string `validate:"required,zipdigits"`
	Address string `validate:"required"`
}

// ValidationError carries field-keyed messages, keyed the way the server
// keys its own validation errors so both sources render the same way.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout form (%d fields)", len(e.Fields))
}

var (
	humanNameRe = regexp.MustCompile(`^[A-Za-z\x{10A0}-\x{10FF}' -]+$`)
	zipRe       = regexp.MustCompile(`^\d{4,10}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on malformed tags, which are fixed strings
	// here.
	_ = v.RegisterValidation("humanname", func(fl validator.FieldLevel) bool {
		return humanNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("zipdigits", func(fl validator.FieldLevel) bool {
		return zipRe.MatchString(fl.Field().String())
	})
	return v
}

var fieldKeys = map[string]string{
	"Name":    "name",
	"Surname": "surname",
	"Email":   "email",
	"ZipCode": "zip_code",
	"Address": "address",
}

var fieldMessages = map[string]string{
	"name":     "Please enter a valid first name (letters only).",
	"surname":  "Please enter a valid last name (letters only).",
	"email":    "Invalid email format",
	"zip_code": "ZIP must be digits (e.g., 4600)",
	"address":  "Required",
}

// Validate returns nil or a *ValidationError with one message per failing
// field; validation never aborts on the first failure.
func Validate(form Form) error {
	err := newValidator().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		key, ok := fieldKeys[fe.StructField()]
		if !ok {
			key = fe.StructField()
		}
		msg, ok := fieldMessages[key]
		if !ok {
			msg = "Invalid value"
		}
		fields[key] = append(fields[key], msg)
	}
	return &ValidationError{Fields: fields}
}

// CartClearer is the cart surface checkout needs after a successful order.
type CartClearer interface {
	Items(ctx context.Context) domain.Cart
	Clear(ctx context.Context) error
}

type CheckoutAPI interface {
	Checkout(ctx context.Context, req api.CheckoutRequest) (*domain.Order, error)
}

type Service struct {
	api   CheckoutAPI
	cart  CartClearer
	state *state.Container
	log   *zap.Logger
}

func NewService(a CheckoutAPI, cart CartClearer, st *state.Container, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: a, cart: cart, state: st, log: log}
}

// Submit validates, posts the order and clears the cart on success. Server
// 400/422 field errors come back as *ValidationError so the form layer
// surfaces both local and remote failures identically.
func (s *Service) Submit(ctx context.Context, form Form) (*domain.Order, error) {
	if err := Validate(form); err != nil {
		return nil, err
	}
	if len(s.cart.Items(ctx)) == 0 {
		return nil, ErrEmptyCart
	}
	if s.state.Session(ctx) == nil {
		return nil, ErrNotAuthenticated
	}

	order, err := s.api.Checkout(ctx, api.CheckoutRequest{
		Name:    form.Name,
		Surname: form.Surname,
		Email:   form.Email,
		ZipCode: form.ZipCode,
		Address: form.Address,
	})
	if err != nil {
		if api.IsValidation(err) {
			return nil, &ValidationError{Fields: api.FieldErrors(err)}
		}
		s.log.Error("checkout failed", zap.Error(err))
		return nil, err
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.log.Warn("cart clear after checkout failed", zap.Error(err))
	}
	return order, nil
}
