package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giorgi-beruashvili/redseam-clothing/internal/api"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/cart"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/catalog"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/checkout"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/config"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/events"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/state"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/stock"
	"github.com/giorgi-beruashvili/redseam-clothing/internal/store"
	"github.com/giorgi-beruashvili/redseam-clothing/pkg/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer log.Sync()

	app, err := newApp(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}

	if err := newRootCmd(app).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	state    *state.Container
	bus      *events.Bus
	api      *api.Client
	local    *cart.Engine
	remote   *cart.RemoteEngine
	catalog  *catalog.Service
	resolver *stock.Resolver
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	var st store.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		st = store.NewRedisStore(client)
	} else {
		fs, err := store.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		st = fs
	}

	a := &app{cfg: cfg, log: log}
	a.state = state.NewContainer(st, log)
	a.bus = events.NewBus()
	a.api = api.NewClient(cfg.APIBaseURL, a.state,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(log),
		api.WithUnauthorizedHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again: storefront login")
		}),
	)
	a.local = cart.NewEngine(a.state, a.bus, log)
	a.remote = cart.NewRemoteEngine(a.api, a.state, a.bus, log)
	a.catalog = catalog.NewService(a.api, log)
	a.resolver = stock.NewResolver(a.local)
	return a, nil
}

// engine picks the server-backed cart when a session exists and the local
// cart otherwise.
func (a *app) engine(ctx context.Context) cart.Mutator {
	if a.state.Session(ctx) != nil {
		return a.remote
	}
	return a.local
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "RedSeam storefront client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newProductsCmd(a),
		newProductCmd(a),
		newCartCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newCheckoutCmd(a),
	)
	return root
}

func newProductsCmd(a *app) *cobra.Command {
	var (
		page     int
		sort     string
		min, max int
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product listing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var from, to *int
			if cmd.Flags().Changed("min") {
				from = &min
			}
			if cmd.Flags().Changed("max") {
				to = &max
			}
			res, err := a.catalog.ListProducts(cmd.Context(), page, sort, from, to)
			if err != nil {
				return err
			}
			for _, p := range res.Data {
				fmt.Printf("%6d  %-40s  $%s\n", p.ID, p.Name, p.Price.StringFixed(2))
			}
			fmt.Printf("page %d/%d, showing %d-%d of %d\n",
				res.Meta.CurrentPage, res.LastPage(), res.Meta.From, res.Meta.To, res.Meta.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&sort, "sort", catalog.SortNewest, "newest|oldest|price_asc|price_desc")
	cmd.Flags().IntVar(&min, "min", 0, "minimum price filter")
	cmd.Flags().IntVar(&max, "max", 0, "maximum price filter")
	return cmd
}

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product with variants and stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			p, err := a.catalog.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("%s — %s\n$%s\n%s\n", p.Name, p.BrandName, p.Price.StringFixed(2), p.Description)
			if p.HasColors() {
				fmt.Println("colors:", p.Colors)
			}
			if p.HasSizes() {
				fmt.Println("sizes:", p.Sizes)
			}

			sel := stock.NewSelection(cmd.Context(), *p, a.resolver, nil)
			snap := sel.Snapshot()
			if snap.Remaining.Unlimited {
				fmt.Println("stock: unlimited")
			} else {
				fmt.Printf("stock remaining for %s/%s: %d\n", snap.ActiveColor, snap.ActiveSize, snap.Remaining.N)
			}
			return nil
		},
	}
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and mutate the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCart(cmd.Context(), a)
		},
	}
	cmd.AddCommand(newCartAddCmd(a), newCartSetCmd(a), newCartRemoveCmd(a), newCartClearCmd(a))
	return cmd
}

func printCart(ctx context.Context, a *app) error {
	eng := a.engine(ctx)
	items := eng.Items(ctx)
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, l := range items {
		variant := ""
		if l.ColorKey() != "" {
			variant += " color=" + l.ColorKey()
		}
		if l.Size != "" {
			variant += " size=" + l.Size
		}
		fmt.Printf("%-24s  x%d  $%s%s\n\tkey: %s\n",
			l.Title, l.Qty, l.LineTotal().StringFixed(2), variant, cart.KeyOf(l))
	}
	totals := eng.GetTotals(ctx)
	fmt.Printf("total: %d items, $%s\n", totals.TotalQty, totals.TotalPrice.StringFixed(2))
	return nil
}

func newCartAddCmd(a *app) *cobra.Command {
	var (
		qty   int
		color string
		size  string
	)
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product variant to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			p, err := a.catalog.GetProduct(ctx, id)
			if err != nil {
				return err
			}

			sel := stock.NewSelection(ctx, *p, a.resolver, nil)
			defer sel.Close()
			if color != "" {
				sel.SelectColor(ctx, color)
			}
			if size != "" {
				sel.SelectSize(ctx, size)
			}
			sel.SetQty(ctx, qty)

			snap := sel.Snapshot()
			if !snap.CanAdd {
				if p.HasSizes() && snap.ActiveSize == "" {
					return errors.New("pick a size first (--size)")
				}
				return errors.New("no stock remaining for this variant")
			}
			if err := a.engine(ctx).AddToCart(ctx, sel.Line()); err != nil {
				return err
			}
			return printCart(ctx, a)
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	cmd.Flags().StringVar(&color, "color", "", "color variant")
	cmd.Flags().StringVar(&size, "size", "", "size variant")
	return cmd
}

func newCartSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <qty>",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			if err := a.engine(cmd.Context()).UpdateQty(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			return printCart(cmd.Context(), a)
		},
	}
}

func newCartRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.engine(cmd.Context()).RemoveItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printCart(cmd.Context(), a)
		},
	}
}

func newCartClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.engine(cmd.Context()).Clear(cmd.Context())
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and pull the server cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := a.api.Login(ctx, api.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", session.User.Username)
			if err := a.remote.Sync(ctx); err != nil {
				a.log.Warn("initial cart sync failed", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg api.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.api.Register(cmd.Context(), reg)
			if err != nil {
				if fields := api.FieldErrors(err); len(fields) > 0 {
					printFieldErrors(fields)
				}
				return err
			}
			fmt.Printf("registered as %s\n", session.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Username, "username", "", "username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.PasswordConfirmation, "confirm", "", "password confirmation")
	cmd.Flags().StringVar(&reg.AvatarPath, "avatar", "", "path to an avatar image")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.api.Logout(cmd.Context())
		},
	}
}

func newCheckoutCmd(a *app) *cobra.Command {
	var form checkout.Form
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the order for the current cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc := checkout.NewService(a.api, a.engine(ctx), a.state, a.log)
			order, err := svc.Submit(ctx, form)
			if err != nil {
				var verr *checkout.ValidationError
				if errors.As(err, &verr) {
					printFieldErrors(verr.Fields)
				}
				return err
			}
			fmt.Printf("order placed successfully (id %d)\n", order.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "first name")
	cmd.Flags().StringVar(&form.Surname, "surname", "", "last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&form.ZipCode, "zip", "", "zip code")
	cmd.Flags().StringVar(&form.Address, "address", "", "shipping address")
	return cmd
}

func printFieldErrors(fields map[string][]string) {
	for field, msgs := range fields {
		for _, msg := range msgs {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
	}
}
