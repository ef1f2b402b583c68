// cmd/shopctl/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/localshop-backend/internal/cart"
	"github.com/javajoker/localshop-backend/internal/client"
)

const sessionKey = "session"

const usage = `usage: shopctl [flags] <command> [args]

commands:
  login <email> <password>
  products [-category c] [-search s] [-page n]
  cart show
  cart add <productId> [quantity]
  cart set <productId> <quantity>
  cart remove <productId>
  cart clear
  checkout
  orders

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if err != errUsage {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

type app struct {
	out     io.Writer
	storage cart.Storage
	api     *client.Client
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	flags.SetOutput(out)
	server := flags.String("server", envOr("SHOP_SERVER", "http://localhost:8080"), "API base URL")
	dataDir := flags.String("data", envOr("SHOP_DATA_DIR", defaultDataDir()), "directory for the local cart and session")
	lang := flags.String("lang", os.Getenv("SHOP_LANG"), "preferred language for server messages")
	verbose := flags.Bool("v", false, "log API requests")
	flags.Usage = func() {
		fmt.Fprint(out, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errUsage
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	storage, err := cart.NewFileStorage(*dataDir)
	if err != nil {
		return err
	}

	a := &app{out: out, storage: storage}
	opts := []client.Option{client.WithLanguage(*lang)}
	if token, err := a.loadToken(); err != nil {
		return err
	} else if token != "" {
		opts = append(opts, client.WithToken(token))
	}
	a.api = client.New(*server, opts...)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rest := flags.Args()[1:]
	switch flags.Arg(0) {
	case "login":
		return a.login(ctx, rest)
	case "products":
		return a.products(ctx, rest)
	case "cart":
		return a.cart(ctx, rest)
	case "checkout":
		return a.checkout(ctx)
	case "orders":
		return a.orders(ctx)
	default:
		flags.Usage()
		return errUsage
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("login takes <email> <password>: %w", errUsage)
	}

	session, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	data, err := json.Marshal(map[string]string{"accessToken": session.AccessToken})
	if err != nil {
		return err
	}
	if err := a.storage.Set(sessionKey, data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", session.User.Email)
	return nil
}

func (a *app) loadToken() (string, error) {
	data, found, err := a.storage.Get(sessionKey)
	if err != nil || !found {
		return "", err
	}

	var saved struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		logrus.WithError(err).Warn("Ignoring unreadable session")
		return "", nil
	}
	return saved.AccessToken, nil
}

func (a *app) products(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("products", flag.ContinueOnError)
	flags.SetOutput(a.out)
	category := flags.String("category", "", "filter by category")
	search := flags.String("search", "", "search name and description")
	page := flags.Int("page", 1, "page number")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	result, err := a.api.ListProducts(ctx, client.ProductQuery{
		Category: *category,
		Search:   *search,
		Page:     *page,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range result.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
	}
	fmt.Fprintf(w, "page %d of %d (%d products)\n",
		result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.Total)
	return w.Flush()
}

func (a *app) cart(ctx context.Context, args []string) error {
	store, err := cart.NewStore(a.storage)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return a.showCart(store)
	}

	switch args[0] {
	case "show":
		return a.showCart(store)

	case "add":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("cart add takes <productId> [quantity]: %w", errUsage)
		}
		quantity := 1
		if len(args) == 3 {
			if quantity, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
		}
		product, err := a.api.GetProduct(ctx, args[1])
		if err != nil {
			return err
		}
		item := cart.Item{
			ProductID: product.ID.String(),
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		}
		if len(product.Images) > 0 {
			item.Image = &product.Images[0]
		}
		if err := store.AddItem(item); err != nil {
			return err
		}

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("cart set takes <productId> <quantity>: %w", errUsage)
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		if err := store.UpdateQuantity(args[1], quantity); err != nil {
			return err
		}

	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("cart remove takes <productId>: %w", errUsage)
		}
		if err := store.RemoveItem(args[1]); err != nil {
			return err
		}

	case "clear":
		if err := store.Clear(); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown cart command %q: %w", args[0], errUsage)
	}

	return a.showCart(store)
}

func (a *app) showCart(store *cart.Store) error {
	items := store.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", item.ProductID, item.Name, item.Price.StringFixed(2), item.Quantity)
	}
	totals := cart.Total(items)
	fmt.Fprintf(w, "\t\ttotal %s\t%d\n", totals.Amount.StringFixed(2), totals.Quantity)
	return w.Flush()
}

func (a *app) checkout(ctx context.Context) error {
	store, err := cart.NewStore(a.storage)
	if err != nil {
		return err
	}

	lines := store.Lines()
	if len(lines) == 0 {
		return errors.New("cart is empty")
	}

	orderID, err := a.api.PlaceOrder(ctx, lines)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		logrus.WithError(err).Warn("Order placed but the local cart could not be cleared")
	}

	fmt.Fprintf(a.out, "Order %s placed\n", orderID)
	return nil
}

func (a *app) orders(ctx context.Context) error {
	orders, err := a.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			o.ID, o.Status, len(o.Items), o.Total.StringFixed(2), o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "localshop")
	}
	return ".localshop"
}
