// Command portalctl is a command-line client for the PVC order portal. A
// session persists between invocations in a token file, so a login followed
// by order commands works the way a browser session would.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mkasonde/pvc-portal/internal/api"
	"github.com/mkasonde/pvc-portal/internal/config"
	"github.com/mkasonde/pvc-portal/internal/modules/auth"
	"github.com/mkasonde/pvc-portal/internal/modules/order"
	"github.com/mkasonde/pvc-portal/internal/modules/product"
	"github.com/mkasonde/pvc-portal/internal/ratelimit"
	"github.com/mkasonde/pvc-portal/internal/token"
)

const usage = `Usage: portalctl <command> [flags]

Commands:
  login         -email -password     Authenticate and store the session
  signup        -name -email -password
  guest-login                        Start a local guest session
  logout                             Clear the stored session
  whoami                             Show the current user
  refresh                            Exchange the refresh token
  products                           List the product catalog
  product       -id                  Show one product
  orders        [-page -size -vendor -status -from -to]
  order         -id                  Show one order
  order-create  -items -address -date [-notes -vendor-email]
  order-status  -id -status          Update an order's status (admin)
  order-cancel  -id
  order-delete  -id                  Remove an order (admin)
  guest-order   -name -email -phone -address -items
  upload        -file                Bulk-import products (admin)
`

type app struct {
	auth     auth.Service
	orders   order.Service
	products product.Service
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatal("Error loading .env file")
		}
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	tokens := token.NewFileStore(tokenPath(cfg))
	client := api.New(cfg.BaseURL, tokens, cfg.Timeout)

	a := &app{
		auth: auth.NewService(client, tokens, ratelimit.NewLimiter(), auth.Config{
			MockEnabled: cfg.MockEnabled,
			MockLatency: cfg.MockLatency,
			APIVersion:  cfg.APIVersion,
		}, nil),
		orders: order.NewService(client, order.Config{
			MockEnabled: cfg.MockEnabled,
			MockLatency: cfg.MockLatency,
			APIVersion:  cfg.APIVersion,
		}),
		products: product.NewService(client, product.Config{
			MockEnabled: cfg.MockEnabled,
			MockLatency: cfg.MockLatency,
			APIVersion:  cfg.APIVersion,
		}, nil),
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "signup":
		return a.signup(ctx, args)
	case "guest-login":
		return print(a.auth.LoginAsGuest())
	case "logout":
		return a.auth.Logout(ctx)
	case "whoami":
		user, err := a.auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		return print(user)
	case "refresh":
		return a.auth.Refresh(ctx)
	case "products":
		list, err := a.products.List(ctx)
		if err != nil {
			return err
		}
		return print(list)
	case "product":
		return a.product(ctx, args)
	case "orders":
		return a.listOrders(ctx, args)
	case "order":
		return a.getOrder(ctx, args)
	case "order-create":
		return a.createOrder(ctx, args)
	case "order-status":
		return a.orderStatus(ctx, args)
	case "order-cancel":
		return a.orderCancel(ctx, args)
	case "order-delete":
		return a.orderDelete(ctx, args)
	case "guest-order":
		return a.guestOrder(ctx, args)
	case "upload":
		return a.upload(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// ── Auth commands ─────────────────────────────────────────────────────────────

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	user, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	user, err := a.auth.Signup(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Account created; logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

// ── Catalog commands ──────────────────────────────────────────────────────────

func (a *app) product(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("product", flag.ExitOnError)
	id := fs.String("id", "", "product id")
	fs.Parse(args)

	p, err := a.products.Get(ctx, *id)
	if err != nil {
		return err
	}
	return print(p)
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	path := fs.String("file", "", "file with one product name per line")
	fs.Parse(args)

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()
	return a.products.Upload(ctx, filepath.Base(*path), f)
}

// ── Order commands ────────────────────────────────────────────────────────────

func (a *app) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 10, "page size")
	vendor := fs.String("vendor", "", "vendor name or email filter")
	status := fs.String("status", "", "status filter")
	from := fs.String("from", "", "earliest order date (YYYY-MM-DD)")
	to := fs.String("to", "", "latest order date (YYYY-MM-DD)")
	fs.Parse(args)

	list, err := a.orders.List(ctx, *page, *size, order.Filters{
		Vendor:   *vendor,
		Status:   *status,
		DateFrom: *from,
		DateTo:   *to,
	})
	if err != nil {
		return err
	}
	return print(list)
}

func (a *app) getOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)

	o, err := a.orders.Get(ctx, *id)
	if err != nil {
		return err
	}
	return print(o)
}

func (a *app) createOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order-create", flag.ExitOnError)
	items := fs.String("items", "", `line items as JSON, e.g. [{"productId":"1","quantity":3}]`)
	address := fs.String("address", "", "delivery address")
	date := fs.String("date", "", "delivery date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "order notes")
	vendorEmail := fs.String("vendor-email", "", "place on behalf of a vendor (admin)")
	fs.Parse(args)

	parsed, err := parseItems(*items)
	if err != nil {
		return err
	}
	o, err := a.orders.Create(ctx, order.CreateRequest{
		Items:        parsed,
		Address:      *address,
		DeliveryDate: *date,
		Notes:        *notes,
		VendorEmail:  *vendorEmail,
	})
	if err != nil {
		return err
	}
	return print(o)
}

func (a *app) orderStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order-status", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	status := fs.String("status", "", "new status")
	fs.Parse(args)

	o, err := a.orders.UpdateStatus(ctx, *id, order.Status(*status))
	if err != nil {
		return err
	}
	return print(o)
}

func (a *app) orderCancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order-cancel", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)

	o, err := a.orders.Cancel(ctx, *id)
	if err != nil {
		return err
	}
	return print(o)
}

func (a *app) orderDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order-delete", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)
	return a.orders.Delete(ctx, *id)
}

func (a *app) guestOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("guest-order", flag.ExitOnError)
	name := fs.String("name", "", "contact name")
	email := fs.String("email", "", "contact email")
	phone := fs.String("phone", "", "contact phone")
	address := fs.String("address", "", "delivery address")
	items := fs.String("items", "", "line items as JSON")
	fs.Parse(args)

	parsed, err := parseItems(*items)
	if err != nil {
		return err
	}
	result, err := a.orders.CreateGuest(ctx, order.GuestRequest{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Address: *address,
		Items:   parsed,
	})
	if err != nil {
		return err
	}
	return print(result)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func parseItems(raw string) ([]order.ItemRequest, error) {
	var items []order.ItemRequest
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parse -items: %w", err)
	}
	return items, nil
}

func print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tokenPath resolves where the session file lives: the configured path, or
// a per-user default under the OS config directory.
func tokenPath(cfg *config.Config) string {
	if cfg.TokenFile != "" {
		return cfg.TokenFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".pvc-portal-tokens.json"
	}
	return filepath.Join(dir, "pvc-portal", "tokens.json")
}
