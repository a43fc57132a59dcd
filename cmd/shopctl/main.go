package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"naijashop/internal/storefront"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
)

const usage = `usage: shopctl [flags] <command> [args]

commands:
  register <firstName> <lastName> <email> <password>
  login <email> <password>
  logout
  whoami
  products [-search q] [-category c] [-page n]
  cart
  add <productId> [quantity]
  set <productId> <quantity>
  remove <productId>
  checkout -street s -city c -state st [-address-id n] [-method card|bank_transfer|cash_on_delivery]
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NAIJASHOP")
	v.AutomaticEnv()
	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("TIMEOUT", "10s")
	v.SetDefault("SESSION_FILE", storefront.DefaultSessionPath())

	fs := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	apiURL := fs.String("api", v.GetString("API_URL"), "backend base URL")
	sessionFile := fs.String("session", v.GetString("SESSION_FILE"), "session file path")
	timeout := fs.Duration("timeout", v.GetDuration("TIMEOUT"), "request timeout")
	verbose := fs.Bool("v", false, "log fallbacks to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("command is required")
	}

	logger := log.New("shopctl")
	logger.SetLevel(log.OFF)
	if *verbose {
		logger.SetLevel(log.WARN)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := storefront.NewShell(storefront.NewClient(*apiURL, *timeout), storefront.NewFileStore(*sessionFile), logger)
	_, verified, err := sh.Restore(ctx)
	if err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]

	//whoami以外は再検証の結果を待たない
	if cmd == "whoami" {
		res := <-verified
		if res.Evicted {
			return errors.New("session expired, please log in again")
		}
		if res.User == nil {
			return errors.New("not logged in")
		}
		return printJSON(out, res.User)
	}

	switch cmd {
	case "register":
		if len(rest) != 4 {
			return errors.New("register needs firstName lastName email password")
		}
		res, err := sh.Register(ctx, storefront.RegisterRequest{FirstName: rest[0], LastName: rest[1], Email: rest[2], Password: rest[3]})
		if err != nil {
			return err
		}
		return printJSON(out, res)

	case "login":
		if len(rest) != 2 {
			return errors.New("login needs email password")
		}
		res, err := sh.Login(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		return printJSON(out, res)

	case "logout":
		return sh.Logout(ctx)

	case "products":
		pf := flag.NewFlagSet("products", flag.ContinueOnError)
		search := pf.String("search", "", "search text")
		category := pf.String("category", "", "category")
		page := pf.Int("page", 1, "page")
		if err := pf.Parse(rest); err != nil {
			return err
		}
		list, err := sh.Products(ctx, storefront.ProductQuery{Search: *search, Category: *category, Page: *page})
		if err != nil {
			return err
		}
		return printJSON(out, list)

	case "cart":
		view, err := sh.Cart(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, view)

	case "add":
		if len(rest) < 1 || len(rest) > 2 {
			return errors.New("add needs productId [quantity]")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		qty := int64(1)
		if len(rest) == 2 {
			if qty, err = strconv.ParseInt(rest[1], 10, 64); err != nil || qty < 1 {
				return errors.New("quantity must be >= 1")
			}
		}
		line, err := lookupLine(ctx, sh, id)
		if err != nil {
			return err
		}
		line.Quantity = qty
		view, err := sh.AddToCart(ctx, line)
		if err != nil {
			return err
		}
		return printJSON(out, view)

	case "set":
		if len(rest) != 2 {
			return errors.New("set needs productId quantity")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		qty, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil || qty < 0 {
			return errors.New("quantity must be >= 0")
		}
		view, err := sh.SetQuantity(ctx, id, qty)
		if err != nil {
			return err
		}
		return printJSON(out, view)

	case "remove":
		if len(rest) != 1 {
			return errors.New("remove needs productId")
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		view, err := sh.Remove(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, view)

	case "checkout":
		cf := flag.NewFlagSet("checkout", flag.ContinueOnError)
		street := cf.String("street", "", "street")
		city := cf.String("city", "", "city")
		state := cf.String("state", "", "state")
		postal := cf.String("postal-code", "", "postal code")
		addressID := cf.Int64("address-id", 0, "saved address id")
		method := cf.String("method", "card", "payment method")
		if err := cf.Parse(rest); err != nil {
			return err
		}
		res, err := sh.Checkout(ctx, storefront.CheckoutInput{
			Shipping:      storefront.ShippingAddress{Street: *street, City: *city, State: *state, Country: "Nigeria", PostalCode: *postal},
			AddressID:     *addressID,
			PaymentMethod: *method,
		})
		if err != nil {
			return err
		}
		return printJSON(out, res)
	}

	fs.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

// ゲストカートに名前と価格を残すため商品一覧から引く
func lookupLine(ctx context.Context, sh *storefront.Shell, id int64) (storefront.GuestLine, error) {
	line := storefront.GuestLine{ProductID: id}
	if sh.Session().Authenticated() {
		return line, nil
	}
	list, err := sh.Products(ctx, storefront.ProductQuery{Limit: 100})
	if err != nil {
		return line, err
	}
	for _, p := range list.Items {
		if p.ID == id {
			line.Name = p.Name
			line.Price = p.DiscountedPrice
			return line, nil
		}
	}
	return line, fmt.Errorf("product %d not found", id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
