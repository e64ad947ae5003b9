package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/auth"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/crypto"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/platform/config"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/platform/logging"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/proxy"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/resources"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/session"
)

const commandTimeout = 30 * time.Second

func usage() {
	fmt.Fprintln(os.Stderr, `usage: autoteile <command> [flags]

commands:
  login      -email <email> -password <password>
  logout
  whoami
  refresh
  tenant     [merchant id]
  orders     [-status <status>]
  products   [-search <term>]
  suppliers
  invoices   [-status <status>]
  tax
  proxy`)
	os.Exit(2)
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupCrypto(cfg *config.Config) crypto.Service {
	if cfg.SessionEncryptionKey == "" {
		return crypto.NoopService{}
	}
	svc, err := crypto.NewAesGcmService(cfg.SessionEncryptionKey)
	if err != nil {
		slog.Error("Failed to create crypto service", "error", err)
		os.Exit(1)
	}
	return svc
}

func setupStore(ctx context.Context, cfg *config.Config, cryptoSvc crypto.Service) (session.Store, func()) {
	if cfg.SessionBackend == "redis" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		return session.NewRedisStore(rdb, "autoteile", cryptoSvc), func() { _ = rdb.Close() }
	}
	return session.NewFileStore(cfg.SessionPath, cryptoSvc), func() {}
}

func setupClient(cfg *config.Config) *apiclient.Client {
	opts := []apiclient.Option{apiclient.WithAuthScheme(cfg.APIAuthScheme)}
	if cfg.APIStaticToken != "" {
		opts = append(opts, apiclient.WithStaticToken(cfg.APIStaticToken))
	}
	client, err := apiclient.New(cfg.APIBaseURL, opts...)
	if err != nil {
		slog.Error("Failed to create API client", "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cryptoSvc := setupCrypto(cfg)
	store, closeStore := setupStore(ctx, cfg, cryptoSvc)
	defer closeStore()

	client := setupClient(cfg)

	navigate := func(r auth.Route) {
		slog.Debug("Navigation requested", "route", string(r))
	}
	manager := auth.NewManager(store, client, clockwork.NewRealClock(), cfg.SessionDefaultTTL, navigate)

	if err := manager.Initialize(ctx); err != nil {
		slog.Error("Failed to initialize session", "error", err)
		os.Exit(1)
	}

	var err error
	switch command {
	case "login":
		err = runLogin(ctx, manager, args)
	case "logout":
		manager.Logout(ctx)
		fmt.Println("Logged out.")
	case "whoami":
		err = runWhoami(ctx, manager, client)
	case "refresh":
		err = runRefresh(ctx, manager)
	case "tenant":
		err = runTenant(ctx, store, args)
	case "orders":
		err = runOrders(ctx, client, args)
	case "products":
		err = runProducts(ctx, client, args)
	case "suppliers":
		err = runSuppliers(ctx, client)
	case "invoices":
		err = runInvoices(ctx, client, args)
	case "tax":
		err = runTax(ctx, client)
	case "proxy":
		err = runProxy(client, cfg)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apiclient.AsError(err).UserMessage())
		slog.Debug("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, manager *auth.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "merchant account email")
	password := fs.String("password", "", "merchant account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	if err := manager.LoginWithCredentials(ctx, *email, *password); err != nil {
		return err
	}
	user := manager.User()
	fmt.Printf("Logged in as %s (%s), session valid until %s\n",
		user.Username, user.Email, manager.ExpiresAt().Format(time.RFC3339))
	return nil
}

func runWhoami(ctx context.Context, manager *auth.Manager, client *apiclient.Client) error {
	if !manager.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	var user session.User
	if err := client.Get(ctx, "/auth/verify", nil, &user); err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s merchant=%s\n", user.Username, user.Email, user.Role, user.MerchantID)
	return nil
}

func runRefresh(ctx context.Context, manager *auth.Manager) error {
	if !manager.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	if err := manager.Refresh(ctx); err != nil {
		return err
	}
	fmt.Printf("Session refreshed, valid until %s\n", manager.ExpiresAt().Format(time.RFC3339))
	return nil
}

func runTenant(ctx context.Context, store session.Store, args []string) error {
	if len(args) == 0 {
		tenant, err := store.LoadTenant(ctx)
		if err != nil {
			return err
		}
		if tenant == "" {
			fmt.Println("No tenant selected.")
		} else {
			fmt.Println(tenant)
		}
		return nil
	}
	if err := store.SaveTenant(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Selected tenant %s\n", args[0])
	return nil
}

func runOrders(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	status := fs.String("status", "", "filter by order status")
	_ = fs.Parse(args)

	orders, err := resources.NewOrders(client).List(ctx, resources.OrderListOptions{Status: *status})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tSTATUS\tCUSTOMER\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f %s\n", o.Number, o.Status, o.CustomerName, float64(o.TotalCents)/100, o.Currency)
	}
	return w.Flush()
}

func runProducts(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	search := fs.String("search", "", "search term (name, SKU, OE number)")
	_ = fs.Parse(args)

	products, err := resources.NewProducts(client).List(ctx, resources.ProductListOptions{Search: *search})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tNAME\tMANUFACTURER\tSTOCK\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f %s\n", p.SKU, p.Name, p.Manufacturer, p.StockQuantity, float64(p.PriceCents)/100, p.Currency)
	}
	return w.Flush()
}

func runSuppliers(ctx context.Context, client *apiclient.Client) error {
	suppliers, err := resources.NewSuppliers(client).List(ctx, resources.PageOptions{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNTRY\tCONTACT\tLEAD TIME")
	for _, s := range suppliers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dd\n", s.Name, s.Country, s.ContactEmail, s.LeadTimeDays)
	}
	return w.Flush()
}

func runInvoices(ctx context.Context, client *apiclient.Client, args []string) error {
	fs := flag.NewFlagSet("invoices", flag.ExitOnError)
	status := fs.String("status", "", "filter by invoice status")
	_ = fs.Parse(args)

	invoices, err := resources.NewInvoices(client).List(ctx, resources.InvoiceListOptions{Status: *status})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tSTATUS\tGROSS\tDUE")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\n", inv.Number, inv.Status, float64(inv.GrossCents)/100, inv.Currency, inv.DueAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runTax(ctx context.Context, client *apiclient.Client) error {
	profile, err := resources.NewTax(client).Profile(ctx)
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Println("No tax profile configured yet.")
		return nil
	}
	fmt.Printf("VAT ID: %s\nTax number: %s\nCountry: %s\nDefault rate: %.1f%%\nSmall business: %t\n",
		profile.VATID, profile.TaxNumber, profile.Country, profile.DefaultRate, profile.SmallBusiness)
	return nil
}

func runProxy(client *apiclient.Client, cfg *config.Config) error {
	srv := proxy.NewServer(client, cfg.ProxyPort)

	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, stopping proxy...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Proxy shutdown error", "error", err)
		}
		close(done)
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
