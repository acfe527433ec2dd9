package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/alpaca-trader/internal/config"
	"github.com/amirphl/alpaca-trader/internal/exchange"
	"github.com/amirphl/alpaca-trader/internal/logging"
	"github.com/amirphl/alpaca-trader/internal/notifier"
	"github.com/amirphl/alpaca-trader/internal/order"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	defer logging.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var client *exchange.Client
	if cfg.DryRun {
		logging.L().Info("running against the in-memory mock gateway")
		client = exchange.NewClientWithGateway(exchange.NewMockGateway())
	} else {
		client = exchange.NewClient(cfg.APIKey, cfg.APISecret, cfg.Endpoint)
	}

	var n notifier.Notifier = notifier.Noop{}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		n = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID,
			cfg.NotificationRetries, cfg.NotificationDelay)
	}

	if err := run(ctx, client, n, cfg); err != nil {
		logging.L().Errorw("command failed", "command", cfg.Command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *exchange.Client, n notifier.Notifier, cfg config.Config) error {
	switch cfg.Command {
	case "place":
		return placeOrder(ctx, client, n, cfg)
	case "list":
		return listOrders(ctx, client, cfg)
	case "get":
		return getOrder(ctx, client, cfg)
	case "cancel":
		return cancelOrder(ctx, client, cfg)
	case "account":
		return showAccount(ctx, client)
	case "clock":
		return showClock(ctx, client)
	case "calendar":
		return showCalendar(ctx, client)
	default:
		return fmt.Errorf("unknown command: %s", cfg.Command)
	}
}

func buildOrder(cfg config.Config) (*order.Order, error) {
	o := order.New()

	if !o.Set(order.FieldSymbol, cfg.Symbol) {
		return nil, fmt.Errorf("invalid symbol: %q", cfg.Symbol)
	}
	if !o.Set(order.FieldQuantity, cfg.Quantity) {
		return nil, fmt.Errorf("invalid quantity: %d", cfg.Quantity)
	}
	if !o.Set(order.FieldSide, cfg.Side) {
		return nil, fmt.Errorf("invalid side: %q", cfg.Side)
	}
	if !o.Set(order.FieldType, cfg.OrderType) {
		return nil, fmt.Errorf("invalid order type: %q", cfg.OrderType)
	}
	if !o.Set(order.FieldTimeInForce, cfg.TimeInForce) {
		return nil, fmt.Errorf("invalid time in force: %q", cfg.TimeInForce)
	}
	if cfg.LimitPrice > 0 && !o.Set(order.FieldLimitPrice, cfg.LimitPrice) {
		return nil, fmt.Errorf("invalid limit price: %f", cfg.LimitPrice)
	}
	if cfg.StopPrice > 0 && !o.Set(order.FieldStopPrice, cfg.StopPrice) {
		return nil, fmt.Errorf("invalid stop price: %f", cfg.StopPrice)
	}
	if cfg.ExtendedHours {
		o.Set(order.FieldExtendedHours, true)
	}

	return o, nil
}

func placeOrder(ctx context.Context, client *exchange.Client, n notifier.Notifier, cfg config.Config) error {
	o, err := buildOrder(cfg)
	if err != nil {
		return err
	}

	if !client.Orders().Place(ctx, o) {
		msg := fmt.Sprintf("Order placement failed: %s %d %s", cfg.Side, cfg.Quantity, cfg.Symbol)
		if nerr := n.SendWithRetry(msg); nerr != nil {
			logging.L().Warnw("notification failed", "error", nerr)
		}
		return fmt.Errorf("placement rejected for %s", o.ClientOrderID())
	}

	fmt.Printf("placed %s: id=%s status=%s\n", o.ClientOrderID(), o.ID(), o.Status())
	return nil
}

func listOrders(ctx context.Context, client *exchange.Client, cfg config.Config) error {
	params := exchange.DefaultListParams()
	params.Status = exchange.ListStatus(cfg.ListStatus)
	if cfg.ListLimit > 0 {
		params.Limit = cfg.ListLimit
	}

	collection, err := client.Orders().List(ctx, params)
	if err != nil {
		return err
	}

	fmt.Printf("%d orders\n", collection.Count())
	it := collection.Iterator()
	for o, ok := it.Next(); ok; o, ok = it.Next() {
		created := ""
		if t, ok := o.CreatedAt(); ok {
			created = t.Format(time.RFC3339)
		}
		fmt.Printf("%s  %-6s %-4s %4d  %-16s %s\n",
			o.ID(), o.Symbol(), o.Side(), o.Quantity(), o.Status(), created)
	}

	return nil
}

func getOrder(ctx context.Context, client *exchange.Client, cfg config.Config) error {
	o, err := client.Orders().Get(ctx, cfg.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("order %s not found", cfg.OrderID)
	}

	for field, value := range o.ToMap() {
		fmt.Printf("%-16s %v\n", field, value)
	}

	return nil
}

func cancelOrder(ctx context.Context, client *exchange.Client, cfg config.Config) error {
	o, err := client.Orders().Get(ctx, cfg.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("order %s not found", cfg.OrderID)
	}

	if !client.Orders().Cancel(ctx, o) {
		return fmt.Errorf("cancel failed for %s", cfg.OrderID)
	}

	fmt.Printf("canceled %s\n", cfg.OrderID)
	return nil
}

func showAccount(ctx context.Context, client *exchange.Client) error {
	account := client.Account()

	info, err := account.Info(ctx)
	if err != nil {
		return err
	}
	value, err := account.Value(ctx)
	if err != nil {
		return err
	}
	bp, err := account.BuyingPower(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("account %s (%s) status=%s\n", info.AccountNumber, info.Currency, info.Status)
	fmt.Printf("equity=%.2f cash=%.2f portfolio=%.2f\n", value.Equity, value.Cash, value.PortfolioValue)
	fmt.Printf("buying power=%.2f (daytrading=%.2f, multiplier=%.0fx)\n",
		bp.BuyingPower, bp.DaytradingBuyingPower, bp.Multiplier)

	return nil
}

func showClock(ctx context.Context, client *exchange.Client) error {
	clock, err := client.Clock().Now(ctx)
	if err != nil {
		return err
	}

	state := "closed"
	if clock.IsOpen {
		state = "open"
	}
	fmt.Printf("market is %s at %s\n", state, clock.Timestamp.Format(time.RFC3339))
	fmt.Printf("next open:  %s\n", clock.NextOpen.Format(time.RFC3339))
	fmt.Printf("next close: %s\n", clock.NextClose.Format(time.RFC3339))

	return nil
}

func showCalendar(ctx context.Context, client *exchange.Client) error {
	days, err := client.Calendar().MarketDays(ctx, time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	for _, day := range days {
		fmt.Printf("%s  %s - %s\n", day.Date, day.Open, day.Close)
	}

	return nil
}
