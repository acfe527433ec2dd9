// Package config
package config

import (
	"flag"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

/*
YAML config example:
api_key: "PK..."
api_secret: "..."
endpoint: "https://paper-api.alpaca.markets"
dry_run: false
telegram_token: "..."
telegram_chat_id: "..."
notification_retries: 3
notification_delay: 5s
*/

type Config struct {
	APIKey              string        `yaml:"api_key"`
	APISecret           string        `yaml:"api_secret"`
	Endpoint            string        `yaml:"endpoint"`
	DryRun              bool          `yaml:"dry_run"`
	TelegramToken       string        `yaml:"telegram_token"`
	TelegramChatID      string        `yaml:"telegram_chat_id"`
	NotificationRetries int           `yaml:"notification_retries"`
	NotificationDelay   time.Duration `yaml:"notification_delay"`

	// operation flags, not read from the config file
	Command       string  `yaml:"-"`
	Symbol        string  `yaml:"-"`
	Quantity      int     `yaml:"-"`
	Side          string  `yaml:"-"`
	OrderType     string  `yaml:"-"`
	TimeInForce   string  `yaml:"-"`
	LimitPrice    float64 `yaml:"-"`
	StopPrice     float64 `yaml:"-"`
	ExtendedHours bool    `yaml:"-"`
	OrderID       string  `yaml:"-"`
	ListStatus    string  `yaml:"-"`
	ListLimit     int     `yaml:"-"`
}

// Load reads configuration from flags, falling back to a YAML file when
// -config is given and to environment variables for credentials.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("alpaca-trader", flag.ContinueOnError)

	apiKey := fs.String("api-key", "", "Alpaca API key id")
	apiSecret := fs.String("api-secret", "", "Alpaca API secret key")
	endpoint := fs.String("endpoint", "https://paper-api.alpaca.markets", "API base endpoint")
	dryRun := fs.Bool("dry-run", false, "Run against the in-memory mock gateway")
	telegramToken := fs.String("telegram-token", "", "Telegram bot token for notifications")
	telegramChatID := fs.String("telegram-chat", "", "Telegram chat ID for notifications")
	notificationRetries := fs.Int("notification-retries", 3, "Number of notification send attempts")
	notificationDelay := fs.Duration("notification-delay", 5*time.Second, "Delay between notification retries (e.g., 5s)")
	configFile := fs.String("config", "", "Path to YAML config file")

	command := fs.String("command", "clock", "Operation: place, list, get, cancel, account, clock, calendar")
	symbol := fs.String("symbol", "", "Symbol for place (e.g., AAPL)")
	quantity := fs.Int("qty", 1, "Quantity for place")
	side := fs.String("side", "buy", "Side for place: buy or sell")
	orderType := fs.String("type", "market", "Order type for place: market, limit, stop, stop_limit")
	timeInForce := fs.String("tif", "day", "Time in force for place: day, gtc, opg, cls, ioc, fok")
	limitPrice := fs.Float64("limit-price", 0, "Limit price for limit/stop_limit orders")
	stopPrice := fs.Float64("stop-price", 0, "Stop price for stop/stop_limit orders")
	extendedHours := fs.Bool("extended-hours", false, "Allow execution outside regular hours")
	orderID := fs.String("order-id", "", "Server-assigned order id for get/cancel")
	listStatus := fs.String("status", "all", "Status filter for list: open, closed, all")
	listLimit := fs.Int("limit", 50, "Max rows for list (1-500)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIKey:              *apiKey,
		APISecret:           *apiSecret,
		Endpoint:            *endpoint,
		DryRun:              *dryRun,
		TelegramToken:       *telegramToken,
		TelegramChatID:      *telegramChatID,
		NotificationRetries: *notificationRetries,
		NotificationDelay:   *notificationDelay,
		Command:             *command,
		Symbol:              *symbol,
		Quantity:            *quantity,
		Side:                *side,
		OrderType:           *orderType,
		TimeInForce:         *timeInForce,
		LimitPrice:          *limitPrice,
		StopPrice:           *stopPrice,
		ExtendedHours:       *extendedHours,
		OrderID:             *orderID,
		ListStatus:          *listStatus,
		ListLimit:           *listLimit,
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, err
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, err
		}
		fileCfg.Command = cfg.Command
		fileCfg.Symbol = cfg.Symbol
		fileCfg.Quantity = cfg.Quantity
		fileCfg.Side = cfg.Side
		fileCfg.OrderType = cfg.OrderType
		fileCfg.TimeInForce = cfg.TimeInForce
		fileCfg.LimitPrice = cfg.LimitPrice
		fileCfg.StopPrice = cfg.StopPrice
		fileCfg.ExtendedHours = cfg.ExtendedHours
		fileCfg.OrderID = cfg.OrderID
		fileCfg.ListStatus = cfg.ListStatus
		fileCfg.ListLimit = cfg.ListLimit
		return fileCfg, nil
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("APCA_API_KEY_ID")
	}
	if cfg.APISecret == "" {
		cfg.APISecret = os.Getenv("APCA_API_SECRET_KEY")
	}

	return cfg, nil
}

// Validate aggregates everything wrong with the config rather than stopping
// at the first problem. A dry run needs no credentials.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.DryRun {
		return nil
	}

	if c.APIKey == "" {
		result = multierror.Append(result, errMissing("api_key"))
	}
	if c.APISecret == "" {
		result = multierror.Append(result, errMissing("api_secret"))
	}
	if c.Endpoint == "" {
		result = multierror.Append(result, errMissing("endpoint"))
	}

	return result.ErrorOrNil()
}

type missingFieldError string

func (e missingFieldError) Error() string {
	return "missing required config field: " + string(e)
}

func errMissing(field string) error {
	return missingFieldError(field)
}
