// Package orderlink parses service flags and launches the service.
package orderlink

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	app "github.com/louisbranch/orderlink/internal/orderflow/app"
	"github.com/louisbranch/orderlink/internal/orderflow/domain"
	entrypoint "github.com/louisbranch/orderlink/internal/platform/cmd"
)

// Config holds orderlink command configuration.
type Config struct {
	Addr             string `env:"ORDERLINK_ADDR" envDefault:":8080"`
	DBPath           string `env:"ORDERLINK_DB_PATH" envDefault:"data/orderlink.db"`
	RedisAddr        string `env:"ORDERLINK_REDIS_ADDR"`
	ChannelToken     string `env:"ORDERLINK_CHANNEL_TOKEN"`
	MessagingBaseURL string `env:"ORDERLINK_MESSAGING_BASE_URL" envDefault:"https://api.line.me"`
	FormURL          string `env:"ORDERLINK_FORM_URL"`
	FormFieldKey     string `env:"ORDERLINK_FORM_FIELD_KEY"`

	OrderIDTitle  string `env:"ORDERLINK_ORDER_ID_FIELD" envDefault:"Order number"`
	ShopTitle     string `env:"ORDERLINK_SHOP_FIELD" envDefault:"Pickup shop"`
	DeliveryTitle string `env:"ORDERLINK_DELIVERY_DATE_FIELD" envDefault:"Delivery date"`
	CommentTitle  string `env:"ORDERLINK_COMMENT_FIELD" envDefault:"Comment"`

	OrderKeyword    string `env:"ORDERLINK_ORDER_KEYWORD" envDefault:"order"`
	CancelKeyword   string `env:"ORDERLINK_CANCEL_KEYWORD" envDefault:"no"`
	QuestionKeyword string `env:"ORDERLINK_QUESTION_KEYWORD" envDefault:"question"`
	AdminKeyword    string `env:"ORDERLINK_ADMIN_KEYWORD"`

	Language              string `env:"ORDERLINK_LANGUAGE" envDefault:"en"`
	CorrelationTTLSeconds int    `env:"ORDERLINK_CORRELATION_TTL_SECONDS" envDefault:"3600"`
	AlertOnMiss           bool   `env:"ORDERLINK_RECONCILE_ALERT_ON_MISS" envDefault:"true"`
	DispatchAttempts      int    `env:"ORDERLINK_DISPATCH_ATTEMPTS" envDefault:"3"`
	DispatchBaseWaitMS    int    `env:"ORDERLINK_DISPATCH_BASE_WAIT_MS" envDefault:"500"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "The Redis address for the correlation cache (empty for in-process)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.ChannelToken) == "" {
		return fmt.Errorf("ORDERLINK_CHANNEL_TOKEN is required")
	}
	if strings.TrimSpace(cfg.FormURL) == "" {
		return fmt.Errorf("ORDERLINK_FORM_URL is required")
	}
	if strings.TrimSpace(cfg.FormFieldKey) == "" {
		return fmt.Errorf("ORDERLINK_FORM_FIELD_KEY is required")
	}
	return nil
}

// Run starts the orderlink HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOrderlink, func(ctx context.Context) error {
		server, err := app.New(ctx, app.Config{
			Addr:             cfg.Addr,
			DBPath:           cfg.DBPath,
			RedisAddr:        cfg.RedisAddr,
			ChannelToken:     cfg.ChannelToken,
			MessagingBaseURL: cfg.MessagingBaseURL,
			FormURL:          cfg.FormURL,
			FormFieldKey:     cfg.FormFieldKey,
			Titles: domain.FieldTitles{
				CorrelationID: cfg.OrderIDTitle,
				ShopName:      cfg.ShopTitle,
				DeliveryDate:  cfg.DeliveryTitle,
				Comment:       cfg.CommentTitle,
			},
			Keywords: domain.Keywords{
				Order:    cfg.OrderKeyword,
				Cancel:   cfg.CancelKeyword,
				Question: cfg.QuestionKeyword,
				Admin:    cfg.AdminKeyword,
			},
			Language:         cfg.Language,
			CorrelationTTL:   time.Duration(cfg.CorrelationTTLSeconds) * time.Second,
			AlertOnMiss:      cfg.AlertOnMiss,
			DispatchAttempts: cfg.DispatchAttempts,
			DispatchBaseWait: time.Duration(cfg.DispatchBaseWaitMS) * time.Millisecond,
		})
		if err != nil {
			return err
		}
		defer server.Close()
		return server.ListenAndServe(ctx)
	})
}
