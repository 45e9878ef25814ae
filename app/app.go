package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/orderrelay/orderrelay/internal/cache"
	"github.com/orderrelay/orderrelay/internal/config"
	"github.com/orderrelay/orderrelay/internal/handlers"
	"github.com/orderrelay/orderrelay/internal/logging"
	"github.com/orderrelay/orderrelay/internal/notify"
	"github.com/orderrelay/orderrelay/internal/observability"
	"github.com/orderrelay/orderrelay/internal/pdf"
	"github.com/orderrelay/orderrelay/internal/printnode"
	"github.com/orderrelay/orderrelay/internal/profile"
	"github.com/orderrelay/orderrelay/internal/recent"
	"github.com/orderrelay/orderrelay/internal/services"
	"github.com/orderrelay/orderrelay/internal/shopify"
)

const upstreamTimeout = 30 * time.Second

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	CacheProvider cache.Provider
	Converter     *pdf.ChromeConverter
	Handlers      *handlers.Handlers
	sentryEnabled bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sentryEnabled := strings.TrimSpace(cfg.SentryDSN) != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			EnableLogs:       true,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	logger := logging.New(os.Stdout, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Sentry: sentryEnabled,
	})

	shop, err := loadShop(cfg.ShopProfilePath)
	if err != nil {
		return nil, err
	}

	httpClient := observability.NewHTTPClient(upstreamTimeout)
	shopifyClient := shopify.NewClient(cfg.ShopifyStoreURL, cfg.ShopifyAPIToken, httpClient, logger.With("component", "shopify_client"))

	// A nil *printnode.Client must not become a non-nil interface.
	var submitter services.JobSubmitter
	if strings.TrimSpace(cfg.PrintNodeAPIKey) != "" {
		submitter = printnode.NewClient(cfg.PrintNodeAPIKey, httpClient)
	} else {
		logger.Warn("PRINTNODE_API_KEY not set, printing is disabled")
	}

	converter := pdf.NewChromeConverter(pdf.ChromeOptions{
		ExecPath: cfg.ChromePath,
		Timeout:  cfg.PDFTimeout,
		Logger:   logger.With("component", "pdf"),
	})

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		closeConverter(logger, converter)
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	buffer, err := recent.New(cfg.RecentOrdersCapacity)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		closeConverter(logger, converter)
		return nil, fmt.Errorf("failed to initialize recent order buffer: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.AlertsEnabled() {
		resendNotifier, err := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.AlertEmailFrom, cfg.AlertEmailTo)
		if err != nil {
			closeCacheProvider(logger, cacheProvider)
			closeConverter(logger, converter)
			return nil, fmt.Errorf("failed to initialize alert notifier: %w", err)
		}
		notifier = resendNotifier
	}

	printService := services.NewPrintService(
		shopifyClient,
		converter,
		submitter,
		buffer,
		services.Printers{
			Invoice:  cfg.PrintNodeInvoicePrinterID,
			GiftCard: cfg.PrintNodeGiftCardPrinterID,
		},
		shop,
		notifier,
		logger.With("component", "print_service"),
	)

	h, err := handlers.New(handlers.Dependencies{
		Config:        cfg,
		PrintService:  printService,
		WebhookLedger: cache.NewWebhookLedger(cacheProvider, "shopify", cfg.WebhookDedupTTL),
		Logger:        logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		closeConverter(logger, converter)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info("order relay configured",
		"store", cfg.ShopifyStoreURL,
		"shop", shop.Name,
		"invoice_printer", cfg.PrintNodeInvoicePrinterID,
		"giftcard_printer", cfg.PrintNodeGiftCardPrinterID,
		"cache", cfg.CacheProvider,
		"alerts", cfg.AlertsEnabled(),
	)

	return &App{
		Config:        cfg,
		Logger:        logger,
		CacheProvider: cacheProvider,
		Converter:     converter,
		Handlers:      h,
		sentryEnabled: sentryEnabled,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Converter != nil {
		closeConverter(a.Logger, a.Converter)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

func loadShop(path string) (*profile.Shop, error) {
	if strings.TrimSpace(path) == "" {
		return profile.Default(), nil
	}
	shop, err := profile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop profile: %w", err)
	}
	return shop, nil
}

func closeConverter(logger *slog.Logger, converter *pdf.ChromeConverter) {
	if converter == nil {
		return
	}
	if err := converter.Close(); err != nil && logger != nil {
		logger.Warn("failed to close pdf converter", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
