package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"

	"leetcode-companion/config"
	"leetcode-companion/handlers"
	"leetcode-companion/logger"
	"leetcode-companion/metrics"
	"leetcode-companion/middleware"
	"leetcode-companion/services"
	"leetcode-companion/utils"
	"leetcode-companion/workers"
)

func main() {
	cfg := config.Load()
	logger.InitLogger(cfg.LogLevel)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to initialize record store")
	}

	cal := services.NewCalendar(clockwork.NewRealClock(), cfg.Location())
	catalog := services.NewCatalogClient(cfg.LeetCode.GraphQLURL, utils.HTTPClient)
	xpService := services.NewXPService(store, cfg.Tables)
	dailyService := services.NewDailyService(store, cfg.Tables, catalog, xpService, cal)
	groupService := services.NewGroupService(store, cfg.Tables, xpService, cal)
	bountyService := services.NewBountyService(store, cfg.Tables, cal)
	validator := services.NewUsernameValidator(cfg.LeetCode.ValidateURL, cfg.LeetCode.APIKey)

	notifier := workers.NewDailyNotifier(dailyService, workers.DesktopNotifier{}, cal, workers.NotifierOptions{
		TrackingFile: cfg.Notify.TrackingFile,
		Icon:         cfg.Notify.Icon,
		StartDelay:   cfg.Notify.StartDelay,
		Interval:     cfg.Notify.Interval,
	})

	app := fiber.New(fiber.Config{
		AppName:               "leetcode-companion",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestContextMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.ShellOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		MaxAge:       86400,
	}))
	app.Use(middleware.ShellAuthMiddleware(cfg.ShellToken))

	handlers.SetupRoutes(app, handlers.Deps{
		Validator: validator,
		Groups:    groupService,
		Daily:     dailyService,
		XP:        xpService,
		Bounties:  bountyService,
		Catalog:   catalog,
		AppState:  notifier,
		OpenURL:   browser.OpenURL,
		Gatherer:  prometheus.DefaultGatherer,
	})

	if err := notifier.Start(ctx); err != nil {
		logger.Log.WithError(err).Fatal("failed to start daily challenge checker")
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.Log.WithError(err).Error("Server error")
			stop()
		}
	}()

	logger.Log.Infof("✅ Dispatcher running on http://%s (store=%s)", cfg.ListenAddr, cfg.StoreBackend)

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	if err := notifier.Stop(); err != nil {
		logger.Log.WithError(err).Warn("scheduler shutdown")
	}
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Log.WithError(err).Warn("server shutdown")
	}
}

func openStore(ctx context.Context, cfg config.AppConfig) (services.RecordStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		logger.Log.Warn("⚠️  Using in-memory record store, data is lost on exit")
		return services.NewMemoryStoreFor(cfg.Tables), nil
	case "dynamodb", "":
		client, err := utils.NewDynamoClient(ctx, utils.DynamoSettings{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return services.NewDynamoStore(client), nil
	default:
		return nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
	}
}
