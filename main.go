package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chapter-community/config"
	"chapter-community/handlers"
	"chapter-community/logging"
	"chapter-community/middleware"
	"chapter-community/services"
	"chapter-community/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

func main() {
	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(bootstrap)
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("❌ invalid configuration")
	}
	logging.Configure(logging.Config{Level: cfg.LogLevel})
	logger := logging.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logging.WithComponent("storage"))
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("❌ failed to open durable store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close durable store")
		}
	}()

	clock := clockwork.NewRealClock()
	api := services.NewAPIClient(cfg.APIBaseURL, cfg.APIToken, cfg.HTTPTimeout)

	bus := services.NewActionEventBus(clock, logging.WithComponent("bus"))
	dispatcher := services.NewRewardsDispatcher(bus, services.NewRuleEngineClient(api), nil, logging.WithComponent("rewards"))
	dispatcher.Start()

	cache := services.NewCheckInTokenCache(store, cfg.StorePrefix, clock, logging.WithComponent("token_cache"))
	tokens := services.NewCheckInTokenService(services.NewTokenIssuerClient(api), cache, clock, logging.WithComponent("token_service"))
	scans := services.NewPendingScanStore(store, cfg.StorePrefix, cfg.PendingScanTTL, clock, logging.WithComponent("pending_scan"))
	submitter := services.NewCheckInSubmitter(scans, services.NewCheckInValidatorClient(api), bus, clock, logging.WithComponent("checkin"))

	if _, err := services.StartCacheHygiene(ctx, cache, cfg.CacheHygieneInterval, logging.WithComponent("scheduler")); err != nil {
		logger.Fatal().Err(err).Msg("❌ failed to start cache hygiene")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost,http://127.0.0.1",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Request-ID",
	}))

	handlers.SetupSystemRoutes(app)

	httpLogger := logging.WithComponent("http")
	secured := app.Group("/",
		middleware.LocalAuthMiddleware(cfg.LocalAPIToken, httpLogger),
		middleware.ActorContextMiddleware(httpLogger),
	)
	handlers.SetupActionRoutes(secured, bus)
	handlers.SetupCheckInRoutes(secured, handlers.CheckInServices{
		Tokens:    tokens,
		Scans:     scans,
		Submitter: submitter,
	})

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Str("store", cfg.StoreBackend).
		Str("api", cfg.APIBaseURL).
		Msg("✅ chapter companion running")

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	dispatcher.Stop()
	dispatcher.Wait()
}
