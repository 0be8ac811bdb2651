package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sindhuth/donation-ocr-app/internal/adapter/repo"
	"github.com/sindhuth/donation-ocr-app/internal/aggregate"
	"github.com/sindhuth/donation-ocr-app/internal/config"
	"github.com/sindhuth/donation-ocr-app/internal/events"
	"github.com/sindhuth/donation-ocr-app/internal/extraction"
	"github.com/sindhuth/donation-ocr-app/internal/http/handlers"
	"github.com/sindhuth/donation-ocr-app/internal/http/httpapi"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
	"github.com/sindhuth/donation-ocr-app/internal/lifecycle"
	"github.com/sindhuth/donation-ocr-app/internal/roles"
)

func main() {
	envFiles, envErr := config.LoadEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("failed to read dotenv file")
	}
	logger.Debug().Strs("files", envFiles).Msg("dotenv loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		_ = store.Close()
	}()

	arbiter := roles.NewArbiter(store, roles.PolicyFor(cfg.Event), infra.Component(logger, "roles"))
	hub := events.NewHub(32)

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	var publisher events.Publisher = hub
	var relay *events.Relay
	if rdb != nil {
		defer func() {
			_ = rdb.Close()
		}()
		// Every process, this one included, learns about events through the
		// channel so all screens see the same stream.
		publisher = events.NewRedisPublisher(rdb, events.DefaultChannel)
		relay = events.NewRelay(rdb, events.DefaultChannel, infra.Component(logger, "events"))
	}

	svc := lifecycle.NewService(store, infra.Component(logger, "lifecycle"),
		lifecycle.WithPublisher(publisher),
		lifecycle.WithSkipPolicy(lifecycle.ParseSkipPolicy(cfg.Event.SkipPolicy)),
		lifecycle.WithSessionCache(arbiter),
	)

	extractor, err := extraction.FromConfig(ctx, cfg, infra.Component(logger, "extraction"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure extraction")
	}

	app := handlers.NewApp(logger, cfg.Event, arbiter, svc, aggregate.NewView(store), extractor, hub)
	app.MaxUploadBytes = cfg.MaxUploadBytes
	app.ExtractionTimeout = cfg.ExtractionTimeout

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          infra.Component(logger, "http"),
		CORSOrigins:     cfg.CORSAllowedOrigins,
		UploadsPerMin:   cfg.RateLimitPerMin,
		SecureCookies:   cfg.AppEnv == "production",
		SessionLifetime: cfg.SessionLifetime,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("store", cfg.StoreDriver).Float64("goal", cfg.Event.Goal).Msgf("API listening on %s", server.Addr())
		return server.Run(gctx, nil)
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx, func(ctx context.Context, e events.Event) {
				if e.Kind == events.EventReset {
					arbiter.Forget()
				}
				_ = hub.Publish(ctx, e)
			})
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
