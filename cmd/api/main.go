package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"artisanstudio/internal/http/handlers"
	httpapi "artisanstudio/internal/http/httpapi"
	"artisanstudio/internal/infra"
	"artisanstudio/internal/infra/geoip"
	"artisanstudio/internal/metrics"
	"artisanstudio/internal/providers/story"
	"artisanstudio/internal/usage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	// Usage events need a database; without one they are dropped.
	var recorder usage.Recorder = usage.NopRecorder{}
	dbpool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrDatabaseDisabled):
		logger.Info().Msg("DATABASE_URL not set, usage events disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer dbpool.Close()
		pg := usage.NewPGRecorder(infra.NewSQLRunner(dbpool, logger), logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare usage schema")
		}
		recorder = pg
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	gen, err := story.New(story.Settings{
		Provider:      cfg.StoryProvider,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIOrg:     cfg.OpenAIOrg,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		GeminiBaseURL: cfg.GeminiBaseURL,
		Timeout:       cfg.ModelTimeout,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("model generation failed, using fallback content")
		},
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build story generator")
	}

	app := handlers.NewApp(gen, recorder, reg, logger)
	app.StrictValidation = cfg.StrictValidation

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		Metrics:        reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		CountryLookup:  resolver.Lookup(),
	})

	server := infra.NewHTTPServer(cfg, router, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	app.Wait()
	logger.Info().Msg("server stopped")
}
