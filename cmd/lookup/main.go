package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"place-lookup/internal/client"
	"place-lookup/internal/config"
	"place-lookup/internal/handler"
	"place-lookup/internal/service"
	"place-lookup/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// set by the linker
var (
	buildVersion = "dev"
	buildGitHash = "unknown"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	placesClient, err := client.New(client.Options{
		BaseURL:        config.BaseURL,
		RequestTimeout: config.RequestTimeout,
		RetryMax:       config.RetryMax,
		Logger:         log.Logger.With().Str("component", "client").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create places client")
	}
	source := client.NewSource(placesClient)
	resolver := client.NewResolver(placesClient)

	sessionLog := log.Logger.With().Str("component", "session").Logger()
	sessionService := service.NewSessionService(func() *session.Controller {
		return session.NewController(
			session.New(config.RefinableClasses...),
			source,
			resolver,
			session.ControllerOptions{
				MinQueryLength: config.MinQueryLength,
				RateLimitWait:  config.RateLimitWait,
				Logger:         sessionLog,
			},
		)
	}, config.SessionIdleTTL)

	sessionHandler := handler.NewSessionHandler(sessionService)

	r := gin.New()
	r.Use(handler.RequestLogger(log.Logger), handler.Recovery(log.Logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	if len(config.CORSOrigins) == 1 && config.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.CORSOrigins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": sessionService.Count(),
		})
	})
	r.GET("/version", handler.NewVersionHandler(buildVersion, buildGitHash).GetVersion)
	sessionHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    config.LookupAddress,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessionService.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("address", config.LookupAddress).Str("places", config.BaseURL).Msg("serving lookup sessions")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}
