package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"place-lookup/docs"
	"place-lookup/internal/config"
	"place-lookup/internal/handler"
	"place-lookup/internal/repository"
	"place-lookup/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
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

	log.Info().Str("version", buildVersion).Str("hash", buildGitHash).Msg("places api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	conn, err := pgxpool.New(ctx, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	// Initialize layers
	repo := repository.NewRepository(conn)

	completionService, err := service.NewCompletionService(repo, service.CompletionOptions{
		PageSize:     config.PageSize,
		CandidateMax: config.CandidateMax,
		LevMinimum:   config.LevMinimum,
		DistanceCut:  config.DistanceCut,
		CacheTTL:     config.CacheTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create completion service")
	}
	defer completionService.Close()
	placeService := service.NewPlaceService(repo)
	metricsService := service.NewMetricsService(repo, completionService)

	completionHandler := handler.NewCompletionHandler(completionService)
	placeHandler := handler.NewPlaceHandler(placeService)
	metricsHandler := handler.NewMetricsHandler(metricsService)
	versionHandler := handler.NewVersionHandler(buildVersion, buildGitHash)

	r := gin.New()
	r.Use(handler.RequestLogger(log.Logger), handler.Recovery(log.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/api/complete", completionHandler.Complete)
	r.GET("/api/place/:id", placeHandler.GetPlace)
	r.GET("/metrics", metricsHandler.GetMetrics)
	r.GET("/version", versionHandler.GetVersion)

	if config.Spec {
		docs.SwaggerInfo.Host = config.ServerAddress
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    config.ServerAddress,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", config.ServerAddress).Msg("serving places api")
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
