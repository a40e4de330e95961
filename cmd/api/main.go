package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mapcandy-api/internal/api"
	"mapcandy-api/internal/config"
	"mapcandy-api/internal/database"
	"mapcandy-api/internal/handler"
	"mapcandy-api/internal/logger"
	"mapcandy-api/internal/repository"
	"mapcandy-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//go:generate swag init --dir ../.. --generalInfo cmd/api/main.go --output ../../docs --parseInternal

const shutdownTimeout = 10 * time.Second

// @title       Map Candy API
// @version     1.0
// @description Stores map pins and serves them over a small REST API.
// @BasePath    /v1
func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger.Setup(config.LogLevel, !config.IsProduction())
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection
	conn, err := database.Connect(ctx, config.DBSource, config.DBPingTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	if config.RunMigrations {
		if err := database.Migrate(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("cannot migrate db")
		}
	}

	// Initialize layers
	repo := repository.NewRepository(conn)
	pinService := service.NewPinService(repo)
	pinHandler := handler.NewPinHandler(pinService)

	dispatcher := api.NewDispatcher()
	pinHandler.Register(dispatcher)

	r := api.NewRouter(api.RouterConfig{
		Prefix:         config.APIPrefix,
		RequestTimeout: config.RequestTimeout,
	}, dispatcher, repo)

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       config.RequestTimeout,
		WriteTimeout:      config.RequestTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		log.Info().Str("address", config.ServerAddress).Strs("endpoints", dispatcher.Endpoints()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
