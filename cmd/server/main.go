package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/oceanwatch/hazard-api/internal/apperr"
	"github.com/oceanwatch/hazard-api/internal/config"
	"github.com/oceanwatch/hazard-api/internal/database"
	"github.com/oceanwatch/hazard-api/internal/handler"
	"github.com/oceanwatch/hazard-api/internal/queue"
	"github.com/oceanwatch/hazard-api/internal/repository"
	"github.com/oceanwatch/hazard-api/internal/router"
	"github.com/oceanwatch/hazard-api/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response caching disabled")
	}

	blobs, err := storage.NewS3Store(context.Background(),
		cfg.StorageEndpoint, cfg.StorageRegion,
		cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StoragePublicURL)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	users := repository.NewUserRepo(db)
	reports := repository.NewReportRepo(db)

	go func() {
		if err := queue.StartReportConsumer(cfg.AMQPURL); err != nil {
			log.Printf("report consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.Handler(cfg.Env)
	e.Use(echomw.Recover())
	if cfg.Env != "production" {
		e.Use(echomw.Logger())
	}

	router.Register(e, cfg, rdb,
		handler.NewAuthHandler(cfg, users, blobs),
		handler.NewUserHandler(users),
		handler.NewReportHandler(cfg, reports, blobs))

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// Orderly shutdown: stop accepting requests, drain in-flight ones,
	// then close the store connection.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Printf("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
