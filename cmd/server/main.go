package main

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
	"github.com/labstack/echo/v4/middleware"

	"github.com/mkudrin/photostore/internal/blobstore"
	"github.com/mkudrin/photostore/internal/config"
	"github.com/mkudrin/photostore/internal/db"
	"github.com/mkudrin/photostore/internal/events"
	"github.com/mkudrin/photostore/internal/fulfillment"
	"github.com/mkudrin/photostore/internal/handlers"
	"github.com/mkudrin/photostore/internal/httpserver"
	"github.com/mkudrin/photostore/internal/logging"
	mwauth "github.com/mkudrin/photostore/internal/middleware/auth"
	loggingmw "github.com/mkudrin/photostore/internal/middleware/logging"
	"github.com/mkudrin/photostore/internal/middleware/ratelimit"
	"github.com/mkudrin/photostore/internal/repo"
	"github.com/mkudrin/photostore/internal/search"
	"github.com/mkudrin/photostore/internal/service"
	"github.com/mkudrin/photostore/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	prod := events.NewProducer(cfg.KafkaBrokers)

	esClient, err := search.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init: %v", err)
	}

	blobs, err := blobstore.New(ctx, cfg)
	if err != nil {
		log.Fatalf("blob store init: %v", err)
	}

	rp := repo.New(gdb)
	authSvc := &service.AuthService{
		Repo:       rp,
		Secret:     cfg.JWTSecret,
		AccessTTL:  token.ParseTTL(cfg.AccessTTL),
		RefreshTTL: token.ParseTTL(cfg.RefreshTTL),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth:     &handlers.AuthHandler{Svc: authSvc, Producer: prod},
		Photo:    &handlers.PhotoHandler{DB: gdb, Producer: prod, Blobs: blobs},
		Category: &handlers.CategoryHandler{DB: gdb},
		Cart:     &handlers.CartHandler{DB: gdb},
		Checkout: &handlers.CheckoutHandler{
			DB:          gdb,
			Fulfillment: fulfillment.NewClient(cfg.FulfillmentURL, cfg.FulfillmentAPIKey),
			Producer:    prod,
		},
		Search:      &handlers.SearchHandler{ES: esClient, Index: "photos"},
		AuthMW:      mwauth.New(cfg.JWTSecret),
		AuthLimiter: ratelimit.NewPerKey(cfg.AuthRatePerMinute),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
