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

	"github.com/Skotchmaster/store_api/internal/config"
	"github.com/Skotchmaster/store_api/internal/events"
	"github.com/Skotchmaster/store_api/internal/handlers"
	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/mail"
	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/store_api/internal/middleware/logging"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/search"
	"github.com/Skotchmaster/store_api/internal/service"
	"github.com/Skotchmaster/store_api/internal/tokens"
	httpserver "github.com/Skotchmaster/store_api/internal/transport/http"
	"github.com/Skotchmaster/store_api/pkg/db"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Category{},
		&models.Topic{},
		&models.Brand{},
		&models.Series{},
		&models.Product{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	if cfg.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET is required")
	}
	codec := tokens.NewCodec([]byte(cfg.JWT_SECRET), cfg.AccessTTL, cfg.RefreshTTL, cfg.VerifyTTL)

	var producer *events.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{cfg.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var index *search.Index
	if cfg.ES_URL != "" {
		esClient, err := search.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		index = search.NewIndex(esClient, "product")
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	mailer, err := mail.NewClient(cfg.SMTP_URL, cfg.MAIL_NAME, cfg.MAIL_ADDRESS, false)
	if err != nil {
		log.Fatalf("smtp init error: %v", err)
	}
	if !mailer.IsEnabled() {
		logger.Warn("SMTP_URL not set, outgoing mail disabled")
	}

	store := &repo.GormRepo{DB: database}
	authSvc := &service.AuthService{
		Repo:     store,
		Codec:    codec,
		Mailer:   mailer,
		Producer: producer,
		BaseURL:  cfg.BASE_URL,
	}
	catalogSvc := &service.CatalogService{
		Repo:     store,
		Producer: producer,
		Index:    index,
	}
	guard := &mwauth.Guard{Codec: codec, Repo: store}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Guard:           guard,
		AuthHandler:     &handlers.AuthHandler{Svc: authSvc},
		AdminHandler:    &handlers.AdminHandler{Svc: authSvc},
		CategoryHandler: &handlers.CategoryHandler{Svc: catalogSvc},
		TopicHandler:    &handlers.TopicHandler{Svc: catalogSvc},
		BrandHandler:    &handlers.BrandHandler{Svc: catalogSvc},
		SeriesHandler:   &handlers.SeriesHandler{Svc: catalogSvc},
		ProductHandler:  &handlers.ProductHandler{Svc: catalogSvc},
		SearchHandler:   &handlers.SearchHandler{Index: index},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.APP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
