package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/vajra/internal/config"
	"github.com/example/vajra/internal/database"
	"github.com/example/vajra/internal/repository"
	"github.com/example/vajra/internal/routes"
	"github.com/example/vajra/internal/services"
	"github.com/example/vajra/internal/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.AppEnv)
	defer func() { _ = logger.Sync() }()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	gateway := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookKey)
	if cfg.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, payment sessions will fail")
	}
	var webhooks services.WebhookVerifier
	if cfg.StripeWebhookKey != "" {
		webhooks = gateway
	}

	var mailer services.EmailSender = services.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		smtpSender, err := services.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			logger.Fatal("smtp init failed", zap.Error(err))
		}
		mailer = smtpSender
	}

	app := routes.NewApp(cfg, routes.Dependencies{
		Store:    store,
		Gateway:  gateway,
		Webhooks: webhooks,
		Mailer:   mailer,
		Alerter:  services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, logger),
		Logger:   logger,
	})

	go func() {
		logger.Info("starting server", zap.String("port", cfg.AppPort), zap.String("store", cfg.StoreDriver))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("fiber.Listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	app.Orders.Wait()
}

func openStore(cfg *config.Config, logger *zap.Logger) (repository.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL, logger, !cfg.IsProduction())
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewGormStore(db), closeFn, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil

	default:
		ctx := context.Background()
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewMongoStore(client.Database(cfg.MongoDatabase).Collection(repository.UsersCollection))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return store, closeFn, nil
	}
}
