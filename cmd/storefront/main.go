// Command storefront runs the storefront HTTP API.
//
//	@title						Storefront API
//	@version					1.0
//	@description				Print-on-demand storefront: catalogue, checkout, artworks and newsletter.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/printcraft/storefront/internal/api"
	"github.com/printcraft/storefront/internal/api/handler"
	"github.com/printcraft/storefront/internal/core/ports"
	"github.com/printcraft/storefront/internal/core/service"
	"github.com/printcraft/storefront/internal/infrastructure/cloudinary"
	"github.com/printcraft/storefront/internal/infrastructure/config"
	mongodb "github.com/printcraft/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/printcraft/storefront/internal/infrastructure/db/redis"
	"github.com/printcraft/storefront/internal/infrastructure/mail"
	"github.com/printcraft/storefront/internal/infrastructure/payment"
	"github.com/printcraft/storefront/internal/infrastructure/queue"
	"github.com/printcraft/storefront/internal/infrastructure/receipt"
	"github.com/printcraft/storefront/internal/infrastructure/storage"
	"github.com/printcraft/storefront/pkg/logger"
)

const (
	shopName        = "Storefront"
	shutdownTimeout = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	disk, err := storage.NewLocalDisk(cfg.UploadDir, log)
	if err != nil {
		return err
	}

	// --- Background work ---
	dispatcher := queue.NewDispatcher(cfg.Workers, log)
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Adapters ---
	var mediaStore ports.MediaStore
	if cfg.Cloudinary.Enabled() {
		store, err := cloudinary.NewStore(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			return err
		}
		mediaStore = store
	} else {
		log.Warn().Msg("cloudinary not configured, uploads stay on local disk")
	}

	var mailer ports.Mailer = mail.NewLogMailer(log)
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	} else {
		log.Warn().Msg("smtp not configured, emails are logged only")
	}

	if cfg.Razorpay.KeyID == "" {
		log.Warn().Msg("razorpay not configured, online checkout is disabled")
	}

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)
	orders := mongodb.NewOrderRepository(db)
	artworks := mongodb.NewArtworkRepository(db)
	subscribers := mongodb.NewSubscriberRepository(db)

	// --- Services ---
	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	media := service.NewMediaPipeline(disk, mediaStore, dispatcher, log.With().Str("component", "media").Logger())

	router := api.NewRouter(api.Dependencies{
		Logger:       log,
		Verbose:      cfg.IsDevelopment(),
		ClientURL:    cfg.ClientURL,
		UploadDir:    disk.Dir(),
		SecureCookie: cfg.Auth.CookieSecure,
		Tokens:       tokens,
		Users:        users,
		Auth:         service.NewAuthService(users, tokens, log),
		Products:     service.NewProductService(products, media, log),
		Orders: service.NewOrderService(service.OrderDeps{
			Orders:   orders,
			Products: products,
			Users:    users,
			Gateway:  payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
			Lock:     redisdb.NewPaymentLock(redisClient),
			Queue:    dispatcher,
			Mailer:   mailer,
			Receipts: receipt.NewRenderer(shopName),
		}, log),
		Accounts:   service.NewUserService(users, log),
		Artworks:   service.NewArtworkService(artworks, media, log),
		Newsletter: service.NewNewsletterService(subscribers, mailer, dispatcher, cfg.ClientURL, log),
		Analytics:  service.NewAnalyticsService(mongodb.NewAnalyticsRepository(db), products, users, subscribers),
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, redisClient) },
		},
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("storefront API listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("background tasks did not drain")
	}
	log.Info().Msg("storefront stopped")
	return nil
}
