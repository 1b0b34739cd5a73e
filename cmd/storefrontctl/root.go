package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/printcraft/storefront/internal/infrastructure/config"
	mongodb "github.com/printcraft/storefront/internal/infrastructure/db/mongo"
	"github.com/printcraft/storefront/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Administrative commands for the storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateAdminCmd(), newEnsureIndexesCmd())
	return root
}

// env is the configuration and database handle shared by every command.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *mongo.Database
}

// withEnv loads configuration, connects to MongoDB and runs fn. The
// connection is closed once fn returns.
func withEnv(ctx context.Context, fn func(ctx context.Context, e env) error) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "storefrontctl"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	return fn(ctx, env{cfg: cfg, log: log, db: db})
}
