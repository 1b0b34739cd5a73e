package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/printcraft/storefront/internal/core/service"
	mongodb "github.com/printcraft/storefront/internal/infrastructure/db/mongo"
)

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:     "create-admin",
		Short:   "Create an administrator account",
		Example: `  storefrontctl create-admin --name "Shop Owner" --email owner@example.com --password s3cret!`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e env) error {
				users := service.NewUserService(mongodb.NewUserRepository(e.db), e.log)
				admin, err := users.CreateAdmin(ctx, name, email, password)
				if err != nil {
					return err
				}
				e.log.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("admin created")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 6 characters)")
	for _, f := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes used by the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e env) error {
				if err := mongodb.EnsureIndexes(ctx, e.db); err != nil {
					return err
				}
				e.log.Info().Str("database", e.cfg.Mongo.Database).Msg("indexes ensured")
				return nil
			})
		},
	}
}
