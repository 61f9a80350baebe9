package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/config"
	herdb "herald/internal/db"
	"herald/internal/models"
	"herald/pkg/db"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "heraldctl",
		Short:         "Operational utility for the herald API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newCreateAdminCommand())
	cmd.AddCommand(newPromoteCommand())
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func openORM(ctx context.Context) (*gorm.DB, config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, config.Config{}, err
	}
	orm, err := db.OpenORM(cfg.DBDSN)
	if err != nil {
		return nil, config.Config{}, err
	}
	return orm, cfg, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			pool, err := db.Open(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			return db.Migrate(ctx, pool)
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert baseline categories and the bootstrap admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			orm, cfg, err := openORM(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.CloseORM(orm) }()
			return herdb.Seed(ctx, orm, cfg.SeedAdminEmail, cfg.SeedAdminPass)
		},
	}
}

func newCreateAdminCommand() *cobra.Command {
	var (
		name     string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if !auth.ValidPassword(password) {
				return fmt.Errorf("password must be at least 8 characters with upper, lower, and digit")
			}
			orm, _, err := openORM(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.CloseORM(orm) }()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user := models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
			if err := orm.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newPromoteCommand() *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change a user's role by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			switch role {
			case models.RoleAdmin, models.RoleModerator, models.RoleEditor, models.RoleAuthor, models.RoleSubscriber, models.RoleUser:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			orm, _, err := openORM(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.CloseORM(orm) }()

			res := orm.WithContext(ctx).Model(&models.User{}).
				Where("email = ?", email).
				Update("role", role)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("no user with email %s", email)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %s to %s\n", email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the user")
	cmd.Flags().StringVar(&role, "role", "", "New role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
