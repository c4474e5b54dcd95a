package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/MMMDolphin/ImunofanWebsite/internal/app"
	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/auth"
	"github.com/MMMDolphin/ImunofanWebsite/internal/storage/postgres"
)

func main() {
	var (
		databaseURL   string
		adminUsername string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminUsername, "admin-username", "admin", "admin account to seed")
	flag.StringVar(&adminPassword, "admin-password", "", "admin password (or IMUNOFAN_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("IMUNOFAN_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		adminPassword = "admin123"
		slog.Warn("seeding admin with the default password, set --admin-password for production")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminUsername, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminUsername, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	created, err := app.SeedProducts(ctx, postgres.NewProductRepository(pool))
	if err != nil {
		return errors.Wrap(err, "seed products")
	}
	if created > 0 {
		slog.Info("seeded products", slog.Int("count", created))
	} else {
		slog.Info("products already present, skipping")
	}

	authService := auth.NewService(
		postgres.NewAdminRepository(pool),
		postgres.NewSessionRepository(pool),
		auth.DefaultSessionTTL,
	)
	adminCreated, err := authService.SeedAdmin(ctx, adminUsername, adminPassword)
	if err != nil {
		return errors.Wrap(err, "seed admin")
	}
	if adminCreated {
		slog.Info("seeded admin account", slog.String("username", adminUsername))
	} else {
		slog.Info("admin account already present, skipping")
	}

	return nil
}
