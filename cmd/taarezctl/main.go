// Command taarezctl runs migrations and manages accounts.
//
// Usage:
//
//	taarezctl [-config path] migrate up|down [-steps N]
//	taarezctl [-config path] seed
//	taarezctl [-config path] create-superuser -email admin@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taarez/taarez-backend/internal/admincli"
	"github.com/taarez/taarez-backend/internal/app"
	"github.com/taarez/taarez-backend/internal/config"
	"github.com/taarez/taarez-backend/internal/identity"
	"github.com/taarez/taarez-backend/internal/identity/jwt"
	"github.com/taarez/taarez-backend/internal/identity/password"
	identitypostgres "github.com/taarez/taarez-backend/internal/identity/postgres"
	"github.com/taarez/taarez-backend/internal/pkg/postgres"
)

var errUsage = errors.New("usage: taarezctl [-config path] migrate|seed|create-superuser [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "taarezctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("taarezctl", flag.ContinueOnError)
	configPath := global.String("config", config.PathFromEnv(""), "path to YAML config file")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(app.InitLogger(cfg.Log))

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "migrate":
		return runMigrate(cfg, rest)
	case "seed":
		return withUsers(ctx, cfg, func(users *identity.Service) error {
			created, err := admincli.Seed(ctx, users, admincli.DefaultSeedUsers, os.Stdout)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d account(s) created, password %q\n", created, admincli.SeedPassword)
			return nil
		})
	case "create-superuser":
		return runCreateSuperuser(ctx, cfg, rest)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func runMigrate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	steps := fs.Int("steps", 0, "number of migrations to apply (default: all up, one down)")
	if len(args) == 0 {
		return errors.New("migrate: direction required (up or down)")
	}
	direction := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch direction {
	case "up":
		return postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL, *steps)
	case "down":
		n := *steps
		if n <= 0 {
			n = 1
		}
		return postgres.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL, -n)
	default:
		return fmt.Errorf("migrate: unknown direction %q", direction)
	}
}

func runCreateSuperuser(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("create-superuser", flag.ContinueOnError)
	email := fs.String("email", "", "superuser email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("create-superuser: -email is required")
	}

	pw, err := admincli.PromptPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer admincli.Wipe(pw)

	if err := identity.CheckPassword(string(pw)); err != nil {
		return fmt.Errorf("create-superuser: %w", err)
	}

	return withUsers(ctx, cfg, func(users *identity.Service) error {
		_, err := admincli.CreateSuperuser(ctx, users, *email, pw, os.Stdout)
		return err
	})
}

// withUsers connects to the database and hands fn an identity service.
func withUsers(ctx context.Context, cfg *config.Config, fn func(*identity.Service) error) error {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    2,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
		ApplicationName: "taarezctl",
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	issuer, err := jwt.NewIssuer(jwt.Config{
		SecretKey:           cfg.JWT.SecretKey,
		Algorithm:           cfg.JWT.Algorithm,
		AccessTokenDuration: cfg.JWT.AccessTokenDuration,
	})
	if err != nil {
		return fmt.Errorf("create token issuer: %w", err)
	}

	users, err := identity.NewService(
		identitypostgres.NewRepository(db),
		password.NewHasher(cfg.Auth.BcryptCost),
		issuer,
	)
	if err != nil {
		return fmt.Errorf("create identity service: %w", err)
	}

	return fn(users)
}
