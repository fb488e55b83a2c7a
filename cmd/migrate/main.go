package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsRoot = "migrations"

// Two migration trees live under the root: control/ holds the control-plane
// schema (tenants, users), tenant/ holds the per-tenant schema that the
// fleet applies to every active partition.
func main() {
	var (
		migrationsRoot string
		target         string
		logLevel       string
	)

	flag.StringVar(&migrationsRoot, "path", "", "Path to migrations root (default: ./migrations)")
	flag.StringVar(&target, "target", "control", "Migration target: control or tenant")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if target != "control" && target != "tenant" {
		log.Fatal("Invalid target, expected control or tenant", zap.String("target", target))
	}

	if migrationsRoot == "" {
		migrationsRoot = defaultMigrationsRoot
	}
	migrationsPath, err := filepath.Abs(filepath.Join(migrationsRoot, target))
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("target", target),
		zap.String("migrations_path", migrationsPath),
	)

	// create and list work on files alone
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		migrations, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, m := range migrations {
			fmt.Println(m)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if target == "tenant" {
		runTenant(log, cfg, migrationsPath, command, args)
		return
	}
	runControl(log, cfg, migrationsPath, command, args)
}

func runControl(log *zap.Logger, cfg *config.Config, migrationsPath, command string, args []string) {
	m, err := migration.NewFromURL(cfg.ControlDB.DSN(), migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, perr := stepsArg(args)
		if perr != nil {
			log.Fatal("Invalid steps argument", zap.Error(perr))
		}
		err = m.Steps(n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to get version", zap.Error(verr))
		}
		log.Info("Current version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		v, perr := strconv.Atoi(args[1])
		if perr != nil {
			log.Fatal("Invalid version", zap.Error(perr))
		}
		err = m.Force(v)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
}

func runTenant(log *zap.Logger, cfg *config.Config, migrationsPath, command string, args []string) {
	fleet := migration.NewFleet(cfg.ControlDB.DSN(), migrationsPath, log)
	ctx := context.Background()

	var err error
	switch command {
	case "up":
		err = fleet.Up(ctx)
	case "steps":
		n, perr := stepsArg(args)
		if perr != nil {
			log.Fatal("Invalid steps argument", zap.Error(perr))
		}
		err = fleet.Steps(ctx, n)
	default:
		log.Fatal("Tenant target supports up, steps, create and list", zap.String("command", command))
	}

	if err != nil {
		log.Fatal("Tenant fleet migration failed", zap.Error(err))
	}
}

func stepsArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("steps count required")
	}
	return strconv.Atoi(args[1])
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command> [args]

Commands:
  up                     Apply all pending migrations
  down                   Roll back all migrations (control target only)
  steps <n>              Apply n migrations (negative rolls back)
  version                Show current version (control target only)
  force <version>        Set version without running migrations
  create <name> [desc]   Create a new migration pair
  list                   List migrations

Flags:
  -path <dir>            Migrations root directory (default: ./migrations)
  -target <name>         control (default) or tenant
  -log-level <level>     debug, info, warn, error`)
}
