package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TenantTarget is one tenant partition to migrate
type TenantTarget struct {
	Slug string
	DSN  string
}

// Fleet applies the tenant schema to every active tenant partition. The
// control plane holds one row per tenant with its connection string; each
// partition keeps its own schema_migrations table, so tenants provisioned at
// different times converge independently.
type Fleet struct {
	controlDSN     string
	migrationsPath string
	logger         *zap.Logger
}

// NewFleet creates a Fleet reading targets from the control database
func NewFleet(controlDSN, migrationsPath string, logger *zap.Logger) *Fleet {
	return &Fleet{
		controlDSN:     controlDSN,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

// Targets lists the active postgres tenant partitions. Tenants on other
// drivers (sqlite development partitions) are skipped.
func (f *Fleet) Targets(ctx context.Context) ([]TenantTarget, error) {
	db, err := sql.Open("postgres", f.controlDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open control database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT slug, db_dsn FROM tenants WHERE active = true AND db_driver = 'postgres' ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var targets []TenantTarget
	for rows.Next() {
		var t TenantTarget
		if err := rows.Scan(&t.Slug, &t.DSN); err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// Up migrates every active tenant partition to the latest version. A failing
// tenant does not stop the rest; all failures are reported together.
func (f *Fleet) Up(ctx context.Context) error {
	return f.each(ctx, func(m *Migrator) error { return m.Up() })
}

// Steps applies n migration steps to every active tenant partition
func (f *Fleet) Steps(ctx context.Context, n int) error {
	return f.each(ctx, func(m *Migrator) error { return m.Steps(n) })
}

func (f *Fleet) each(ctx context.Context, fn func(*Migrator) error) error {
	targets, err := f.Targets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		f.logger.Info("No active tenant partitions to migrate")
		return nil
	}

	var failed []error
	for _, target := range targets {
		log := f.logger.With(zap.String("tenant", target.Slug))

		m, err := NewFromURL(target.DSN, f.migrationsPath, log)
		if err != nil {
			log.Error("Failed to open tenant partition", zap.Error(err))
			failed = append(failed, fmt.Errorf("tenant %s: %w", target.Slug, err))
			continue
		}

		if err := fn(m); err != nil {
			log.Error("Tenant migration failed", zap.Error(err))
			failed = append(failed, fmt.Errorf("tenant %s: %w", target.Slug, err))
		}
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}

	f.logger.Info("Tenant fleet migration finished",
		zap.Int("targets", len(targets)),
		zap.Int("failed", len(failed)),
	)
	return errors.Join(failed...)
}
