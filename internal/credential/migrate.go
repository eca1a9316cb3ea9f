package credential

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver, required by golang-migrate

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/credential/migrations"
)

// runMigrations brings the principal_credentials table up to date. It uses
// golang-migrate's postgres advisory lock so concurrent ingestd instances
// starting up at once don't race each other applying the same migration.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return apperror.New(apperror.ConfigFatal, "credential_migrate_open", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "credential_schema_migrations",
	})
	if err != nil {
		return apperror.New(apperror.ConfigFatal, "credential_migrate_driver", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return apperror.New(apperror.ConfigFatal, "credential_migrate_source", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return apperror.New(apperror.ConfigFatal, "credential_migrate_instance", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.New(apperror.ConfigFatal, "credential_migrate_up", fmt.Errorf("apply migrations: %w", err))
	}
	return nil
}
