package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/config"
)

// Connect opens a Postgres connection pool, verifies it and runs pending migrations.
func Connect(conf config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s",
		conf.Database.Username, conf.Database.Password, conf.Database.Addr, conf.Database.Database)

	// Open the connection pool with the pgx driver.
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error in sql.Open call: %w", err)
	}

	// Pool limits.
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Verify the connection.
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error in db.Ping call: %w", err)
	}

	// Run migrations.
	if err := migrateUp(dsn); err != nil {
		return nil, fmt.Errorf("error in migrateUp call: %w", err)
	}

	return db, nil
}

// migrateUp applies all pending migrations from the migrations directory.
func migrateUp(dsn string) error {
	// The migrate pgx driver registers itself under the pgx5 scheme.
	migrator, err := migrate.New("file://migrations", "pgx5"+dsn[len("postgres"):])
	if err != nil {
		return fmt.Errorf("error in migrate.New call: %w", err)
	}

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error in migrator.Up call: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("database schema already up to date")
	} else {
		slog.Info("database migrations applied")
	}

	return nil
}
