package database

import (
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/username/ledgerbook/backend/src/logger"
	_ "modernc.org/sqlite"
)

// DB is the shared database handle for the ledger store.
var DB *sql.DB

// InitDB opens the SQLite database file and configures it for single-writer
// use. Running balances are recomputed from transaction rows on read, so the
// schema stays append-friendly and WAL mode keeps reads cheap.
func InitDB(databasePath string) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", databasePath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		stdlog.Fatalf("failed to open ledger database at %s: %v", databasePath, err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		stdlog.Fatalf("failed to ping ledger database: %v", err)
	}
	DB = db
	logger.L.Info("Ledger database opened", "path", databasePath, "journal_mode", "WAL")
}

// RunMigrations applies any pending schema migrations from db/migrations.
func RunMigrations(databasePath string) {
	if DB == nil {
		stdlog.Fatal("database must be initialized before running migrations")
	}

	driver, err := sqlite.WithInstance(DB, &sqlite.Config{})
	if err != nil {
		stdlog.Fatalf("could not create sqlite migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsSourceURL(), databasePath, driver)
	if err != nil {
		stdlog.Fatalf("migration instance creation failed: %v", err)
	}

	err = m.Up()
	switch {
	case err == nil:
		logger.L.Info("Database migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		logger.L.Info("Database schema up to date")
	default:
		stdlog.Fatalf("failed to apply migrations: %v", err)
	}
}

func migrationsSourceURL() string {
	// Deployed containers mount the app at /app; everything else resolves
	// the migrations directory relative to the working directory.
	if os.Getenv("GO_ENV") == "PRO" {
		return "file:///app/db/migrations"
	}
	cwd, err := os.Getwd()
	if err != nil {
		stdlog.Fatalf("failed to get current working directory: %v", err)
	}
	return "file://" + filepath.ToSlash(filepath.Join(cwd, "db", "migrations"))
}
