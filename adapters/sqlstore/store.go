// Package sqlstore persists validation runs through sqlx on sqlite3 or postgres.
package sqlstore

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"fhtsuite/internal/errors"
	"fhtsuite/internal/migration"
)

// Open connects to driver ("sqlite3" or "postgres") at url and migrates the schema
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	if driver == "" {
		driver = DriverFor(url)
	}

	db, err := sqlx.Connect(driver, url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if driver == "sqlite3" {
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.DatabaseError("failed to enable foreign keys", err)
		}
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// DriverFor guesses the driver from a DSN: postgres URLs and key=value DSNs use postgres
func DriverFor(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") || strings.Contains(url, "host=") {
		return "postgres"
	}
	return "sqlite3"
}
