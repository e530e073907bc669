package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names. All of them open a local SQLite file.
const (
	DriverSQLite3 = "sqlite3" // mattn/go-sqlite3, cgo
	DriverSQLite  = "sqlite"  // modernc.org/sqlite, pure Go
	DriverLibSQL  = "libsql"  // libsql-client-go, local file: DSN
)

// InitDB opens the local database, applies connection settings and runs the
// goose migrations found in migrationsDir. The returned teardown closes the
// database.
func InitDB(driver, dsn, migrationsDir string) (*sql.DB, func(), error) {
	if driver == "" {
		driver = DriverSQLite3
	}
	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Initializing local SQLite database", "driver", driver, "dsn", dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local database: %w", err)
	}
	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	// A single connection serializes every transaction in the process. It also
	// keeps ":memory:" databases alive, since each new connection would get a
	// fresh empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := configure(db, isMemory(dsn)); err != nil {
		teardown()
		return nil, nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if err := migrate(db, migrationsDir); err != nil {
		teardown()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("Database initialized successfully")
	return db, teardown, nil
}

func normalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case DriverSQLite3:
		// Writers take the write lock at BEGIN, so a second process on the
		// same file waits on busy_timeout instead of failing the upgrade.
		if isMemory(dsn) || strings.Contains(dsn, "_txlock=") {
			return dsn, nil
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "_txlock=immediate", nil
	case DriverSQLite:
		return dsn, nil
	case DriverLibSQL:
		// Only local files; a remote primary would be server-side persistence.
		if strings.Contains(dsn, "://") {
			return "", fmt.Errorf("libsql driver only supports local file databases, got %q", dsn)
		}
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func configure(db *sql.DB, memory bool) error {
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		log.Error("Error setting busy timeout", "error", err)
		return err
	}
	if memory {
		return nil
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Error("Error enabling WAL mode", "error", err)
		return err
	}
	return nil
}

func migrate(db *sql.DB, dir string) error {
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return err
	}
	log.Info("Database schema is up to date", "version", version)
	return nil
}

// gooseLogger routes goose output through the application logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Debugf(strings.TrimSpace(format), v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatalf(strings.TrimSpace(format), v...)
}
