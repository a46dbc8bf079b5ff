// Package testutil opens migrated goal databases for repo and aggregate tests.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/careercoach-backend/internal/data/db"
	"github.com/yungbote/careercoach-backend/internal/platform/logger"
)

// PostgresDSNEnv switches DB from per-test SQLite files to one shared Postgres.
const PostgresDSNEnv = "TEST_POSTGRES_DSN"

var (
	sharedLogger = sync.OnceValues(func() (*logger.Logger, error) { return logger.New("test") })
	sharedPG     struct {
		once sync.Once
		db   *gorm.DB
		err  error
	}
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := sharedLogger()
	if err != nil {
		tb.Fatalf("init test logger: %v", err)
	}
	return log
}

// DB returns a migrated database with the goal indexes in place.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := os.Getenv(PostgresDSNEnv); dsn != "" {
		return postgresDB(tb, dsn)
	}
	return SQLite(tb)
}

func quietConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}
}

func migrate(db *gorm.DB) error {
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		return err
	}
	return dbpkg.EnsureGoalIndexes(db)
}

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pg := &sharedPG
	pg.once.Do(func() {
		pg.db, pg.err = gorm.Open(postgres.Open(dsn), quietConfig())
		if pg.err == nil {
			pg.err = migrate(pg.db)
		}
	})
	if pg.err != nil {
		tb.Fatalf("init postgres test db: %v", pg.err)
	}
	return pg.db
}

// SQLite opens a fresh single-connection database under tb.TempDir.
func SQLite(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(dbpkg.SQLiteDSN(filepath.Join(tb.TempDir(), "goals.db"))), quietConfig())
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := migrate(db); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// Tx begins a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}
