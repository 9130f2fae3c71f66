package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool sizes a *sql.DB behind gorm.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// MySQLPool suits a shared MySQL session store.
var MySQLPool = Pool{MaxOpen: 30, MaxIdle: 10, MaxLifetime: 30 * time.Minute, MaxIdleTime: 10 * time.Minute}

// SQLitePool pins a single connection that never expires: an in-memory
// database lives exactly as long as its connection, and one connection also
// serialises every transaction.
var SQLitePool = Pool{MaxOpen: 1, MaxIdle: 1}

func ParseLogLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func OpenSQLite(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(sqlite.Open(dsn), level, SQLitePool)
}

func OpenMySQL(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), level, MySQLPool)
}

func OpenGormWithDialector(dial gorm.Dialector, level logger.LogLevel, pool Pool) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	slog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}

// ResetSchema drops and recreates the given tables. A ledger session starts
// empty on every boot, whichever store backs it.
func ResetSchema(db *gorm.DB, models ...any) error {
	m := db.Migrator()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
