package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kasuganosora/bossarena/config"
	dbmysql "github.com/kasuganosora/bossarena/db/mysql"
	dbsqlite "github.com/kasuganosora/bossarena/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeNone   = "none"
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// ErrDisabled is returned by Open when the journal is switched off.
var ErrDisabled = errors.New("db: disabled")

// Open returns a *gorm.DB for the configured database mode. Each memory
// database is private to its caller.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeNone, "":
		return nil, ErrDisabled
	case ModeMemory:
		return dbsqlite.OpenMemory(uuid.NewString())
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
