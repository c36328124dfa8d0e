package database

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record - one persisted ledger document
type Record struct {
	Key       string `gorm:"column:record_key;primaryKey;size:64"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (Record) TableName() string { return "ledger_records" }

// Dialector picks the gorm driver from the DSN shape:
// postgres:// or key=value lists go to postgres, sqlite: / file: / *.db to
// sqlite, everything else to MySQL.
func Dialector(dsn string) gorm.Dialector {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"),
		strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return postgres.Open(dsn)
	case strings.HasPrefix(lower, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), lower == ":memory:":
		return sqlite.Open(dsn)
	default:
		return mysql.Open(dsn)
	}
}

// Connect opens the database (waiting for it to come up) and syncs the schema.
func Connect(dsn string, log *slog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database: DB_DSN is empty")
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(Dialector(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Warn("failed to connect to database, retrying", slog.Int("attempt", i+1), slog.Any("error", err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, err
	}
	log.Info("connected to database")

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	log.Info("database schema synced")
	return db, nil
}
