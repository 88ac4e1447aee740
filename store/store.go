package store

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rasoilabs/rasoipos/models"
)

// Supported database drivers. SQLite is the embedded default; MySQL
// covers installations that point several terminals at one database.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// sqlitePragmas are applied right after the connection opens. WAL and
// the busy timeout keep the UI responsive while a sync round holds
// write transactions.
var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store owns the database handle and hands out repository bundles.
// There is no package-level connection; everything that needs the
// database receives a *Store or a *Repositories explicitly.
type Store struct {
	db *gorm.DB
}

// Open connects to the database, applies driver tuning and migrates
// the schema. An empty driver selects SQLite.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "rasoipos.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite || driver == "" {
		for _, pragma := range sqlitePragmas {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("apply %q: %w", pragma, err)
			}
		}
	}

	s := &Store{db: db}
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// AutoMigrate creates or updates every entity table plus the sync
// marker row table.
func (s *Store) AutoMigrate() error {
	err := s.db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.Table{},
		&models.Customer{},
		&models.CreditTransaction{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Tax{},
		&models.AdditionalCharge{},
		&models.Expense{},
		&models.PaymentSettings{},
		&models.RestaurantInfo{},
		&models.RestaurantSettings{},
		&models.SyncState{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for the few callers (status
// endpoints, tests) that need raw access.
func (s *Store) DB() *gorm.DB { return s.db }

// Repos returns the repository bundle bound to the store's connection.
func (s *Store) Repos() *Repositories { return newRepositories(s.db) }

// Transaction runs fn inside a single database transaction. The bundle
// passed to fn is bound to the transaction, so every repository call
// inside fn commits or rolls back together.
func (s *Store) Transaction(ctx context.Context, fn func(r *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
