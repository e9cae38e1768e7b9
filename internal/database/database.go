package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/drkocher/foundryerp/internal/config"
	"github.com/drkocher/foundryerp/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps one gorm.DB over a single SQLite file. Each logical store
// (products, orders, deliveries, production) is its own independent file;
// there is no shared transaction boundary between them.
type Store struct {
	*gorm.DB
}

// Open opens (or creates) a single SQLite store file.
func Open(path string, silent bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}

	logLevel := logger.Info
	if silent {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store unavailable at %s: %w", path, err)
	}

	// SQLite allows one writer; a single connection also keeps
	// sequential writes strictly ordered.
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Store{DB: db}, nil
}

// Close shuts down the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate triggers GORM schema synchronization
func (s *Store) AutoMigrate(entities ...interface{}) error {
	return s.DB.AutoMigrate(entities...)
}

// Stores holds the four independent stores of the application
type Stores struct {
	Products   *Store
	Orders     *Store
	Deliveries *Store
	Production *Store
}

// OpenAll opens every store, synchronizes schemas and backfills legacy rows.
// Existing data files from older versions are picked up as-is: AutoMigrate
// only adds missing tables and columns, it never drops anything.
func OpenAll(cfg config.StoreConfig) (*Stores, error) {
	stores := &Stores{}

	var err error
	if stores.Products, err = Open(cfg.Products, cfg.Silent); err != nil {
		return nil, err
	}
	if stores.Orders, err = Open(cfg.Orders, cfg.Silent); err != nil {
		stores.Close()
		return nil, err
	}
	if stores.Deliveries, err = Open(cfg.Deliveries, cfg.Silent); err != nil {
		stores.Close()
		return nil, err
	}
	if stores.Production, err = Open(cfg.Production, cfg.Silent); err != nil {
		stores.Close()
		return nil, err
	}

	if err := stores.Migrate(); err != nil {
		stores.Close()
		return nil, err
	}
	return stores, nil
}

// Migrate synchronizes the schema of every store and backfills empty
// legacy date columns with the current timestamp.
func (s *Stores) Migrate() error {
	log.Println("🚀 Synchronizing store schemas...")

	if err := s.Products.AutoMigrate(
		&models.Product{},
		&models.PriceInterval{},
		&models.User{},
		&models.LabelPreset{},
	); err != nil {
		return fmt.Errorf("products store migration failed: %w", err)
	}

	if err := s.Orders.AutoMigrate(
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		return fmt.Errorf("orders store migration failed: %w", err)
	}

	if err := s.Deliveries.AutoMigrate(
		&models.DeliveryNote{},
		&models.DeliveryLine{},
	); err != nil {
		return fmt.Errorf("deliveries store migration failed: %w", err)
	}

	if err := s.Production.AutoMigrate(
		&models.ShiftLog{},
		&models.DowntimeEntry{},
		&models.MachineJob{},
		&models.ProductNorm{},
		&models.ProductTooling{},
		&models.Operator{},
	); err != nil {
		return fmt.Errorf("production store migration failed: %w", err)
	}

	return s.backfillDates()
}

// backfillDates fills date columns left empty by earlier versions.
func (s *Stores) backfillDates() error {
	now := time.Now().Format(time.DateTime)

	steps := []struct {
		store *Store
		sql   string
		args  []interface{}
	}{
		{s.Deliveries, "UPDATE delivery_notes SET created_at = ? WHERE created_at = '' OR created_at IS NULL", []interface{}{now}},
		{s.Deliveries, "UPDATE delivery_notes SET shipping_date = created_at WHERE shipping_date = '' OR shipping_date IS NULL", nil},
		{s.Production, "UPDATE shift_logs SET created_at = ? WHERE created_at = '' OR created_at IS NULL", []interface{}{now}},
	}
	for _, step := range steps {
		if err := step.store.Exec(step.sql, step.args...).Error; err != nil {
			return fmt.Errorf("date backfill failed: %w", err)
		}
	}
	return nil
}

// Close closes every opened store
func (s *Stores) Close() {
	for _, store := range []*Store{s.Products, s.Orders, s.Deliveries, s.Production} {
		if store != nil {
			_ = store.Close()
		}
	}
}
