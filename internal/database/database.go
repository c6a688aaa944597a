package database

import (
	"fmt"

	"github.com/courtpay/apportionment-api/internal/database/migrations"
	"github.com/courtpay/apportionment-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := migrations.AddLedgerIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Auto-migrate other schemas
	if err := db.AutoMigrate(&types.StagedPaymentFee{}); err != nil {
		return nil, err
	}

	return db, nil
}
