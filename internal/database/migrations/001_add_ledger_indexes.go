package migrations

import (
	"github.com/courtpay/apportionment-api/internal/apportionment"
	"gorm.io/gorm"
)

// AddLedgerIndexes creates the apportionment ledger table and its indexes
func AddLedgerIndexes(db *gorm.DB) error {
	if err := db.AutoMigrate(&apportionment.LedgerEntry{}); err != nil {
		return err
	}

	// Raw SQL for index creation to have more control over index shape
	indexes := []string{
		// Index for case ledger lookups, the main read path
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_ccd_case_number
		 ON ledger_entries(ccd_case_number)`,

		// Index for per-fee allocation history
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_fee_id
		 ON ledger_entries(fee_id)`,

		// Index for per-payment allocation lookups
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_payment_id
		 ON ledger_entries(payment_id)`,

		// Index for time-based reporting queries
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_date_created
		 ON ledger_entries(date_created)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}

	return nil
}
