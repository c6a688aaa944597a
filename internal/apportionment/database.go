package apportionment

import (
	"fmt"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// CreateLedgerEntry persists a single ledger entry. Entries are append-only;
// there is no update or delete path.
func (d *Database) CreateLedgerEntry(entry *LedgerEntry) error {
	return d.db.Create(entry).Error
}

// CreateLedgerEntries persists a full run's ledger in one transaction,
// preserving list order. The last element carries the surplus/shortfall
// annotation, so order matters to readers.
func (d *Database) CreateLedgerEntries(entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return fmt.Errorf("failed to save ledger entry %s: %w", entries[i].ApportionID, err)
			}
		}
		return nil
	})
}

// GetLedgerEntry retrieves one ledger entry by its apportion ID.
func (d *Database) GetLedgerEntry(apportionID string) (*LedgerEntry, error) {
	var entry LedgerEntry
	if err := d.db.Where("apportion_id = ?", apportionID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetLedgerForCase retrieves every ledger entry for a case in creation order.
func (d *Database) GetLedgerForCase(ccdCaseNumber string) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if err := d.db.Where("ccd_case_number = ?", ccdCaseNumber).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch ledger for case: %w", err)
	}
	return entries, nil
}

// GetLedgerForFee retrieves the allocation history of a single fee.
func (d *Database) GetLedgerForFee(feeID string) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if err := d.db.Where("fee_id = ?", feeID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch ledger for fee: %w", err)
	}
	return entries, nil
}
