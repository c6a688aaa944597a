package aggregation

import (
	"fmt"

	"github.com/courtpay/apportionment-api/internal/types"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// CreateStagedRows loads a batch of staged rows, typically the output of the
// upstream ETL.
func (d *Database) CreateStagedRows(rows []types.StagedPaymentFee) error {
	if len(rows) == 0 {
		return nil
	}
	return d.db.Create(&rows).Error
}

// GetRowsForCase retrieves all staged rows for a single case in insertion order.
func (d *Database) GetRowsForCase(ccdCaseNumber string) ([]types.StagedPaymentFee, error) {
	var rows []types.StagedPaymentFee
	if err := d.db.Where("ccd_case_number = ?", ccdCaseNumber).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch staged rows: %w", err)
	}
	return rows, nil
}

// GetDistinctCaseNumbers returns every case number present in the staging
// store, for the historical replay job.
func (d *Database) GetDistinctCaseNumbers() ([]string, error) {
	var caseNumbers []string
	if err := d.db.Model(&types.StagedPaymentFee{}).
		Where("ccd_case_number <> ''").
		Distinct("ccd_case_number").
		Order("ccd_case_number ASC").
		Pluck("ccd_case_number", &caseNumbers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch distinct case numbers: %w", err)
	}
	return caseNumbers, nil
}

// AggregateCase builds the aggregate view for one case straight from the
// staging store. Returns nil when the case has no staged rows.
func (d *Database) AggregateCase(ccdCaseNumber string) (*types.CaseAggregate, error) {
	rows, err := d.GetRowsForCase(ccdCaseNumber)
	if err != nil {
		return nil, err
	}

	aggregates := BuildAggregates(rows)
	if len(aggregates) == 0 {
		return nil, nil
	}
	return &aggregates[0], nil
}
