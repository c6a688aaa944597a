package apportionment_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/courtpay/apportionment-api/internal/aggregation"
	"github.com/courtpay/apportionment-api/internal/apportionment"
	"github.com/courtpay/apportionment-api/internal/database/migrations"
	"github.com/courtpay/apportionment-api/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migrations.AddLedgerIndexes(db))
	require.NoError(t, db.AutoMigrate(&types.StagedPaymentFee{}))

	return db
}

func stagedRow(ccd, feeID, paymentID string, net, paid int64, feeDate, payDate time.Time) types.StagedPaymentFee {
	return types.StagedPaymentFee{
		CcdCaseNumber:      ccd,
		GroupReference:     "2024-" + ccd,
		GroupDateCreated:   feeDate,
		FeeID:              feeID,
		FeeCode:            "FEE0002",
		FeeAmount:          dec(net),
		Volume:             1,
		CalculatedAmount:   dec(net),
		NetAmount:          decimal.NewNullDecimal(dec(net)),
		FeeDateCreated:     feeDate,
		PaymentID:          paymentID,
		PaymentAmount:      dec(paid),
		PaymentReference:   "RC-" + paymentID,
		PaymentStatus:      "success",
		PaymentChannel:     "online",
		PaymentMethod:      "card",
		PaymentProvider:    "gov pay",
		PaymentDateCreated: payDate,
	}
}

func TestApportionCase_PersistsLedgerInOrder(t *testing.T) {
	db := newTestDB(t)
	staging := aggregation.NewDatabase(db)

	rows := []types.StagedPaymentFee{
		stagedRow("9000000000000001", "F1", "P1", 100, 50, day(1), day(2)),
		stagedRow("9000000000000001", "F1", "P2", 100, 20, day(1), day(3)),
		stagedRow("9000000000000001", "F1", "P3", 100, 100, day(1), day(4)),
	}
	require.NoError(t, staging.CreateStagedRows(rows))

	service := apportionment.NewService(db, goLive)
	resp, err := service.ApportionCase("9000000000000001")
	require.NoError(t, err)

	assert.Equal(t, 3, resp.EntriesCreated)
	assert.True(t, resp.IsSurplus)
	assert.True(t, resp.Remaining.Equal(dec(70)))
	require.Len(t, resp.Fees, 1)
	assert.True(t, resp.Fees[0].FullyApportioned)

	entries, err := service.GetLedger("9000000000000001")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Persisted in list order: the last entry carries the annotation
	assert.Equal(t, "P1", entries[0].PaymentID)
	assert.Equal(t, "P2", entries[1].PaymentID)
	assert.Equal(t, "P3", entries[2].PaymentID)
	assert.True(t, entries[2].CallSurplusAmount.Valid)
	assert.True(t, entries[2].CallSurplusAmount.Decimal.Equal(dec(70)))
	assert.False(t, entries[0].CallSurplusAmount.Valid)
	assert.Equal(t, apportionment.CreatedBySystem, entries[2].CreatedBy)
}

func TestApportionCase_UnknownCase(t *testing.T) {
	db := newTestDB(t)

	service := apportionment.NewService(db, goLive)
	_, err := service.ApportionCase("0000000000000000")
	assert.ErrorIs(t, err, apportionment.ErrCaseNotFound)
}

func TestApportionCase_NothingEligibleWritesNoLedger(t *testing.T) {
	db := newTestDB(t)
	staging := aggregation.NewDatabase(db)

	legacy := goLive.AddDate(-2, 0, 0)
	require.NoError(t, staging.CreateStagedRows([]types.StagedPaymentFee{
		stagedRow("9000000000000002", "F1", "P1", 100, 100, legacy, legacy.AddDate(0, 0, 1)),
	}))

	service := apportionment.NewService(db, goLive)
	resp, err := service.ApportionCase("9000000000000002")
	require.NoError(t, err)

	assert.Equal(t, 0, resp.EntriesCreated)
	assert.False(t, resp.IsSurplus)
	assert.False(t, resp.IsShortfall)

	entries, err := service.GetLedger("9000000000000002")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApportionAggregate_CallerAssembledCase(t *testing.T) {
	db := newTestDB(t)

	agg := makeCase(
		[]types.Fee{makeFee("F1", 100, day(1))},
		[]types.Payment{makePayment("P1", 80, day(2))},
	)

	service := apportionment.NewService(db, goLive)
	resp, err := service.ApportionAggregate(agg)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.EntriesCreated)
	assert.True(t, resp.IsShortfall)
	assert.True(t, resp.Remaining.Equal(dec(-20)))

	entries, err := service.GetDB().GetLedgerForCase(agg.CcdCaseNumber)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].CallShortfallAmount.Valid)
}

func TestGetCase_ReturnsAggregatedView(t *testing.T) {
	db := newTestDB(t)
	staging := aggregation.NewDatabase(db)

	require.NoError(t, staging.CreateStagedRows([]types.StagedPaymentFee{
		stagedRow("9000000000000003", "F2", "P2", 40, 40, day(5), day(6)),
		stagedRow("9000000000000003", "F1", "P1", 100, 50, day(1), day(2)),
	}))

	service := apportionment.NewService(db, goLive)
	resp, err := service.GetCase("9000000000000003")
	require.NoError(t, err)

	require.Len(t, resp.Fees, 2)
	require.Len(t, resp.Payments, 2)
	// Sorted ascending by creation date regardless of row order
	assert.Equal(t, "F1", resp.Fees[0].FeeID)
	assert.Equal(t, "F2", resp.Fees[1].FeeID)
	assert.Equal(t, "P1", resp.Payments[0].PaymentID)
}

func TestProcessor_ReplaysAllStagedCases(t *testing.T) {
	db := newTestDB(t)
	staging := aggregation.NewDatabase(db)

	require.NoError(t, staging.CreateStagedRows([]types.StagedPaymentFee{
		// Case A: surplus
		stagedRow("9000000000000010", "F1", "P1", 100, 150, day(1), day(2)),
		// Case B: shortfall
		stagedRow("9000000000000011", "F1", "P1", 100, 60, day(1), day(2)),
		// Case C: exact
		stagedRow("9000000000000012", "F1", "P1", 100, 100, day(1), day(2)),
	}))

	service := apportionment.NewService(db, goLive)
	processor := apportionment.NewProcessor(service)

	summary, err := processor.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.CasesProcessed)
	assert.Equal(t, 0, summary.CasesFailed)
	assert.Equal(t, 3, summary.EntriesCreated)
	assert.Equal(t, 1, summary.SurplusCases)
	assert.Equal(t, 1, summary.ShortfallCases)
}

func TestProcessor_CancelledContextStopsBetweenCases(t *testing.T) {
	db := newTestDB(t)
	staging := aggregation.NewDatabase(db)

	require.NoError(t, staging.CreateStagedRows([]types.StagedPaymentFee{
		stagedRow("9000000000000020", "F1", "P1", 100, 100, day(1), day(2)),
	}))

	service := apportionment.NewService(db, goLive)
	processor := apportionment.NewProcessor(service)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := processor.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
