package apportionment_test

import (
	"testing"

	"github.com/courtpay/apportionment-api/internal/apportionment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := apportionment.NewDatabase(db)

	entry := apportionment.LedgerEntry{
		ApportionID:            "APP_test-1",
		CcdCaseNumber:          "9000000000000030",
		FeeID:                  "F1",
		PaymentID:              "P1",
		FeeAmount:              dec(100),
		PaymentAmount:          dec(100),
		ApportionAmount:        dec(100),
		AllocatedAmount:        dec(100),
		CurrentApportionAmount: dec(100),
		FullyApportioned:       true,
		CreatedBy:              apportionment.CreatedBySystem,
		DateCreated:            day(2),
	}
	require.NoError(t, store.CreateLedgerEntry(&entry))

	got, err := store.GetLedgerEntry("APP_test-1")
	require.NoError(t, err)
	assert.Equal(t, "F1", got.FeeID)
	assert.True(t, got.ApportionAmount.Equal(dec(100)))
	assert.True(t, got.FullyApportioned)
	assert.False(t, got.CallSurplusAmount.Valid)
}

func TestLedgerStore_GetLedgerForFee(t *testing.T) {
	db := newTestDB(t)
	store := apportionment.NewDatabase(db)

	entries := []apportionment.LedgerEntry{
		{ApportionID: "APP_a", CcdCaseNumber: "9000000000000031", FeeID: "F1", PaymentID: "P1",
			ApportionAmount: dec(50), CurrentApportionAmount: dec(50), CreatedBy: apportionment.CreatedBySystem},
		{ApportionID: "APP_b", CcdCaseNumber: "9000000000000031", FeeID: "F1", PaymentID: "P2",
			ApportionAmount: dec(50), CurrentApportionAmount: dec(100), CreatedBy: apportionment.CreatedBySystem},
		{ApportionID: "APP_c", CcdCaseNumber: "9000000000000031", FeeID: "F2", PaymentID: "P2",
			ApportionAmount: dec(10), CurrentApportionAmount: dec(10), CreatedBy: apportionment.CreatedBySystem},
	}
	require.NoError(t, store.CreateLedgerEntries(entries))

	feeEntries, err := store.GetLedgerForFee("F1")
	require.NoError(t, err)
	require.Len(t, feeEntries, 2)
	assert.Equal(t, "P1", feeEntries[0].PaymentID)
	assert.Equal(t, "P2", feeEntries[1].PaymentID)
}

func TestLedgerStore_EmptyBatchIsNoop(t *testing.T) {
	db := newTestDB(t)
	store := apportionment.NewDatabase(db)

	require.NoError(t, store.CreateLedgerEntries(nil))

	entries, err := store.GetLedgerForCase("9000000000000032")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
