package aggregation

import (
	"sort"

	"github.com/courtpay/apportionment-api/internal/types"
	"github.com/rs/zerolog/log"
)

// BuildAggregates converts a flat collection of staged rows into one
// CaseAggregate per distinct case number. Rows without a case number are
// dropped (data-quality filter, not an error). Within a case, groups, fees
// and payments are deduplicated first-occurrence-wins, then fees and payments
// are sorted ascending by creation time with a stable sort; the apportionment
// engine depends on that ordering.
func BuildAggregates(rows []types.StagedPaymentFee) []types.CaseAggregate {
	logger := log.With().Str("component", "case_aggregator").Logger()

	valid := make([]types.StagedPaymentFee, 0, len(rows))
	for _, row := range rows {
		if row.CcdCaseNumber == "" {
			logger.Debug().
				Str("fee_id", row.FeeID).
				Str("payment_id", row.PaymentID).
				Msg("dropping staged row with missing case number")
			continue
		}
		valid = append(valid, row)
	}

	caseNumbers := dedupBy(valid, func(r types.StagedPaymentFee) string {
		return r.CcdCaseNumber
	})

	aggregates := make([]types.CaseAggregate, 0, len(caseNumbers))
	for _, first := range caseNumbers {
		ccd := first.CcdCaseNumber
		caseRows := make([]types.StagedPaymentFee, 0, len(valid))
		for _, row := range valid {
			if row.CcdCaseNumber == ccd {
				caseRows = append(caseRows, row)
			}
		}
		aggregates = append(aggregates, buildCase(ccd, caseRows))
	}

	logger.Debug().
		Int("rows_in", len(rows)).
		Int("rows_valid", len(valid)).
		Int("cases_out", len(aggregates)).
		Msg("built case aggregates")

	return aggregates
}

// buildCase assembles one case view from that case's staged rows.
func buildCase(ccd string, rows []types.StagedPaymentFee) types.CaseAggregate {
	groupRows := dedupBy(withKey(rows, func(r types.StagedPaymentFee) string { return r.GroupReference }),
		func(r types.StagedPaymentFee) string { return r.GroupReference })
	feeRows := dedupBy(withKey(rows, func(r types.StagedPaymentFee) string { return r.FeeID }),
		func(r types.StagedPaymentFee) string { return r.FeeID })
	paymentRows := dedupBy(withKey(rows, func(r types.StagedPaymentFee) string { return r.PaymentID }),
		func(r types.StagedPaymentFee) string { return r.PaymentID })

	agg := types.CaseAggregate{
		CcdCaseNumber: ccd,
		Groups:        make([]types.PaymentGroup, 0, len(groupRows)),
		Fees:          make([]types.Fee, 0, len(feeRows)),
		Payments:      make([]types.Payment, 0, len(paymentRows)),
	}

	for _, row := range groupRows {
		agg.Groups = append(agg.Groups, types.PaymentGroup{
			GroupReference: row.GroupReference,
			DateCreated:    row.GroupDateCreated,
		})
	}

	for _, row := range feeRows {
		agg.Fees = append(agg.Fees, feeFromRow(row))
	}

	for _, row := range paymentRows {
		agg.Payments = append(agg.Payments, types.Payment{
			PaymentID:     row.PaymentID,
			Amount:        row.PaymentAmount,
			Reference:     row.PaymentReference,
			Status:        row.PaymentStatus,
			Channel:       row.PaymentChannel,
			Method:        row.PaymentMethod,
			Provider:      row.PaymentProvider,
			CcdCaseNumber: row.CcdCaseNumber,
			DateCreated:   row.PaymentDateCreated,
		})
	}

	// Stable sorts: ties keep encounter order.
	sort.SliceStable(agg.Fees, func(i, j int) bool {
		return agg.Fees[i].DateCreated.Before(agg.Fees[j].DateCreated)
	})
	sort.SliceStable(agg.Payments, func(i, j int) bool {
		return agg.Payments[i].DateCreated.Before(agg.Payments[j].DateCreated)
	})

	return agg
}

// feeFromRow maps a staged row to a fee, defaulting a missing net amount to
// the calculated amount.
func feeFromRow(row types.StagedPaymentFee) types.Fee {
	net := row.CalculatedAmount
	if row.NetAmount.Valid {
		net = row.NetAmount.Decimal
	}
	return types.Fee{
		FeeID:            row.FeeID,
		Code:             row.FeeCode,
		FeeAmount:        row.FeeAmount,
		Volume:           row.Volume,
		CalculatedAmount: row.CalculatedAmount,
		NetAmount:        net,
		DateCreated:      row.FeeDateCreated,
	}
}

// withKey drops rows whose key is empty so blank identifiers never produce
// phantom groups, fees or payments.
func withKey(rows []types.StagedPaymentFee, key func(types.StagedPaymentFee) string) []types.StagedPaymentFee {
	out := make([]types.StagedPaymentFee, 0, len(rows))
	for _, row := range rows {
		if key(row) == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}
