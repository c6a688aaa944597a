package apportionment

import (
	"time"

	"github.com/courtpay/apportionment-api/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Engine runs the FIFO waterfall allocation for one case at a time. Fees and
// payments dated before GoLiveDate never participate: they are not mutated and
// never appear in the ledger. The engine holds no per-run state, so distinct
// cases may be apportioned concurrently; a single case must not be.
type Engine struct {
	GoLiveDate time.Time
}

func NewEngine(goLiveDate time.Time) *Engine {
	return &Engine{GoLiveDate: goLiveDate}
}

// Run allocates the case's eligible payments to its eligible fees in strict
// chronological order, mutating each fee's running apportioned total in place
// and producing an ordered ledger. It raises no business errors: a case with
// nothing eligible yields an empty outcome.
//
// The remaining-balance bookkeeping deliberately subtracts the fee's full
// pending requirement rather than the cash actually allocated; the figure is a
// "was this fee's need met" signal, not a literal cash balance, and downstream
// ledger annotations depend on it.
func (e *Engine) Run(agg *types.CaseAggregate) *Outcome {
	logger := log.With().
		Str("ccd_case_number", agg.CcdCaseNumber).
		Str("component", "apportionment_engine").
		Logger()

	fees := e.eligibleFees(agg)
	payments := e.eligiblePayments(agg)

	logger.Debug().
		Int("eligible_fees", len(fees)).
		Int("eligible_payments", len(payments)).
		Time("go_live_date", e.GoLiveDate).
		Msg("starting apportionment run")

	outcome := &Outcome{Remaining: decimal.Zero}

	for i := range payments {
		payment := &payments[i]
		remaining := payment.Amount

		for _, fee := range fees {
			if fee.FullyApportioned {
				continue
			}

			pending := fee.PendingAmount()
			allocated := decimal.Min(remaining, pending)

			fee.CurrentApportionedAmount = fee.CurrentApportionedAmount.Add(allocated)
			if fee.CurrentApportionedAmount.Equal(fee.NetAmount) {
				fee.FullyApportioned = true
			}

			outcome.Entries = append(outcome.Entries, LedgerEntry{
				ApportionID:            "APP_" + uuid.New().String(),
				CcdCaseNumber:          agg.CcdCaseNumber,
				FeeID:                  fee.FeeID,
				PaymentID:              payment.PaymentID,
				FeeAmount:              fee.NetAmount,
				PaymentAmount:          payment.Amount,
				ApportionAmount:        allocated,
				AllocatedAmount:        allocated,
				CurrentApportionAmount: fee.CurrentApportionedAmount,
				FullyApportioned:       fee.FullyApportioned,
				CreatedBy:              CreatedBySystem,
				DateCreated:            payment.DateCreated,
			})

			logger.Debug().
				Str("fee_id", fee.FeeID).
				Str("payment_id", payment.PaymentID).
				Str("allocated", allocated.String()).
				Str("current_apportioned", fee.CurrentApportionedAmount.String()).
				Bool("fully_apportioned", fee.FullyApportioned).
				Msg("allocated payment to fee")

			// Subtract the fee's pending requirement, not the allocated cash.
			remaining = remaining.Sub(pending)
			if remaining.LessThanOrEqual(decimal.Zero) {
				break
			}
		}

		// Plain flags overwritten every payment: the case-level classification
		// is whatever the chronologically last payment left behind.
		outcome.IsSurplus = remaining.GreaterThan(decimal.Zero)
		outcome.IsShortfall = remaining.LessThan(decimal.Zero)
		outcome.Remaining = remaining
	}

	e.annotateLastEntry(outcome)

	logger.Info().
		Int("entries", len(outcome.Entries)).
		Bool("is_surplus", outcome.IsSurplus).
		Bool("is_shortfall", outcome.IsShortfall).
		Str("remaining", outcome.Remaining.String()).
		Msg("completed apportionment run")

	return outcome
}

// annotateLastEntry applies the surplus/shortfall annotation to the
// chronologically last ledger entry of the run. Both branches guard against a
// stale last entry (one whose fee state was superseded); when neither guard
// fires the entry stays unannotated.
func (e *Engine) annotateLastEntry(outcome *Outcome) {
	if len(outcome.Entries) == 0 {
		return
	}

	last := &outcome.Entries[len(outcome.Entries)-1]
	switch {
	case outcome.IsShortfall && last.CurrentApportionAmount.LessThan(last.FeeAmount):
		last.CallShortfallAmount = decimal.NewNullDecimal(outcome.Remaining)
	case outcome.IsSurplus && last.CurrentApportionAmount.Equal(last.FeeAmount):
		last.CallSurplusAmount = decimal.NewNullDecimal(outcome.Remaining)
		last.AllocatedAmount = last.ApportionAmount.Add(outcome.Remaining)
	}
}

// eligibleFees returns pointers into the aggregate's fee slice so allocation
// mutates the caller's fees in place. Order is preserved from the aggregate,
// which sorts ascending by creation date.
func (e *Engine) eligibleFees(agg *types.CaseAggregate) []*types.Fee {
	fees := make([]*types.Fee, 0, len(agg.Fees))
	for i := range agg.Fees {
		if agg.Fees[i].DateCreated.Before(e.GoLiveDate) {
			continue
		}
		fees = append(fees, &agg.Fees[i])
	}
	return fees
}

func (e *Engine) eligiblePayments(agg *types.CaseAggregate) []types.Payment {
	payments := make([]types.Payment, 0, len(agg.Payments))
	for _, p := range agg.Payments {
		if p.DateCreated.Before(e.GoLiveDate) {
			continue
		}
		payments = append(payments, p)
	}
	return payments
}
