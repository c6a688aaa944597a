package apportionment

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreatedBySystem marks ledger entries written by the engine rather than a user.
const CreatedBySystem = "SYSTEM"

// LedgerEntry is one immutable record of a fee/payment allocation step.
// FeeID and PaymentID are plain identifier foreign keys; the entry carries no
// live object references. CallSurplusAmount and CallShortfallAmount are
// populated only on the last entry of a run and are mutually exclusive.
type LedgerEntry struct {
	gorm.Model             `json:"-"`
	ApportionID            string              `gorm:"uniqueIndex" json:"apportion_id"`
	CcdCaseNumber          string              `json:"ccd_case_number"`
	FeeID                  string              `json:"fee_id"`
	PaymentID              string              `json:"payment_id"`
	FeeAmount              decimal.Decimal     `gorm:"type:decimal(20,2)" json:"fee_amount"`
	PaymentAmount          decimal.Decimal     `gorm:"type:decimal(20,2)" json:"payment_amount"`
	ApportionAmount        decimal.Decimal     `gorm:"type:decimal(20,2)" json:"apportion_amount"`
	AllocatedAmount        decimal.Decimal     `gorm:"type:decimal(20,2)" json:"allocated_amount"`
	CurrentApportionAmount decimal.Decimal     `gorm:"type:decimal(20,2)" json:"current_apportion_amount"`
	FullyApportioned       bool                `json:"fully_apportioned"`
	CallSurplusAmount      decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"call_surplus_amount"`
	CallShortfallAmount    decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"call_shortfall_amount"`
	CreatedBy              string              `json:"created_by"`
	DateCreated            time.Time           `json:"date_created"`
}

// Outcome is the result of a single engine run. The surplus/shortfall flags
// reflect only the last payment processed by date order, not an aggregate over
// all payments; Remaining is that payment's leftover figure. Outcome values
// are scoped to one run and never shared between runs.
type Outcome struct {
	Entries     []LedgerEntry
	IsSurplus   bool
	IsShortfall bool
	Remaining   decimal.Decimal
}
