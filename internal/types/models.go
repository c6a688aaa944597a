package types

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fee is a single court fee owed on a case. NetAmount is the apportionment
// target (remission already deducted upstream); CurrentApportionedAmount and
// FullyApportioned are the only fields the apportionment engine mutates.
type Fee struct {
	FeeID                    string          `json:"fee_id"`
	Code                     string          `json:"code"`
	FeeAmount                decimal.Decimal `json:"fee_amount"`
	Volume                   int             `json:"volume"`
	CalculatedAmount         decimal.Decimal `json:"calculated_amount"`
	NetAmount                decimal.Decimal `json:"net_amount"`
	CurrentApportionedAmount decimal.Decimal `json:"current_apportioned_amount"`
	FullyApportioned         bool            `json:"fully_apportioned"`
	DateCreated              time.Time       `json:"date_created"`
}

// PendingAmount returns how much of the fee is still unapportioned.
func (f *Fee) PendingAmount() decimal.Decimal {
	return f.NetAmount.Sub(f.CurrentApportionedAmount)
}

// Payment is money received against a case. Amount is immutable: the engine
// never reduces it, even when a payment is only partially consumed.
type Payment struct {
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	Channel       string          `json:"channel"`
	Method        string          `json:"method"`
	Provider      string          `json:"provider"`
	CcdCaseNumber string          `json:"ccd_case_number"`
	DateCreated   time.Time       `json:"date_created"`
}

// PaymentGroup identifies a group of payments and fees raised together.
type PaymentGroup struct {
	GroupReference string    `json:"group_reference"`
	DateCreated    time.Time `json:"date_created"`
}

// CaseAggregate is the deduplicated per-case view built by the aggregator.
// Fees and payments are sorted ascending by creation time; the engine depends
// on that ordering.
type CaseAggregate struct {
	CcdCaseNumber string         `json:"ccd_case_number"`
	Groups        []PaymentGroup `json:"groups"`
	Fees          []Fee          `json:"fees"`
	Payments      []Payment      `json:"payments"`
}

// StagedPaymentFee is one staged row produced by the upstream ETL: a flat
// fee x payment x group combination for a case. The aggregator consumes these;
// nothing in this service writes them except the ingestion path.
type StagedPaymentFee struct {
	gorm.Model         `json:"-"`
	CcdCaseNumber      string              `gorm:"index" json:"ccd_case_number"`
	GroupReference     string              `json:"group_reference"`
	GroupDateCreated   time.Time           `json:"group_date_created"`
	FeeID              string              `json:"fee_id"`
	FeeCode            string              `json:"fee_code"`
	FeeAmount          decimal.Decimal     `gorm:"type:decimal(20,2)" json:"fee_amount"`
	Volume             int                 `json:"volume"`
	CalculatedAmount   decimal.Decimal     `gorm:"type:decimal(20,2)" json:"calculated_amount"`
	NetAmount          decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"net_amount"`
	FeeDateCreated     time.Time           `json:"fee_date_created"`
	PaymentID          string              `json:"payment_id"`
	PaymentAmount      decimal.Decimal     `gorm:"type:decimal(20,2)" json:"payment_amount"`
	PaymentReference   string              `json:"payment_reference"`
	PaymentStatus      string              `json:"payment_status"`
	PaymentChannel     string              `json:"payment_channel"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentProvider    string              `json:"payment_provider"`
	PaymentDateCreated time.Time           `json:"payment_date_created"`
}
