package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApportionmentResponse represents the result of an apportionment run for one case
type ApportionmentResponse struct {
	CcdCaseNumber  string          `json:"ccd_case_number"`
	EntriesCreated int             `json:"entries_created"`
	IsSurplus      bool            `json:"is_surplus"`
	IsShortfall    bool            `json:"is_shortfall"`
	Remaining      decimal.Decimal `json:"remaining"`
	Fees           []Fee           `json:"fees"`
	Timestamp      time.Time       `json:"timestamp"`
}

// CaseResponse represents the aggregated view of a case
type CaseResponse struct {
	CcdCaseNumber string         `json:"ccd_case_number"`
	Groups        []PaymentGroup `json:"groups"`
	Fees          []Fee          `json:"fees"`
	Payments      []Payment      `json:"payments"`
	Timestamp     time.Time      `json:"timestamp"`
}
