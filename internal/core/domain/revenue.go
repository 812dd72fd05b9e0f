package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueEvent is the snapshot of one billable clinical event as handed to
// the ledger by a billing collaborator, or as captured into a sync task
// payload. The collaborator owns the source-of-truth row and supplies a
// stable (Kind, ReferenceID) fingerprint.
type RevenueEvent struct {
	Kind        ReferenceKind   `json:"kind"`
	ReferenceID int64           `json:"referenceID"`
	Amount      decimal.Decimal `json:"amount"`    // Gross amount including tax
	TaxAmount   decimal.Decimal `json:"taxAmount"` // Portion of Amount that is tax; may be zero
	PaymentMode string          `json:"paymentMode"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}
