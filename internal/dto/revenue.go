package dto

import (
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordRevenueRequest is the posting API consumed by billing collaborators
// (pharmacy, lab, ultrasound, consultation, purchase-invoice entry).
type RecordRevenueRequest struct {
	Kind        domain.ReferenceKind `json:"kind" binding:"required"`
	ReferenceID int64                `json:"referenceID" binding:"required"`
	Amount      decimal.Decimal      `json:"amount" binding:"required"`
	TaxAmount   decimal.Decimal      `json:"taxAmount"`
	PaymentMode string               `json:"paymentMode" binding:"required"`
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description"`
}

// RecordRevenueResponse reports the posting outcome. A nil JournalEntryID
// with Queued=true means "queued, not yet posted"; the caller's own
// transaction must tolerate that without failing.
type RecordRevenueResponse struct {
	JournalEntryID *string `json:"journalEntryID"`
	Queued         bool    `json:"queued"`
}

// ToRevenueEvent converts the request into the domain event snapshot.
func (r RecordRevenueRequest) ToRevenueEvent() domain.RevenueEvent {
	return domain.RevenueEvent{
		Kind:        r.Kind,
		ReferenceID: r.ReferenceID,
		Amount:      r.Amount,
		TaxAmount:   r.TaxAmount,
		PaymentMode: r.PaymentMode,
		Date:        r.Date,
		Description: r.Description,
	}
}
