package dto

import (
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostEntryLine is one debit/credit line of a posting request. Accounts are
// addressed by business code; a line carries exactly one side.
type PostEntryLine struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostEntryRequest defines the request body for posting a journal entry.
type PostEntryRequest struct {
	Date          time.Time            `json:"date" binding:"required"`
	ReferenceKind domain.ReferenceKind `json:"referenceKind" binding:"required"`
	ReferenceID   int64                `json:"referenceID" binding:"required"`
	Description   string               `json:"description" binding:"required"`
	Lines         []PostEntryLine      `json:"lines" binding:"required,min=1,dive"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID       string          `json:"entryID"`
	EntryNumber   string          `json:"entryNumber"`
	Date          time.Time       `json:"date"`
	ReferenceKind string          `json:"referenceKind"`
	ReferenceID   int64           `json:"referenceID"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	Lines         []LineResponse  `json:"lines,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// ToLineResponses converts domain lines to response DTOs.
func ToLineResponses(lines []domain.JournalLine) []LineResponse {
	responses := make([]LineResponse, len(lines))
	for i, l := range lines {
		responses[i] = LineResponse{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			Debit:       l.DebitAmount,
			Credit:      l.CreditAmount,
			Description: l.Description,
		}
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:       e.EntryID,
		EntryNumber:   e.EntryNumber,
		Date:          e.EntryDate,
		ReferenceKind: string(e.ReferenceKind),
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
		Status:        string(e.Status),
		TotalDebit:    e.TotalDebit,
		TotalCredit:   e.TotalCredit,
		Lines:         ToLineResponses(e.Lines),
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
	}
}
