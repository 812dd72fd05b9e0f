package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// ReferenceKind identifies the operational source a journal entry represents.
type ReferenceKind string

const (
	KindConsultation    ReferenceKind = "CONSULTATION"
	KindPharmacy        ReferenceKind = "PHARMACY"
	KindLab             ReferenceKind = "LAB"
	KindUltrasound      ReferenceKind = "ULTRASOUND"
	KindPurchaseInvoice ReferenceKind = "PURCHASE_INVOICE"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. At most one POSTED entry may exist per
// (ReferenceKind, ReferenceID) fingerprint; the storage layer enforces this.
type JournalEntry struct {
	EntryID         string        `json:"entryID"`     // Primary Key (e.g., UUID)
	EntryNumber     string        `json:"entryNumber"` // JE<year><6-digit-seq>, year-scoped
	EntryDate       time.Time     `json:"entryDate"`   // Date the event occurred
	ReferenceKind   ReferenceKind `json:"referenceKind"`
	ReferenceID     int64         `json:"referenceID"`
	Description     string        `json:"description"`
	Status          EntryStatus   `json:"status"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	OriginalEntryID *string       `json:"originalEntryID,omitempty"`  // Set on reversing entries
	ReversingEntryID *string      `json:"reversingEntryID,omitempty"` // Set on reversed originals
	Lines           []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single line item within a JournalEntry, affecting one
// account. Amounts are non-negative and a line carries exactly one side.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
	AuditFields
}
