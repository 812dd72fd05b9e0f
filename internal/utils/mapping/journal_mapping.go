package mapping

import (
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/models"
)

// ToDomainEntry converts a journal entry database model to its domain type.
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		EntryNumber:      m.EntryNumber,
		EntryDate:        m.EntryDate,
		ReferenceKind:    domain.ReferenceKind(m.ReferenceKind),
		ReferenceID:      m.ReferenceID,
		Description:      m.Description,
		Status:           domain.EntryStatus(m.Status),
		TotalDebit:       m.TotalDebit,
		TotalCredit:      m.TotalCredit,
		OriginalEntryID:  m.OriginalEntryID,
		ReversingEntryID: m.ReversingEntryID,
		AuditFields:      toDomainAudit(m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy),
	}
}

// ToModelEntry converts a domain journal entry to its database model.
func ToModelEntry(e domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate,
		ReferenceKind:    string(e.ReferenceKind),
		ReferenceID:      e.ReferenceID,
		Description:      e.Description,
		Status:           string(e.Status),
		TotalDebit:       e.TotalDebit,
		TotalCredit:      e.TotalCredit,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
		LastUpdatedAt:    e.LastUpdatedAt,
		LastUpdatedBy:    e.LastUpdatedBy,
	}
}

// ToDomainLine converts a journal line database model to its domain type.
func ToDomainLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Description:  fromNullableString(m.Description),
		AuditFields:  toDomainAudit(m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy),
	}
}

// ToModelLine converts a domain journal line to its database model.
func ToModelLine(l domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:        l.LineID,
		EntryID:       l.EntryID,
		AccountID:     l.AccountID,
		DebitAmount:   l.DebitAmount,
		CreditAmount:  l.CreditAmount,
		Description:   toNullableString(l.Description),
		CreatedAt:     l.CreatedAt,
		CreatedBy:     l.CreatedBy,
		LastUpdatedAt: l.LastUpdatedAt,
		LastUpdatedBy: l.LastUpdatedBy,
	}
}
