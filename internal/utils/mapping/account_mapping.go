package mapping

import (
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/models"
)

// ToDomainAccount converts an account database model to its domain type.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		Code:          m.Code,
		Name:          m.Name,
		AccountType:   domain.AccountType(m.AccountType),
		NormalBalance: domain.NormalBalance(m.NormalBalance),
		Description:   fromNullableString(m.Description),
		IsActive:      m.IsActive,
		AuditFields:   toDomainAudit(m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy),
	}
}

// ToModelAccount converts a domain account to its database model.
func ToModelAccount(a domain.Account) models.Account {
	return models.Account{
		AccountID:     a.AccountID,
		Code:          a.Code,
		Name:          a.Name,
		AccountType:   string(a.AccountType),
		NormalBalance: string(a.NormalBalance),
		Description:   toNullableString(a.Description),
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}
