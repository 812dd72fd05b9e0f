package mapping

import (
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
)

func toDomainAudit(createdAt time.Time, createdBy string, updatedAt time.Time, updatedBy string) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     createdAt,
		CreatedBy:     createdBy,
		LastUpdatedAt: updatedAt,
		LastUpdatedBy: updatedBy,
	}
}

func toNullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNullableString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
