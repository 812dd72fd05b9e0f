package services

import (
	"context"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
)

// AccountSvcFacade manages the chart of accounts.
type AccountSvcFacade interface {
	// CreateAccount validates and persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its unique business code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves active accounts keyed by business code.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// DeactivateAccount marks an account inactive.
	DeactivateAccount(ctx context.Context, accountID string, actor string) error
}
