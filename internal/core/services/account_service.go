package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	portsrepo "github.com/clinicore/clinic_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/clinicore/clinic_ledger_app/internal/core/ports/services"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
	"github.com/clinicore/clinic_ledger_app/internal/middleware"
	"github.com/google/uuid"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	now         func() time.Time
}

// NewAccountService creates the chart-of-accounts service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, now: time.Now}
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := domain.AccountType(req.AccountType)
	switch accountType {
	case domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense:
	default:
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}

	normal := domain.NormalBalance(req.NormalBalance)
	if normal == "" {
		normal = domain.NormalBalanceFor(accountType)
	}

	now := s.now()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		Code:          req.Code,
		Name:          req.Name,
		AccountType:   accountType,
		NormalBalance: normal,
		Description:   req.Description,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: actor,
			LastUpdatedAt: now, LastUpdatedBy: actor,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("type", string(account.AccountType)))
	return &account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, code)
}

func (s *accountService) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, codes)
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actor string) error {
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, actor, s.now()); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
