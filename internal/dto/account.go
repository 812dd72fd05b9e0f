package dto

import (
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the request body for creating an account.
type CreateAccountRequest struct {
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	AccountType   string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	NormalBalance string `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"`
	Description   string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string           `json:"accountID"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	AccountType   string           `json:"accountType"`
	NormalBalance string           `json:"normalBalance"`
	Description   string           `json:"description,omitempty"`
	IsActive      bool             `json:"isActive"`
	Balance       *decimal.Decimal `json:"balance,omitempty"` // Populated on as-of queries
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		Code:          a.Code,
		Name:          a.Name,
		AccountType:   string(a.AccountType),
		NormalBalance: string(a.NormalBalance),
		Description:   a.Description,
		IsActive:      a.IsActive,
	}
}
