package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the database model for the accounts table.
type Account struct {
	AccountID     string    `db:"account_id"`
	Code          string    `db:"code"`
	Name          string    `db:"name"`
	AccountType   string    `db:"account_type"`
	NormalBalance string    `db:"normal_balance"`
	Description   *string   `db:"description"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}

// AccountBalance is the database model for the account_balances table.
// One row per (account, date); posted entries mutate it additively.
type AccountBalance struct {
	AccountID   string          `db:"account_id"`
	BalanceDate time.Time       `db:"balance_date"`
	DebitTotal  decimal.Decimal `db:"debit_total"`
	CreditTotal decimal.Decimal `db:"credit_total"`
	NetBalance  decimal.Decimal `db:"net_balance"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
