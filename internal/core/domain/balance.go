package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the rolling balance of one account on one date.
// Rows are mutated additively whenever an entry posts lines on that date,
// never overwritten, and only ever through the posting transaction.
type AccountBalance struct {
	AccountID   string          `json:"accountID"`
	BalanceDate time.Time       `json:"balanceDate"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
	NetBalance  decimal.Decimal `json:"netBalance"`
}

// BalanceDelta is the per-account contribution of a single journal entry.
type BalanceDelta struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// BalanceTotals are raw debit/credit sums before normal-balance adjustment.
type BalanceTotals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalanceRow is one account's figures on the trial balance report.
// The adjusted balance lands in exactly one of the two display columns.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance lists every active account with a non-negligible balance
// as of a date. Total debits equalling total credits confirms the ledger
// is internally consistent.
type TrialBalance struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}
