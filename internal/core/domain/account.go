package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account's balance normally grows.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

// Account represents a ledger account within the core domain.
// Accounts are created at setup and rarely mutated afterwards.
type Account struct {
	AccountID     string        `json:"accountID"`     // Primary Key (e.g., UUID)
	Code          string        `json:"code"`          // Unique business key (e.g. "1000")
	Name          string        `json:"name"`          // Display name
	AccountType   AccountType   `json:"accountType"`   // ASSET, LIABILITY, etc.
	NormalBalance NormalBalance `json:"normalBalance"` // DEBIT or CREDIT
	Description   string        `json:"description"`   // Nullable user description
	IsActive      bool          `json:"isActive"`      // Soft delete / status flag
	AuditFields
}

// NormalBalanceFor returns the conventional normal balance for an account type.
func NormalBalanceFor(t AccountType) NormalBalance {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}
