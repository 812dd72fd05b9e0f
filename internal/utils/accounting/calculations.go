package accounting

import (
	"fmt"

	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum allowed |Σdebit − Σcredit| for an entry
// to be considered balanced. Amounts are currency with 2 decimal places.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// AdjustedBalance sign-adjusts raw debit/credit totals by an account's
// normal balance: DEBIT-normal accounts grow with debits, CREDIT-normal
// accounts grow with credits.
func AdjustedBalance(totals domain.BalanceTotals, normal domain.NormalBalance) decimal.Decimal {
	if normal == domain.DebitNormal {
		return totals.Debit.Sub(totals.Credit)
	}
	return totals.Credit.Sub(totals.Debit)
}

// LineDelta returns the net contribution of a single line to its account's
// sign-adjusted balance.
func LineDelta(line domain.JournalLine, normal domain.NormalBalance) decimal.Decimal {
	return AdjustedBalance(domain.BalanceTotals{Debit: line.DebitAmount, Credit: line.CreditAmount}, normal)
}

// SumLines totals the debit and credit sides of a line set.
func SumLines(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.DebitAmount)
		credits = credits.Add(line.CreditAmount)
	}
	return debits, credits
}

// ValidateEntryBalance checks the double-entry invariants of a line set:
// at least one line, non-negative amounts, one side per line, and
// |Σdebit − Σcredit| within BalanceTolerance.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("entry must have at least one line")
	}

	for _, line := range lines {
		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			return fmt.Errorf("line amounts must be non-negative for account %s", line.AccountID)
		}
		if line.DebitAmount.IsPositive() && line.CreditAmount.IsPositive() {
			return fmt.Errorf("line for account %s carries both a debit and a credit", line.AccountID)
		}
		if line.DebitAmount.IsZero() && line.CreditAmount.IsZero() {
			return fmt.Errorf("line for account %s carries no amount", line.AccountID)
		}
	}

	debits, credits := SumLines(lines)
	if debits.Sub(credits).Abs().GreaterThan(BalanceTolerance) {
		return fmt.Errorf("entry does not balance: debits sum is %s and credits sum is %s",
			debits.String(), credits.String())
	}
	return nil
}
