package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/core/domain"
)

// NormalBalanceFor derives the side on which increases to an account are
// recorded. Assets and Expenses increase on the debit side; Liabilities,
// Equity and Revenue increase on the credit side.
func NormalBalanceFor(accountType domain.AccountType) domain.NormalBalance {
	switch accountType {
	case domain.Asset, domain.Expense:
		return domain.NormalDebit
	default:
		return domain.NormalCredit
	}
}

// TypeDigit encodes the account type as the leading digit of an account number.
func TypeDigit(accountType domain.AccountType) string {
	switch accountType {
	case domain.Asset:
		return "1"
	case domain.Liability:
		return "2"
	case domain.Equity:
		return "3"
	case domain.Revenue:
		return "4"
	case domain.Expense:
		return "5"
	default:
		return "9"
	}
}

// ScopeDigit encodes account ownership: 1 for end-user accounts, 2 for
// property accounts.
func ScopeDigit(isUserAccount bool) string {
	if isUserAccount {
		return "1"
	}
	return "2"
}

// BalanceDelta computes the signed change to an account's running balance for
// a movement of the given amount and direction. A movement on the account's
// normal side increases the balance, the opposite side decreases it.
func BalanceDelta(normal domain.NormalBalance, amount decimal.Decimal, isDebit bool) decimal.Decimal {
	if (normal == domain.NormalDebit) == isDebit {
		return amount
	}
	return amount.Neg()
}

// NormalizedBalance converts raw posted debit/credit totals into a balance
// expressed in normal-balance terms, so increases are positive for every
// account type. This is the single read-time convention used by the balance
// calculator; raw debit-minus-credit never leaves this package.
func NormalizedBalance(accountType domain.AccountType, debitTotal, creditTotal decimal.Decimal) decimal.Decimal {
	raw := debitTotal.Sub(creditTotal)
	if NormalBalanceFor(accountType) == domain.NormalCredit {
		return raw.Neg()
	}
	return raw
}

// ValidateLegs checks the structural double-entry invariants of a two-leg
// transaction before it is accepted into the ledger.
func ValidateLegs(debitAccountID, creditAccountID string, amount decimal.Decimal) error {
	if debitAccountID == "" || creditAccountID == "" {
		return fmt.Errorf("both debit and credit accounts are required")
	}
	if debitAccountID == creditAccountID {
		return fmt.Errorf("debit and credit accounts must differ, got %s on both legs", debitAccountID)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transaction amount must be positive, got %s", amount.String())
	}
	return nil
}
