package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceCalculatorSvc computes account balances from the posted transaction
// log, independent of the incremental running Balance field. All returned
// figures are expressed in normal-balance terms: increases are positive for
// every account type.
type BalanceCalculatorSvc interface {
	// BalanceAtDate computes one account's balance from posted transactions
	// dated up to and including date. Zero for dates before the account's
	// first posted transaction.
	BalanceAtDate(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)

	// BatchBalances computes balances for many accounts with a single
	// aggregate query. Accounts without posted activity map to zero.
	BatchBalances(ctx context.Context, accountIDs []string, asOf time.Time) (map[string]decimal.Decimal, error)
}
