package repositories

import (
	"context"
	"time"

	"github.com/staybooked/ledger-core/internal/core/domain"
)

// BalanceRepository defines the aggregate queries used by the balance
// calculator. Balances are always computed from posted transactions only,
// never from provisional rows.
type BalanceRepository interface {
	// GetBalanceComponents sums posted debit-leg and credit-leg amounts for
	// one account, dated up to and including asOf.
	GetBalanceComponents(ctx context.Context, accountID string, asOf time.Time) (*domain.BalanceComponents, error)

	// GetBatchBalanceComponents computes the same sums for many accounts in a
	// single aggregate query. Accounts without posted activity are absent
	// from the returned map.
	GetBatchBalanceComponents(ctx context.Context, accountIDs []string, asOf time.Time) (map[string]domain.BalanceComponents, error)
}
