package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staybooked/ledger-core/internal/core/domain"
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
)

// PgxBalanceRepository implements the aggregate balance queries using pgx.
// Both methods count posted rows only; provisional transactions never affect
// a computed balance.
type PgxBalanceRepository struct {
	BaseRepository
}

var _ portsrepo.BalanceRepository = (*PgxBalanceRepository)(nil)

// NewBalanceRepository creates a new PgxBalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *PgxBalanceRepository {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

const balanceComponentsQuery = `SELECT a.account_id, a.account_type,
		COALESCE(SUM(CASE WHEN t.debit_account_id = a.account_id THEN t.amount ELSE 0 END), 0) AS debit_total,
		COALESCE(SUM(CASE WHEN t.credit_account_id = a.account_id THEN t.amount ELSE 0 END), 0) AS credit_total
	FROM accounts a
	JOIN financial_transactions t
	  ON t.debit_account_id = a.account_id OR t.credit_account_id = a.account_id
	WHERE a.account_id = ANY($1)
	  AND t.is_posted = TRUE
	  AND t.transaction_date <= $2
	GROUP BY a.account_id, a.account_type`

// GetBalanceComponents sums posted debit-leg and credit-leg amounts for one
// account, dated up to and including asOf. Returns nil when the account has
// no posted activity in range.
func (r *PgxBalanceRepository) GetBalanceComponents(ctx context.Context, accountID string, asOf time.Time) (*domain.BalanceComponents, error) {
	components, err := r.GetBatchBalanceComponents(ctx, []string{accountID}, asOf)
	if err != nil {
		return nil, err
	}
	c, ok := components[accountID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetBatchBalanceComponents computes posted debit/credit totals for many
// accounts in a single aggregate query.
func (r *PgxBalanceRepository) GetBatchBalanceComponents(ctx context.Context, accountIDs []string, asOf time.Time) (map[string]domain.BalanceComponents, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.BalanceComponents{}, nil
	}
	rows, err := r.Pool.Query(ctx, balanceComponentsQuery, accountIDs, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance components: %w", err)
	}
	defer rows.Close()
	result := make(map[string]domain.BalanceComponents, len(accountIDs))
	for rows.Next() {
		var c domain.BalanceComponents
		if err := rows.Scan(&c.AccountID, &c.AccountType, &c.DebitTotal, &c.CreditTotal); err != nil {
			return nil, fmt.Errorf("failed to scan balance components: %w", err)
		}
		result[c.AccountID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read balance components: %w", err)
	}
	return result, nil
}
