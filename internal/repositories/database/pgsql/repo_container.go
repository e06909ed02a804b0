package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx-backed repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := NewAccountRepository(pool)
	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		TransactionRepo: NewTransactionRepository(pool, accountRepo),
		BalanceRepo:     NewBalanceRepository(pool),
	}
}
