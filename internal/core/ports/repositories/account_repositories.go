package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountByName retrieves an active account by its exact name.
	// Used to resolve well-known parent accounts.
	FindAccountByName(ctx context.Context, name string) (*domain.Account, error)

	// FindHighestAccountNumber returns the lexicographically highest account
	// number starting with the given prefix, or "" when none exists. Account
	// numbers are fixed width, so lexicographic order equals numeric order.
	FindHighestAccountNumber(ctx context.Context, prefix string) (string, error)

	// AccountNumberExists reports whether any account already holds the number.
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)

	// ListRootAccounts retrieves active accounts without a parent, ordered by
	// account number.
	ListRootAccounts(ctx context.Context) ([]domain.Account, error)

	// ListSubAccounts retrieves the direct active children of one account.
	ListSubAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error)

	// ListSubAccountsByParentIDs retrieves the direct active children of many
	// accounts in one query, ordered by account number.
	ListSubAccountsByParentIDs(ctx context.Context, parentAccountIDs []string) ([]domain.Account, error)

	// ListAccountsByType retrieves active accounts of the given type.
	ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)

	// ListMainAccounts retrieves active accounts in the MAIN category.
	ListMainAccounts(ctx context.Context) ([]domain.Account, error)

	// ListPostableAccounts retrieves active accounts that accept postings.
	ListPostableAccounts(ctx context.Context) ([]domain.Account, error)

	// SearchAccounts matches the term against number, name and description.
	SearchAccounts(ctx context.Context, term string, limit int) ([]domain.Account, error)

	// FindUserAccount retrieves the account bound to an end-user for a type.
	FindUserAccount(ctx context.Context, userID string, accountType domain.AccountType) (*domain.Account, error)

	// FindPropertyAccount retrieves the account bound to a property for a type.
	FindPropertyAccount(ctx context.Context, propertyID string, accountType domain.AccountType) (*domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account. A unique-constraint violation on
	// the account number or identity is reported as apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. Accounts are never
	// hard-deleted.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error

	// ApplyBalanceDelta adds the signed delta to an account's running balance.
	// Returns false without error when the account does not exist.
	ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (bool, error)
}

// AccountTxOperator defines operations that participate in an externally
// managed database transaction, used by the posting path.
type AccountTxOperator interface {
	// FindAccountsByIDsForUpdate retrieves accounts by IDs and locks the rows.
	// Must be called within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas for multiple
	// accounts within the given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxOperator
}
