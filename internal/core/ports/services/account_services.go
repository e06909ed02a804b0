package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/core/domain"
	"github.com/staybooked/ledger-core/internal/dto"
)

// AccountNumberGenerator mints unique, semantically prefixed account numbers.
type AccountNumberGenerator interface {
	// Generate produces a candidate account number for the given type and
	// ownership scope. Uniqueness is ultimately enforced by the store; the
	// generator only minimizes collision probability under contention.
	Generate(ctx context.Context, accountType domain.AccountType, isUserAccount bool) (string, error)
}

// AccountDirectorySvc is the account directory: persistence and hierarchical
// retrieval of the chart of accounts.
type AccountDirectorySvc interface {
	// CreateUserAccount creates a postable level-3 account owned by an
	// end-user, attached under the well-known parent for the account type.
	CreateUserAccount(ctx context.Context, userID, displayName string, accountType domain.AccountType, currencyCode, creatorUserID string) (*domain.Account, error)

	// CreatePropertyAccount creates a postable level-3 account owned by a
	// property, attached under the well-known parent for the account type.
	CreatePropertyAccount(ctx context.Context, propertyID, displayName string, accountType domain.AccountType, currencyCode, creatorUserID string) (*domain.Account, error)

	// CreateAccount persists an externally-described account, retrying with a
	// freshly generated number and identity on uniqueness conflicts.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// GetAccountByID retrieves a single account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by ID.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// GetTree returns active root accounts with sub-accounts eagerly attached
	// up to three nesting levels, ordered by account number.
	GetTree(ctx context.Context) ([]domain.AccountNode, error)

	// GetByType lists active accounts of one accounting type.
	GetByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)

	// GetMainAccounts lists active top-level accounts.
	GetMainAccounts(ctx context.Context) ([]domain.Account, error)

	// GetSubAccounts lists the direct children of an account.
	GetSubAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error)

	// GetPostableAccounts lists active accounts that accept postings.
	GetPostableAccounts(ctx context.Context) ([]domain.Account, error)

	// Search matches a term against number, name and description, bounded to
	// 50 results.
	Search(ctx context.Context, term string) ([]domain.Account, error)

	// GetUserAccount retrieves the account bound to an end-user for a type.
	GetUserAccount(ctx context.Context, userID string, accountType domain.AccountType) (*domain.Account, error)

	// GetPropertyAccount retrieves the account bound to a property for a type.
	GetPropertyAccount(ctx context.Context, propertyID string, accountType domain.AccountType) (*domain.Account, error)

	// UpdateBalance applies a movement to an account's running balance using
	// the normal-balance rule. Returns false without error when the account
	// does not exist.
	UpdateBalance(ctx context.Context, accountID string, amount decimal.Decimal, isDebit bool, userID string) (bool, error)

	// DeactivateAccount soft-deactivates an account.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}
