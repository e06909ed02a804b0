package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/apperrors"
	"github.com/staybooked/ledger-core/internal/core/domain"
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
	"github.com/staybooked/ledger-core/internal/models"
	"github.com/staybooked/ledger-core/internal/utils/mapping"
)

const accountColumns = `account_id, account_number, name, account_type, category, normal_balance,
	currency_code, balance, parent_account_id, level, description, is_active,
	is_system_account, can_post, user_id, property_id,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxAccountRepository implements account persistence using pgx.
type PgxAccountRepository struct {
	BaseRepository
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// NewAccountRepository creates a new PgxAccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID, &m.AccountNumber, &m.Name, &m.AccountType, &m.Category, &m.NormalBalance,
		&m.CurrencyCode, &m.Balance, &m.ParentAccountID, &m.Level, &m.Description, &m.IsActive,
		&m.IsSystemAccount, &m.CanPost, &m.UserID, &m.PropertyID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	defer rows.Close()
	var ms []models.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

// SaveAccount persists a new account row.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := fmt.Sprintf(`INSERT INTO accounts (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		accountColumns)
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.AccountNumber, m.Name, m.AccountType, m.Category, m.NormalBalance,
		m.CurrencyCode, m.Balance, m.ParentAccountID, m.Level, m.Description, m.IsActive,
		m.IsSystemAccount, m.CanPost, m.UserID, m.PropertyID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account number %s already taken: %w", m.AccountNumber, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// FindAccountByID retrieves an account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_id = $1`, accountColumns)
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}
	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_id = ANY($1)`, accountColumns)
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by IDs: %w", err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}
	result := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		result[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return result, nil
}

// FindAccountByName retrieves an active account by its exact name.
func (r *PgxAccountRepository) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE name = $1 AND is_active = TRUE LIMIT 1`, accountColumns)
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account named %q not found", name))
		}
		return nil, fmt.Errorf("failed to find account by name: %w", err)
	}
	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// FindHighestAccountNumber returns the highest account number with the given
// prefix. Numbers are fixed width, so lexicographic max equals numeric max.
func (r *PgxAccountRepository) FindHighestAccountNumber(ctx context.Context, prefix string) (string, error) {
	query := `SELECT account_number FROM accounts
		WHERE account_number LIKE $1 || '%'
		ORDER BY account_number DESC LIMIT 1`
	var number string
	err := r.Pool.QueryRow(ctx, query, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find highest account number: %w", err)
	}
	return number, nil
}

// AccountNumberExists reports whether any account already holds the number.
func (r *PgxAccountRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

// ListRootAccounts retrieves active accounts without a parent.
func (r *PgxAccountRepository) ListRootAccounts(ctx context.Context) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE parent_account_id IS NULL AND is_active = TRUE
		ORDER BY account_number`, accountColumns)
	return r.queryAccounts(ctx, query)
}

// ListSubAccounts retrieves the direct active children of one account.
func (r *PgxAccountRepository) ListSubAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE parent_account_id = $1 AND is_active = TRUE
		ORDER BY account_number`, accountColumns)
	return r.queryAccounts(ctx, query, parentAccountID)
}

// ListSubAccountsByParentIDs retrieves the direct active children of many
// accounts in one query.
func (r *PgxAccountRepository) ListSubAccountsByParentIDs(ctx context.Context, parentAccountIDs []string) ([]domain.Account, error) {
	if len(parentAccountIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE parent_account_id = ANY($1) AND is_active = TRUE
		ORDER BY account_number`, accountColumns)
	return r.queryAccounts(ctx, query, parentAccountIDs)
}

// ListAccountsByType retrieves active accounts of the given type.
func (r *PgxAccountRepository) ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE account_type = $1 AND is_active = TRUE
		ORDER BY account_number`, accountColumns)
	return r.queryAccounts(ctx, query, string(accountType))
}

// ListMainAccounts retrieves active accounts in the MAIN category.
func (r *PgxAccountRepository) ListMainAccounts(ctx context.Context) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE category = $1 AND is_active = TRUE
		ORDER BY account_number`, accountColumns)
	return r.queryAccounts(ctx, query, string(domain.CategoryMain))
}

// ListPostableAccounts retrieves active accounts that accept postings.
func (r *PgxAccountRepository) ListPostableAccounts(ctx context.Context) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE can_post = TRUE AND is_active = TRUE
		ORDER BY account_number`, accountColumns)
	return r.queryAccounts(ctx, query)
}

// SearchAccounts matches the term against number, name and description.
func (r *PgxAccountRepository) SearchAccounts(ctx context.Context, term string, limit int) ([]domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE is_active = TRUE
		  AND (account_number ILIKE '%%' || $1 || '%%'
		    OR name ILIKE '%%' || $1 || '%%'
		    OR description ILIKE '%%' || $1 || '%%')
		ORDER BY account_number
		LIMIT $2`, accountColumns)
	return r.queryAccounts(ctx, query, term, limit)
}

// FindUserAccount retrieves the account bound to an end-user for a type.
func (r *PgxAccountRepository) FindUserAccount(ctx context.Context, userID string, accountType domain.AccountType) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE user_id = $1 AND account_type = $2 AND is_active = TRUE
		LIMIT 1`, accountColumns)
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, userID, string(accountType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no %s account for user %s", accountType, userID))
		}
		return nil, fmt.Errorf("failed to find user account: %w", err)
	}
	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// FindPropertyAccount retrieves the account bound to a property for a type.
func (r *PgxAccountRepository) FindPropertyAccount(ctx context.Context, propertyID string, accountType domain.AccountType) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE property_id = $1 AND account_type = $2 AND is_active = TRUE
		LIMIT 1`, accountColumns)
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, propertyID, string(accountType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no %s account for property %s", accountType, propertyID))
		}
		return nil, fmt.Errorf("failed to find property account: %w", err)
	}
	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// UpdateAccount updates an existing account's mutable details. The account
// number, type and running balance are not touched here.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `UPDATE accounts
		SET name = $2, description = $3, currency_code = $4, can_post = $5,
		    is_active = $6, last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1`
	tag, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.Name, m.Description, m.CurrencyCode, m.CanPost,
		m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", m.AccountID))
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE`
	tag, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found or already inactive", accountID))
	}
	return nil
}

// ApplyBalanceDelta adds a signed delta to the running balance.
func (r *PgxAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (bool, error) {
	query := `UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1`
	tag, err := r.Pool.Exec(ctx, query, accountID, delta, now, userID)
	if err != nil {
		return false, fmt.Errorf("failed to apply balance delta: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindAccountsByIDsForUpdate retrieves accounts by IDs and locks the rows for
// the duration of the transaction. Ordered by ID so concurrent posters acquire
// locks in the same order.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE`, accountColumns)
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked accounts: %w", err)
	}
	result := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		result[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return result, nil
}

// UpdateAccountBalancesInTx applies signed balance deltas for multiple
// accounts within the given transaction using a batch.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1`
	for accountID, delta := range balanceChanges {
		batch.Queue(query, accountID, delta, now, userID)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range balanceChanges {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("failed to update account balance in batch: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("account missing during balance update: %w", apperrors.ErrConflict)
		}
	}
	return nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}
	return mapping.ToDomainAccountSlice(ms), nil
}
