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
	"github.com/staybooked/ledger-core/internal/utils/accounting"
	"github.com/staybooked/ledger-core/internal/utils/mapping"
)

const transactionColumns = `transaction_id, transaction_number, transaction_date, posting_date, entry_type,
	debit_account_id, credit_account_id, amount, currency_code, exchange_rate, base_amount,
	description, reference_number, status, is_posted, is_reversed, reverse_transaction_id,
	booking_id, payment_id, property_id, unit_id, first_party_user_id, second_party_user_id,
	fiscal_year, fiscal_period, is_automatic, automatic_source,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxTransactionRepository implements transaction persistence using pgx.
// Posting and reversal span the transaction row and both account rows, so
// this repository owns the database transaction boundary and delegates the
// account side to the account repository's in-tx operations.
type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTxOperator
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// NewTransactionRepository creates a new PgxTransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTxOperator) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

func scanTransaction(row pgx.Row) (models.FinancialTransaction, error) {
	var m models.FinancialTransaction
	err := row.Scan(
		&m.TransactionID, &m.TransactionNumber, &m.TransactionDate, &m.PostingDate, &m.EntryType,
		&m.DebitAccountID, &m.CreditAccountID, &m.Amount, &m.CurrencyCode, &m.ExchangeRate, &m.BaseAmount,
		&m.Description, &m.ReferenceNumber, &m.Status, &m.IsPosted, &m.IsReversed, &m.ReverseTransactionID,
		&m.BookingID, &m.PaymentID, &m.PropertyID, &m.UnitID, &m.FirstPartyUserID, &m.SecondPartyUserID,
		&m.FiscalYear, &m.FiscalPeriod, &m.IsAutomatic, &m.AutomaticSource,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func collectTransactions(rows pgx.Rows) ([]models.FinancialTransaction, error) {
	defer rows.Close()
	var ms []models.FinancialTransaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

// SaveTransaction persists a new un-posted transaction row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.FinancialTransaction) error {
	m := mapping.ToModelTransaction(txn)
	query := fmt.Sprintf(`INSERT INTO financial_transactions (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`,
		transactionColumns)
	_, err := r.Pool.Exec(ctx, query,
		m.TransactionID, m.TransactionNumber, m.TransactionDate, m.PostingDate, m.EntryType,
		m.DebitAccountID, m.CreditAccountID, m.Amount, m.CurrencyCode, m.ExchangeRate, m.BaseAmount,
		m.Description, m.ReferenceNumber, m.Status, m.IsPosted, m.IsReversed, m.ReverseTransactionID,
		m.BookingID, m.PaymentID, m.PropertyID, m.UnitID, m.FirstPartyUserID, m.SecondPartyUserID,
		m.FiscalYear, m.FiscalPeriod, m.IsAutomatic, m.AutomaticSource,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction number %s already taken: %w", m.TransactionNumber, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// PostTransaction atomically marks the transaction posted and applies the
// balance effect of both legs. The transaction row is locked first, then both
// account rows, so concurrent posts of the same entry serialize and the loser
// observes is_posted and backs off as a no-op.
func (r *PgxTransactionRepository) PostTransaction(ctx context.Context, transactionID string, userID string, now time.Time) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	lockQuery := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE transaction_id = $1 FOR UPDATE`, transactionColumns)
	m, err := scanTransaction(tx.QueryRow(ctx, lockQuery, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock transaction: %w", err)
	}
	if m.IsPosted {
		return false, nil
	}

	accounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{m.DebitAccountID, m.CreditAccountID})
	if err != nil {
		return false, err
	}
	debitAccount, ok := accounts[m.DebitAccountID]
	if !ok {
		return false, fmt.Errorf("debit account %s missing: %w", m.DebitAccountID, apperrors.ErrConflict)
	}
	creditAccount, ok := accounts[m.CreditAccountID]
	if !ok {
		return false, fmt.Errorf("credit account %s missing: %w", m.CreditAccountID, apperrors.ErrConflict)
	}

	balanceChanges := map[string]decimal.Decimal{
		m.DebitAccountID:  accounting.BalanceDelta(debitAccount.NormalBalance, m.Amount, true),
		m.CreditAccountID: accounting.BalanceDelta(creditAccount.NormalBalance, m.Amount, false),
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return false, err
	}

	markQuery := `UPDATE financial_transactions
		SET is_posted = TRUE, posting_date = $2, status = $3,
		    last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1`
	if _, err := tx.Exec(ctx, markQuery, transactionID, now, string(domain.StatusPosted), now, userID); err != nil {
		return false, fmt.Errorf("failed to mark transaction posted: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// SaveReversal atomically inserts the reversing transaction and flags the
// original as reversed, linking it to the new entry.
func (r *PgxTransactionRepository) SaveReversal(ctx context.Context, reversal domain.FinancialTransaction, originalTransactionID string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	m := mapping.ToModelTransaction(reversal)
	insertQuery := fmt.Sprintf(`INSERT INTO financial_transactions (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`,
		transactionColumns)
	_, err = tx.Exec(ctx, insertQuery,
		m.TransactionID, m.TransactionNumber, m.TransactionDate, m.PostingDate, m.EntryType,
		m.DebitAccountID, m.CreditAccountID, m.Amount, m.CurrencyCode, m.ExchangeRate, m.BaseAmount,
		m.Description, m.ReferenceNumber, m.Status, m.IsPosted, m.IsReversed, m.ReverseTransactionID,
		m.BookingID, m.PaymentID, m.PropertyID, m.UnitID, m.FirstPartyUserID, m.SecondPartyUserID,
		m.FiscalYear, m.FiscalPeriod, m.IsAutomatic, m.AutomaticSource,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction number %s already taken: %w", m.TransactionNumber, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save reversal: %w", err)
	}

	flagQuery := `UPDATE financial_transactions
		SET is_reversed = TRUE, reverse_transaction_id = $2,
		    last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND is_reversed = FALSE`
	tag, err := tx.Exec(ctx, flagQuery, originalTransactionID, m.TransactionID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to flag original transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s reversed concurrently: %w", originalTransactionID, apperrors.ErrConflict)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction by its identifier.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions WHERE transaction_id = $1`, transactionColumns)
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", transactionID))
		}
		return nil, fmt.Errorf("failed to find transaction by ID: %w", err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}

// FindHighestTransactionNumber returns the highest transaction number with
// the given monthly prefix, or "" when the month has no entries yet.
func (r *PgxTransactionRepository) FindHighestTransactionNumber(ctx context.Context, prefix string) (string, error) {
	query := `SELECT transaction_number FROM financial_transactions
		WHERE transaction_number LIKE $1 || '%'
		ORDER BY transaction_number DESC LIMIT 1`
	var number string
	err := r.Pool.QueryRow(ctx, query, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find highest transaction number: %w", err)
	}
	return number, nil
}

// ListByBooking retrieves transactions linked to a booking.
func (r *PgxTransactionRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE booking_id = $1
		ORDER BY transaction_date DESC, created_at DESC`, transactionColumns)
	return r.queryTransactions(ctx, query, bookingID)
}

// ListByPayment retrieves transactions linked to a payment.
func (r *PgxTransactionRepository) ListByPayment(ctx context.Context, paymentID string) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE payment_id = $1
		ORDER BY transaction_date DESC, created_at DESC`, transactionColumns)
	return r.queryTransactions(ctx, query, paymentID)
}

// ListByUser retrieves transactions where the user is either party.
func (r *PgxTransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE first_party_user_id = $1 OR second_party_user_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2`, transactionColumns)
	return r.queryTransactions(ctx, query, userID, limit)
}

// ListByProperty retrieves transactions linked to a property.
func (r *PgxTransactionRepository) ListByProperty(ctx context.Context, propertyID string, limit int) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE property_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2`, transactionColumns)
	return r.queryTransactions(ctx, query, propertyID, limit)
}

// ListByAccount retrieves transactions touching an account on either leg.
func (r *PgxTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE debit_account_id = $1 OR credit_account_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2`, transactionColumns)
	return r.queryTransactions(ctx, query, accountID, limit)
}

// ListByPeriod retrieves transactions within a date range with optional
// status and entry-type filters.
func (r *PgxTransactionRepository) ListByPeriod(ctx context.Context, filter domain.PeriodFilter) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE transaction_date >= $1 AND transaction_date <= $2
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::text IS NULL OR entry_type = $4)
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $5`, transactionColumns)
	var status, entryType *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	if filter.EntryType != nil {
		e := string(*filter.EntryType)
		entryType = &e
	}
	return r.queryTransactions(ctx, query, filter.From, filter.To, status, entryType, filter.Limit)
}

// ListByStatus retrieves transactions in a lifecycle state.
func (r *PgxTransactionRepository) ListByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE status = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2`, transactionColumns)
	return r.queryTransactions(ctx, query, string(status), limit)
}

// ListPendingPosting retrieves approved transactions not yet posted, oldest
// first so the posting worker drains them in order.
func (r *PgxTransactionRepository) ListPendingPosting(ctx context.Context) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE status = $1 AND is_posted = FALSE
		ORDER BY transaction_date ASC, created_at ASC`, transactionColumns)
	return r.queryTransactions(ctx, query, string(domain.StatusApproved))
}

// SearchTransactions matches the term against number, description and
// reference number.
func (r *PgxTransactionRepository) SearchTransactions(ctx context.Context, term string, limit int) ([]domain.FinancialTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE transaction_number ILIKE '%%' || $1 || '%%'
		   OR description ILIKE '%%' || $1 || '%%'
		   OR reference_number ILIKE '%%' || $1 || '%%'
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2`, transactionColumns)
	return r.queryTransactions(ctx, query, term, limit)
}

// ListAccountStatement retrieves posted transactions touching one account
// within a date range, oldest first.
func (r *PgxTransactionRepository) ListAccountStatement(ctx context.Context, accountID string, from, to time.Time) ([]domain.StatementLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM financial_transactions
		WHERE (debit_account_id = $1 OR credit_account_id = $1)
		  AND is_posted = TRUE
		  AND transaction_date >= $2 AND transaction_date <= $3
		ORDER BY transaction_date ASC, created_at ASC`, transactionColumns)
	rows, err := r.Pool.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query account statement: %w", err)
	}
	ms, err := collectTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan account statement: %w", err)
	}
	lines := make([]domain.StatementLine, len(ms))
	for i, m := range ms {
		lines[i] = domain.StatementLine{
			Transaction: mapping.ToDomainTransaction(m),
			IsDebit:     m.DebitAccountID == accountID,
		}
	}
	return lines, nil
}

// SummarizeByAccountType aggregates posted amounts per account of the given
// type over a period. Totals are summed per leg and converted to the type's
// normal-balance sign before returning.
func (r *PgxTransactionRepository) SummarizeByAccountType(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.AccountAmount, error) {
	query := `SELECT a.account_id, a.account_number, a.name,
			COALESCE(SUM(CASE WHEN t.debit_account_id = a.account_id THEN t.amount ELSE 0 END), 0) AS debit_total,
			COALESCE(SUM(CASE WHEN t.credit_account_id = a.account_id THEN t.amount ELSE 0 END), 0) AS credit_total
		FROM accounts a
		JOIN financial_transactions t
		  ON t.debit_account_id = a.account_id OR t.credit_account_id = a.account_id
		WHERE a.account_type = $1
		  AND t.is_posted = TRUE
		  AND t.transaction_date >= $2 AND t.transaction_date <= $3
		GROUP BY a.account_id, a.account_number, a.name
		ORDER BY a.account_number`
	rows, err := r.Pool.Query(ctx, query, string(accountType), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize by account type: %w", err)
	}
	defer rows.Close()
	var result []domain.AccountAmount
	for rows.Next() {
		var row domain.AccountAmount
		var debitTotal, creditTotal decimal.Decimal
		if err := rows.Scan(&row.AccountID, &row.AccountNumber, &row.Name, &debitTotal, &creditTotal); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		row.NetAmount = accounting.NormalizedBalance(accountType, debitTotal, creditTotal)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summary rows: %w", err)
	}
	return result, nil
}

func (r *PgxTransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.FinancialTransaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	ms, err := collectTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return mapping.ToDomainTransactionSlice(ms), nil
}
