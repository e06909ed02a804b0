package repositories

import (
	"context"
	"time"

	"github.com/staybooked/ledger-core/internal/core/domain"
)

// TransactionReader defines read operations for the financial transaction log.
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error)

	// FindHighestTransactionNumber returns the highest transaction number
	// starting with the given monthly prefix, or "" when none exists.
	FindHighestTransactionNumber(ctx context.Context, prefix string) (string, error)

	// ListByBooking retrieves transactions linked to a booking.
	ListByBooking(ctx context.Context, bookingID string) ([]domain.FinancialTransaction, error)

	// ListByPayment retrieves transactions linked to a payment.
	ListByPayment(ctx context.Context, paymentID string) ([]domain.FinancialTransaction, error)

	// ListByUser retrieves transactions where the user is either party.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.FinancialTransaction, error)

	// ListByProperty retrieves transactions linked to a property.
	ListByProperty(ctx context.Context, propertyID string, limit int) ([]domain.FinancialTransaction, error)

	// ListByAccount retrieves transactions touching an account on either leg.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.FinancialTransaction, error)

	// ListByPeriod retrieves transactions within a date range with optional
	// status and entry-type filters and a result cap.
	ListByPeriod(ctx context.Context, filter domain.PeriodFilter) ([]domain.FinancialTransaction, error)

	// ListByStatus retrieves transactions in a lifecycle state.
	ListByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]domain.FinancialTransaction, error)

	// ListPendingPosting retrieves approved transactions not yet posted.
	ListPendingPosting(ctx context.Context) ([]domain.FinancialTransaction, error)

	// SearchTransactions matches the term against number, description and
	// reference number, bounded to limit results.
	SearchTransactions(ctx context.Context, term string, limit int) ([]domain.FinancialTransaction, error)

	// ListAccountStatement retrieves posted transactions touching one account
	// within a date range, in chronological order.
	ListAccountStatement(ctx context.Context, accountID string, from, to time.Time) ([]domain.StatementLine, error)

	// SummarizeByAccountType aggregates posted amounts per account of the
	// given type over a period, expressed in normal-balance terms.
	SummarizeByAccountType(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]domain.AccountAmount, error)
}

// TransactionWriter defines write operations for the financial transaction log.
type TransactionWriter interface {
	// SaveTransaction persists a new un-posted transaction. A unique-constraint
	// violation on the transaction number is reported as apperrors.ErrDuplicate.
	SaveTransaction(ctx context.Context, txn domain.FinancialTransaction) error

	// PostTransaction atomically marks the transaction posted and applies the
	// balance effect of both legs. Returns false without error when the
	// transaction does not exist or is already posted.
	PostTransaction(ctx context.Context, transactionID string, userID string, now time.Time) (bool, error)

	// SaveReversal atomically inserts the reversing transaction and flags the
	// original as reversed, linking it to the new entry.
	SaveReversal(ctx context.Context, reversal domain.FinancialTransaction, originalTransactionID string, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
