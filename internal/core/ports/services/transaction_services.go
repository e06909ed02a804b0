package services

import (
	"context"
	"time"

	"github.com/staybooked/ledger-core/internal/core/domain"
	"github.com/staybooked/ledger-core/internal/dto"
)

// TransactionLedgerSvc owns the financial transaction log: numbering,
// creation, posting, reversal, and the search/statement query surface.
type TransactionLedgerSvc interface {
	// GenerateTransactionNumber produces the next sequential journal voucher
	// number for the current calendar month.
	GenerateTransactionNumber(ctx context.Context) (string, error)

	// CreateTransaction validates and persists a new transaction in the
	// Approved, un-posted state, assigning it a transaction number.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.FinancialTransaction, error)

	// Post transitions an un-posted transaction to Posted and applies the
	// balance effect of both legs atomically. Returns false without error
	// when the transaction does not exist or is already posted.
	Post(ctx context.Context, transactionID string, userID string) (bool, error)

	// Reverse creates an un-posted mirror transaction and flags the original.
	// Returns nil without error when the transaction does not exist or has
	// already been reversed. The mirror must itself be posted to take effect.
	Reverse(ctx context.Context, transactionID string, reason string, userID string) (*domain.FinancialTransaction, error)

	// GetTransactionByID retrieves a single transaction.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error)

	GetByBooking(ctx context.Context, bookingID string) ([]domain.FinancialTransaction, error)
	GetByPayment(ctx context.Context, paymentID string) ([]domain.FinancialTransaction, error)
	GetByUser(ctx context.Context, userID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error)
	GetByProperty(ctx context.Context, propertyID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error)
	GetByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error)
	GetByPeriod(ctx context.Context, filter domain.PeriodFilter) ([]domain.FinancialTransaction, error)
	GetByStatus(ctx context.Context, status domain.TransactionStatus, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error)

	// GetPendingForPosting lists approved transactions awaiting posting.
	GetPendingForPosting(ctx context.Context) ([]domain.FinancialTransaction, error)

	// Search matches a term against number, description and reference.
	Search(ctx context.Context, term string) ([]domain.FinancialTransaction, error)

	// GetAccountStatement returns posted transactions touching one account
	// within a date range, chronologically ordered.
	GetAccountStatement(ctx context.Context, accountID string, from, to time.Time) ([]domain.StatementLine, error)

	// GetRevenueSummary aggregates posted revenue per account over a period.
	GetRevenueSummary(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error)

	// GetExpenseSummary aggregates posted expenses per account over a period.
	GetExpenseSummary(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error)
}
