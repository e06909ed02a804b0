package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybooked/ledger-core/internal/apperrors"
	"github.com/staybooked/ledger-core/internal/core/domain"
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/staybooked/ledger-core/internal/core/ports/services"
	"github.com/staybooked/ledger-core/internal/dto"
	"github.com/staybooked/ledger-core/internal/utils/accounting"
)

const (
	// transactionNumberPrefix starts every journal voucher number.
	transactionNumberPrefix = "JV-"

	// transactionSequenceWidth is the zero-padded width of the monthly suffix.
	transactionSequenceWidth = 4

	// maxTransactionCreateAttempts bounds whole-insert retries when a
	// concurrently created transaction claims the same voucher number.
	maxTransactionCreateAttempts = 5

	// defaultListLimit caps listings when the caller does not provide one.
	defaultListLimit = 20

	// periodResultCap caps period queries when the filter has no limit.
	periodResultCap = 100

	// transactionSearchCap bounds free-text search results.
	transactionSearchCap = 50
)

// ErrTransactionAllocation is returned when repeated insert attempts could
// not produce a unique transaction number.
var ErrTransactionAllocation = errors.New("could not allocate unique transaction number")

// transactionService implements the transaction ledger.
type transactionService struct {
	BaseService
	txnRepo       portsrepo.TransactionRepositoryFacade
	accountRepo   portsrepo.AccountReader
	validate      *validator.Validate
	createBackoff time.Duration
}

// TransactionServiceOption is a functional option for the transaction ledger.
type TransactionServiceOption func(*transactionService)

// WithTransactionRetryBackoff overrides the base backoff between insert attempts.
func WithTransactionRetryBackoff(d time.Duration) TransactionServiceOption {
	return func(s *transactionService) {
		s.createBackoff = d
	}
}

// NewTransactionService creates the transaction ledger service.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountReader, options ...TransactionServiceOption) portssvc.TransactionLedgerSvc {
	svc := &transactionService{
		txnRepo:       txnRepo,
		accountRepo:   accountRepo,
		validate:      validator.New(),
		createBackoff: defaultCreateBackoff,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionLedgerSvc = (*transactionService)(nil)

// GenerateTransactionNumber produces the next sequential voucher number for
// the current calendar month, "JV-{yyyyMM}{seq:4}". The candidate is not
// reserved; the unique constraint on the transaction number is the
// authoritative collision detector and creation retries on conflict.
func (s *transactionService) GenerateTransactionNumber(ctx context.Context) (string, error) {
	prefix := transactionNumberPrefix + time.Now().UTC().Format("200601")

	highest, err := s.txnRepo.FindHighestTransactionNumber(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to find highest transaction number for %s: %w", prefix, err)
	}

	sequence := 1
	if highest != "" {
		last, parseErr := strconv.Atoi(highest[len(prefix):])
		if parseErr != nil {
			return "", fmt.Errorf("malformed transaction number %q: %w", highest, parseErr)
		}
		sequence = last + 1
	}

	return fmt.Sprintf("%s%0*d", prefix, transactionSequenceWidth, sequence), nil
}

// CreateTransaction validates and persists a new transaction in the
// Approved, un-posted state.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.FinancialTransaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := accounting.ValidateLegs(req.DebitAccountID, req.CreditAccountID, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{req.DebitAccountID, req.CreditAccountID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leg accounts: %w", err)
	}
	for _, accountID := range []string{req.DebitAccountID, req.CreditAccountID} {
		acc, found := accounts[accountID]
		if !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if !acc.IsActive || !acc.CanPost {
			return nil, fmt.Errorf("%w: account %s does not accept postings", apperrors.ErrValidation, accountID)
		}
	}

	exchangeRate := req.ExchangeRate
	if exchangeRate.IsZero() {
		exchangeRate = decimal.NewFromInt(1)
	}

	entryType := domain.EntryNormal
	for attempt := 1; attempt <= maxTransactionCreateAttempts; attempt++ {
		number, err := s.GenerateTransactionNumber(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		txn := domain.FinancialTransaction{
			TransactionID:     uuid.NewString(),
			TransactionNumber: number,
			TransactionDate:   req.TransactionDate,
			EntryType:         entryType,
			DebitAccountID:    req.DebitAccountID,
			CreditAccountID:   req.CreditAccountID,
			Amount:            req.Amount,
			CurrencyCode:      req.CurrencyCode,
			ExchangeRate:      exchangeRate,
			BaseAmount:        req.Amount.Mul(exchangeRate),
			Description:       req.Description,
			Status:            domain.StatusApproved,
			IsPosted:          false,
			BookingID:         req.BookingID,
			PaymentID:         req.PaymentID,
			PropertyID:        req.PropertyID,
			UnitID:            req.UnitID,
			FirstPartyUserID:  req.FirstPartyUserID,
			SecondPartyUserID: req.SecondPartyUserID,
			FiscalYear:        req.TransactionDate.Year(),
			FiscalPeriod:      int(req.TransactionDate.Month()),
			IsAutomatic:       req.IsAutomatic,
			AutomaticSource:   req.AutomaticSource,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}

		err = s.txnRepo.SaveTransaction(ctx, txn)
		if err == nil {
			s.LogInfo(ctx, "Transaction created",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("transaction_number", txn.TransactionNumber))
			return &txn, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}

		s.LogWarn(ctx, "Transaction number collision on insert, retrying",
			slog.String("transaction_number", number),
			slog.Int("attempt", attempt))
		if attempt < maxTransactionCreateAttempts {
			time.Sleep(time.Duration(attempt) * s.createBackoff)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrTransactionAllocation, maxTransactionCreateAttempts)
}

// Post transitions an un-posted transaction to Posted. The repository owns
// the transaction boundary: both leg balances and the posted flags change
// atomically or not at all. A missing or already-posted transaction is a
// no-op, not an error, because idempotent retries from upstream callers are
// an expected pattern.
func (s *transactionService) Post(ctx context.Context, transactionID string, userID string) (bool, error) {
	posted, err := s.txnRepo.PostTransaction(ctx, transactionID, userID, time.Now().UTC())
	if err != nil {
		s.LogError(ctx, err, "Failed to post transaction", slog.String("transaction_id", transactionID))
		return false, err
	}
	if !posted {
		s.LogDebug(ctx, "Posting skipped: transaction missing or already posted",
			slog.String("transaction_id", transactionID))
		return false, nil
	}
	s.LogInfo(ctx, "Transaction posted", slog.String("transaction_id", transactionID))
	return true, nil
}

// Reverse creates an un-posted mirror of a transaction and flags the
// original. A missing or already-reversed original is a no-op.
func (s *transactionService) Reverse(ctx context.Context, transactionID string, reason string, userID string) (*domain.FinancialTransaction, error) {
	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Reversal skipped: transaction not found",
				slog.String("transaction_id", transactionID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load transaction %s for reversal: %w", transactionID, err)
	}
	if original.IsReversed {
		s.LogDebug(ctx, "Reversal skipped: transaction already reversed",
			slog.String("transaction_id", transactionID))
		return nil, nil
	}

	description := fmt.Sprintf("Reversal of %s", original.TransactionNumber)
	if reason != "" {
		description = fmt.Sprintf("%s: %s", description, reason)
	}

	for attempt := 1; attempt <= maxTransactionCreateAttempts; attempt++ {
		number, err := s.GenerateTransactionNumber(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		reversal := domain.FinancialTransaction{
			TransactionID:     uuid.NewString(),
			TransactionNumber: number,
			TransactionDate:   now,
			EntryType:         domain.EntryReversal,
			DebitAccountID:    original.CreditAccountID,
			CreditAccountID:   original.DebitAccountID,
			Amount:            original.Amount,
			CurrencyCode:      original.CurrencyCode,
			ExchangeRate:      original.ExchangeRate,
			BaseAmount:        original.BaseAmount,
			Description:       description,
			ReferenceNumber:   original.TransactionNumber,
			Status:            domain.StatusApproved,
			IsPosted:          false,
			BookingID:         original.BookingID,
			PaymentID:         original.PaymentID,
			PropertyID:        original.PropertyID,
			UnitID:            original.UnitID,
			FirstPartyUserID:  original.SecondPartyUserID,
			SecondPartyUserID: original.FirstPartyUserID,
			FiscalYear:        now.Year(),
			FiscalPeriod:      int(now.Month()),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		err = s.txnRepo.SaveReversal(ctx, reversal, original.TransactionID, userID, now)
		if err == nil {
			s.LogInfo(ctx, "Transaction reversed",
				slog.String("original_transaction_id", original.TransactionID),
				slog.String("reversal_transaction_id", reversal.TransactionID))
			return &reversal, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("failed to save reversal for %s: %w", transactionID, err)
		}

		s.LogWarn(ctx, "Reversal number collision on insert, retrying",
			slog.String("transaction_number", number),
			slog.Int("attempt", attempt))
		if attempt < maxTransactionCreateAttempts {
			time.Sleep(time.Duration(attempt) * s.createBackoff)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrTransactionAllocation, maxTransactionCreateAttempts)
}

// GetTransactionByID retrieves a single transaction.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.FinancialTransaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

func (s *transactionService) GetByBooking(ctx context.Context, bookingID string) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListByBooking(ctx, bookingID)
}

func (s *transactionService) GetByPayment(ctx context.Context, paymentID string) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListByPayment(ctx, paymentID)
}

func (s *transactionService) GetByUser(ctx context.Context, userID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListByUser(ctx, userID, normalizeLimit(params.Limit))
}

func (s *transactionService) GetByProperty(ctx context.Context, propertyID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListByProperty(ctx, propertyID, normalizeLimit(params.Limit))
}

func (s *transactionService) GetByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListByAccount(ctx, accountID, normalizeLimit(params.Limit))
}

func (s *transactionService) GetByPeriod(ctx context.Context, filter domain.PeriodFilter) ([]domain.FinancialTransaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = periodResultCap
	}
	return s.txnRepo.ListByPeriod(ctx, filter)
}

func (s *transactionService) GetByStatus(ctx context.Context, status domain.TransactionStatus, params dto.ListTransactionsParams) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListByStatus(ctx, status, normalizeLimit(params.Limit))
}

// GetPendingForPosting lists approved transactions awaiting posting.
func (s *transactionService) GetPendingForPosting(ctx context.Context) ([]domain.FinancialTransaction, error) {
	return s.txnRepo.ListPendingPosting(ctx)
}

// Search matches a term against number, description and reference.
func (s *transactionService) Search(ctx context.Context, term string) ([]domain.FinancialTransaction, error) {
	if term == "" {
		return []domain.FinancialTransaction{}, nil
	}
	return s.txnRepo.SearchTransactions(ctx, term, transactionSearchCap)
}

// GetAccountStatement returns posted transactions touching one account
// within a date range, chronologically ordered.
func (s *transactionService) GetAccountStatement(ctx context.Context, accountID string, from, to time.Time) ([]domain.StatementLine, error) {
	return s.txnRepo.ListAccountStatement(ctx, accountID, from, to)
}

// GetRevenueSummary aggregates posted revenue per account over a period.
func (s *transactionService) GetRevenueSummary(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error) {
	return s.txnRepo.SummarizeByAccountType(ctx, domain.Revenue, from, to)
}

// GetExpenseSummary aggregates posted expenses per account over a period.
func (s *transactionService) GetExpenseSummary(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, error) {
	return s.txnRepo.SummarizeByAccountType(ctx, domain.Expense, from, to)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
