package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/apperrors"
	"github.com/staybooked/ledger-core/internal/core/domain"
	portssvc "github.com/staybooked/ledger-core/internal/core/ports/services"
	"github.com/staybooked/ledger-core/internal/core/services"
	"github.com/staybooked/ledger-core/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.TransactionLedgerSvc
	ctx             context.Context
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo,
		services.WithTransactionRetryBackoff(0))
	suite.ctx = context.Background()
}

func currentMonthPrefix() string {
	return "JV-" + time.Now().UTC().Format("200601")
}

func validTransactionRequest() dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		TransactionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		DebitAccountID:  "debit-acc",
		CreditAccountID: "credit-acc",
		Amount:          decimal.NewFromInt(250),
		CurrencyCode:    "USD",
		Description:     "Rent for March",
	}
}

func postableAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"debit-acc":  {AccountID: "debit-acc", IsActive: true, CanPost: true, NormalBalance: domain.NormalDebit},
		"credit-acc": {AccountID: "credit-acc", IsActive: true, CanPost: true, NormalBalance: domain.NormalCredit},
	}
}

func (suite *TransactionServiceTestSuite) TestGenerateTransactionNumber_FirstOfMonth() {
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, currentMonthPrefix()).Return("", nil).Once()

	number, err := suite.service.GenerateTransactionNumber(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(currentMonthPrefix()+"0001", number)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestGenerateTransactionNumber_ContinuesSequence() {
	prefix := currentMonthPrefix()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, prefix).Return(prefix+"0017", nil).Once()

	number, err := suite.service.GenerateTransactionNumber(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(prefix+"0018", number)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_Success() {
	req := validTransactionRequest()
	prefix := currentMonthPrefix()

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"debit-acc", "credit-acc"}).
		Return(postableAccounts(), nil).Once()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, prefix).Return("", nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", suite.ctx, mock.AnythingOfType("domain.FinancialTransaction")).
		Return(nil).Once()

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
	suite.Equal(prefix+"0001", txn.TransactionNumber)
	suite.Equal(domain.EntryNormal, txn.EntryType)
	suite.Equal(domain.StatusApproved, txn.Status)
	suite.False(txn.IsPosted)
	suite.Nil(txn.PostingDate)
	suite.True(txn.ExchangeRate.Equal(decimal.NewFromInt(1)))
	suite.True(txn.BaseAmount.Equal(req.Amount))
	suite.Equal(2026, txn.FiscalYear)
	suite.Equal(3, txn.FiscalPeriod)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_AppliesExchangeRate() {
	req := validTransactionRequest()
	req.ExchangeRate = decimal.RequireFromString("1.25")

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(postableAccounts(), nil).Once()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, mock.Anything).Return("", nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", suite.ctx, mock.AnythingOfType("domain.FinancialTransaction")).
		Return(nil).Once()

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.True(txn.BaseAmount.Equal(decimal.RequireFromString("312.5")))
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RejectsSameAccountBothLegs() {
	req := validTransactionRequest()
	req.CreditAccountID = req.DebitAccountID

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RejectsNonPositiveAmount() {
	req := validTransactionRequest()
	req.Amount = decimal.NewFromInt(-5)

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RejectsMissingLegAccount() {
	req := validTransactionRequest()
	accounts := postableAccounts()
	delete(accounts, "credit-acc")

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(accounts, nil).Once()

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(txn)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RejectsInactiveLegAccount() {
	req := validTransactionRequest()
	accounts := postableAccounts()
	acc := accounts["debit-acc"]
	acc.IsActive = false
	accounts["debit-acc"] = acc

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(accounts, nil).Once()

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RetriesOnDuplicateNumber() {
	req := validTransactionRequest()
	prefix := currentMonthPrefix()
	var seenNumbers []string

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(postableAccounts(), nil).Once()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, prefix).Return("", nil).Once()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, prefix).Return(prefix+"0001", nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", suite.ctx, mock.AnythingOfType("domain.FinancialTransaction")).
		Run(func(args mock.Arguments) {
			seenNumbers = append(seenNumbers, args.Get(1).(domain.FinancialTransaction).TransactionNumber)
		}).
		Return(fmt.Errorf("taken: %w", apperrors.ErrDuplicate)).Once()
	suite.mockTxnRepo.On("SaveTransaction", suite.ctx, mock.AnythingOfType("domain.FinancialTransaction")).
		Run(func(args mock.Arguments) {
			seenNumbers = append(seenNumbers, args.Get(1).(domain.FinancialTransaction).TransactionNumber)
		}).
		Return(nil).Once()

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.Equal(prefix+"0002", txn.TransactionNumber)
	suite.Equal([]string{prefix + "0001", prefix + "0002"}, seenNumbers)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ExhaustsRetries() {
	req := validTransactionRequest()

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(postableAccounts(), nil).Once()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, mock.Anything).Return("", nil).Times(5)
	suite.mockTxnRepo.On("SaveTransaction", suite.ctx, mock.AnythingOfType("domain.FinancialTransaction")).
		Return(apperrors.ErrDuplicate).Times(5)

	txn, err := suite.service.CreateTransaction(suite.ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTransactionAllocation)
	suite.Nil(txn)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestPost_Success() {
	suite.mockTxnRepo.On("PostTransaction", suite.ctx, "txn-1", "admin-1", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()

	posted, err := suite.service.Post(suite.ctx, "txn-1", "admin-1")

	suite.Require().NoError(err)
	suite.True(posted)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestPost_AlreadyPostedIsNoOp() {
	suite.mockTxnRepo.On("PostTransaction", suite.ctx, "txn-1", "admin-1", mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()

	posted, err := suite.service.Post(suite.ctx, "txn-1", "admin-1")

	suite.Require().NoError(err)
	suite.False(posted)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestReverse_MirrorsLegsAndParties() {
	prefix := currentMonthPrefix()
	original := &domain.FinancialTransaction{
		TransactionID:     "txn-1",
		TransactionNumber: "JV-2026020005",
		DebitAccountID:    "debit-acc",
		CreditAccountID:   "credit-acc",
		Amount:            decimal.NewFromInt(250),
		CurrencyCode:      "USD",
		ExchangeRate:      decimal.NewFromInt(1),
		BaseAmount:        decimal.NewFromInt(250),
		FirstPartyUserID:  "payer",
		SecondPartyUserID: "payee",
		BookingID:         "booking-1",
		IsPosted:          true,
	}

	suite.mockTxnRepo.On("FindTransactionByID", suite.ctx, "txn-1").Return(original, nil).Once()
	suite.mockTxnRepo.On("FindHighestTransactionNumber", suite.ctx, prefix).Return("", nil).Once()
	suite.mockTxnRepo.On("SaveReversal", suite.ctx, mock.AnythingOfType("domain.FinancialTransaction"), "txn-1", "admin-1", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	reversal, err := suite.service.Reverse(suite.ctx, "txn-1", "booking cancelled", "admin-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(domain.EntryReversal, reversal.EntryType)
	suite.Equal("credit-acc", reversal.DebitAccountID)
	suite.Equal("debit-acc", reversal.CreditAccountID)
	suite.True(reversal.Amount.Equal(original.Amount))
	suite.Equal("payee", reversal.FirstPartyUserID)
	suite.Equal("payer", reversal.SecondPartyUserID)
	suite.Equal("booking-1", reversal.BookingID)
	suite.Equal(original.TransactionNumber, reversal.ReferenceNumber)
	suite.Equal("Reversal of JV-2026020005: booking cancelled", reversal.Description)
	suite.Equal(domain.StatusApproved, reversal.Status)
	suite.False(reversal.IsPosted)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestReverse_MissingTransactionIsNoOp() {
	suite.mockTxnRepo.On("FindTransactionByID", suite.ctx, "ghost").
		Return(nil, apperrors.NewNotFoundError("no such transaction")).Once()

	reversal, err := suite.service.Reverse(suite.ctx, "ghost", "", "admin-1")

	suite.Require().NoError(err)
	suite.Nil(reversal)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestReverse_AlreadyReversedIsNoOp() {
	original := &domain.FinancialTransaction{TransactionID: "txn-1", IsReversed: true}

	suite.mockTxnRepo.On("FindTransactionByID", suite.ctx, "txn-1").Return(original, nil).Once()

	reversal, err := suite.service.Reverse(suite.ctx, "txn-1", "", "admin-1")

	suite.Require().NoError(err)
	suite.Nil(reversal)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestGetByPeriod_DefaultsLimit() {
	filter := domain.PeriodFilter{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	capped := filter
	capped.Limit = 100

	suite.mockTxnRepo.On("ListByPeriod", suite.ctx, capped).Return([]domain.FinancialTransaction{}, nil).Once()

	_, err := suite.service.GetByPeriod(suite.ctx, filter)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestSearch_EmptyTermShortCircuits() {
	result, err := suite.service.Search(suite.ctx, "")

	suite.Require().NoError(err)
	suite.Empty(result)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SearchTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestGetRevenueSummary_UsesRevenueType() {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	rows := []domain.AccountAmount{{AccountID: "rev-1", NetAmount: decimal.NewFromInt(900)}}

	suite.mockTxnRepo.On("SummarizeByAccountType", suite.ctx, domain.Revenue, from, to).Return(rows, nil).Once()

	result, err := suite.service.GetRevenueSummary(suite.ctx, from, to)

	suite.Require().NoError(err)
	suite.Equal(rows, result)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
