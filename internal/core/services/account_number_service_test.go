package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/staybooked/ledger-core/internal/core/domain"
	"github.com/staybooked/ledger-core/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountNumberServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	ctx      context.Context
}

func (suite *AccountNumberServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.ctx = context.Background()
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_FirstNumberForPrefix() {
	svc := services.NewAccountNumberService(suite.mockRepo)

	suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, "11").Return("", nil).Once()
	suite.mockRepo.On("AccountNumberExists", suite.ctx, "11001").Return(false, nil).Once()

	number, err := svc.Generate(suite.ctx, domain.Asset, true)

	suite.Require().NoError(err)
	suite.Equal("11001", number)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_ContinuesSequence() {
	svc := services.NewAccountNumberService(suite.mockRepo)

	suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, "11").Return("11007", nil).Once()
	suite.mockRepo.On("AccountNumberExists", suite.ctx, "11008").Return(false, nil).Once()

	number, err := svc.Generate(suite.ctx, domain.Asset, true)

	suite.Require().NoError(err)
	suite.Equal("11008", number)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_PrefixEncodesTypeAndScope() {
	cases := []struct {
		accountType   domain.AccountType
		isUserAccount bool
		prefix        string
	}{
		{domain.Asset, true, "11"},
		{domain.Asset, false, "12"},
		{domain.Liability, true, "21"},
		{domain.Equity, false, "32"},
		{domain.Revenue, true, "41"},
		{domain.Expense, false, "52"},
	}
	for _, tc := range cases {
		svc := services.NewAccountNumberService(suite.mockRepo)
		suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, tc.prefix).Return("", nil).Once()
		suite.mockRepo.On("AccountNumberExists", suite.ctx, tc.prefix+"001").Return(false, nil).Once()

		number, err := svc.Generate(suite.ctx, tc.accountType, tc.isUserAccount)

		suite.Require().NoError(err)
		suite.Equal(tc.prefix+"001", number)
	}
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_SkipsTakenCandidates() {
	svc := services.NewAccountNumberService(suite.mockRepo)

	suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, "11").Return("11003", nil).Once()
	// A concurrent creator already claimed the next two candidates.
	suite.mockRepo.On("AccountNumberExists", suite.ctx, "11004").Return(true, nil).Once()
	suite.mockRepo.On("AccountNumberExists", suite.ctx, "11005").Return(true, nil).Once()
	suite.mockRepo.On("AccountNumberExists", suite.ctx, "11006").Return(false, nil).Once()

	number, err := svc.Generate(suite.ctx, domain.Asset, true)

	suite.Require().NoError(err)
	suite.Equal("11006", number)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_RandomFallbackAfterExhaustion() {
	svc := services.NewAccountNumberService(suite.mockRepo, services.WithRandSource(func(n int) int {
		return 4242
	}))

	suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, "12").Return("12001", nil).Once()
	suite.mockRepo.On("AccountNumberExists", suite.ctx, mock.AnythingOfType("string")).Return(true, nil).Times(10)

	number, err := svc.Generate(suite.ctx, domain.Asset, false)

	suite.Require().NoError(err)
	suite.Equal("124242", number)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_MalformedHighestNumber() {
	svc := services.NewAccountNumberService(suite.mockRepo)

	suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, "11").Return("11abc", nil).Once()

	number, err := svc.Generate(suite.ctx, domain.Asset, true)

	suite.Require().Error(err)
	suite.Empty(number)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountNumberServiceTestSuite) TestGenerate_RepoErrorPropagates() {
	svc := services.NewAccountNumberService(suite.mockRepo)
	expectedErr := errors.New("db down")

	suite.mockRepo.On("FindHighestAccountNumber", suite.ctx, "11").Return("", expectedErr).Once()

	_, err := svc.Generate(suite.ctx, domain.Asset, true)

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAccountNumberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountNumberServiceTestSuite))
}
