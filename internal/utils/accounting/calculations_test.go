package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/core/domain"
	"github.com/staybooked/ledger-core/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
)

func TestNormalBalanceFor(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.NormalBalance
	}{
		{domain.Asset, domain.NormalDebit},
		{domain.Expense, domain.NormalDebit},
		{domain.Liability, domain.NormalCredit},
		{domain.Equity, domain.NormalCredit},
		{domain.Revenue, domain.NormalCredit},
	}
	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, accounting.NormalBalanceFor(tt.accountType))
		})
	}
}

func TestTypeDigit(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        string
	}{
		{domain.Asset, "1"},
		{domain.Liability, "2"},
		{domain.Equity, "3"},
		{domain.Revenue, "4"},
		{domain.Expense, "5"},
		{domain.AccountType("UNKNOWN"), "9"},
	}
	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, accounting.TypeDigit(tt.accountType))
		})
	}
}

func TestScopeDigit(t *testing.T) {
	assert.Equal(t, "1", accounting.ScopeDigit(true))
	assert.Equal(t, "2", accounting.ScopeDigit(false))
}

func TestBalanceDelta(t *testing.T) {
	amount := decimal.NewFromInt(100)
	tests := []struct {
		name    string
		normal  domain.NormalBalance
		isDebit bool
		want    decimal.Decimal
	}{
		{"debit movement on debit-normal account increases", domain.NormalDebit, true, amount},
		{"credit movement on debit-normal account decreases", domain.NormalDebit, false, amount.Neg()},
		{"credit movement on credit-normal account increases", domain.NormalCredit, false, amount},
		{"debit movement on credit-normal account decreases", domain.NormalCredit, true, amount.Neg()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.BalanceDelta(tt.normal, amount, tt.isDebit)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNormalizedBalance(t *testing.T) {
	debits := decimal.NewFromInt(700)
	credits := decimal.NewFromInt(400)
	tests := []struct {
		name        string
		accountType domain.AccountType
		want        decimal.Decimal
	}{
		{"asset reads debit-minus-credit", domain.Asset, decimal.NewFromInt(300)},
		{"expense reads debit-minus-credit", domain.Expense, decimal.NewFromInt(300)},
		{"liability reads credit-minus-debit", domain.Liability, decimal.NewFromInt(-300)},
		{"revenue reads credit-minus-debit", domain.Revenue, decimal.NewFromInt(-300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.NormalizedBalance(tt.accountType, debits, credits)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestBalanceDelta_TwoLegConservation(t *testing.T) {
	amount := decimal.NewFromInt(500)

	// Asset debited, revenue credited: both balances rise by the amount in
	// normal-balance terms.
	assetDelta := accounting.BalanceDelta(accounting.NormalBalanceFor(domain.Asset), amount, true)
	revenueDelta := accounting.BalanceDelta(accounting.NormalBalanceFor(domain.Revenue), amount, false)
	assert.True(t, assetDelta.Equal(amount))
	assert.True(t, revenueDelta.Equal(amount))

	// A transfer between two accounts of the same type nets to zero.
	outDelta := accounting.BalanceDelta(domain.NormalDebit, amount, false)
	inDelta := accounting.BalanceDelta(domain.NormalDebit, amount, true)
	assert.True(t, outDelta.Add(inDelta).IsZero())
}

func TestValidateLegs(t *testing.T) {
	amount := decimal.NewFromInt(50)

	assert.NoError(t, accounting.ValidateLegs("debit-acc", "credit-acc", amount))
	assert.Error(t, accounting.ValidateLegs("", "credit-acc", amount))
	assert.Error(t, accounting.ValidateLegs("debit-acc", "", amount))
	assert.Error(t, accounting.ValidateLegs("same-acc", "same-acc", amount))
	assert.Error(t, accounting.ValidateLegs("debit-acc", "credit-acc", decimal.Zero))
	assert.Error(t, accounting.ValidateLegs("debit-acc", "credit-acc", decimal.NewFromInt(-1)))
}
