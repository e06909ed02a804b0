package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountCategory distinguishes top-level main accounts from sub-accounts.
type AccountCategory string

const (
	CategoryMain AccountCategory = "MAIN"
	CategorySub  AccountCategory = "SUB"
)

// NormalBalance is the side on which increases to an account are recorded.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Account represents one entry in the chart of accounts.
// ParentAccountID, UserID and PropertyID are empty when unset; an account
// belongs to at most one end-user or one property, never both.
type Account struct {
	AccountID       string          `json:"accountID"`     // Primary key (UUID)
	AccountNumber   string          `json:"accountNumber"` // Globally unique, e.g. "11001"
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	Category        AccountCategory `json:"category"`
	NormalBalance   NormalBalance   `json:"normalBalance"` // Derived from AccountType
	CurrencyCode    string          `json:"currencyCode"`
	Balance         decimal.Decimal `json:"balance"`         // Running balance, mutated only by posting
	ParentAccountID string          `json:"parentAccountID"` // Self-referencing tree, empty for roots
	Level           int             `json:"level"`           // Depth in the account tree, roots are 1
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	CanPost         bool            `json:"canPost"`
	UserID          string          `json:"userID"`     // Owning end-user, if any
	PropertyID      string          `json:"propertyID"` // Owning property, if any
	AuditFields
}

// AccountNode is one node of the eager-loaded account tree returned by the
// directory. Sub-accounts are attached by reference from a flat arena keyed
// by account ID, never embedded as owned sub-objects.
type AccountNode struct {
	Account
	SubAccounts []AccountNode `json:"subAccounts"`
}
