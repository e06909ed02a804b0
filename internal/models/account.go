package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors domain.AccountType for DB storage.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is the persistence model for a chart-of-accounts row.
// Nullable foreign keys use pointers; empty string means unset in the domain.
type Account struct {
	AccountID       string          `db:"account_id"`
	AccountNumber   string          `db:"account_number"` // Unique constraint: accounts_account_number_key
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	Category        string          `db:"category"`
	NormalBalance   string          `db:"normal_balance"`
	CurrencyCode    string          `db:"currency_code"`
	Balance         decimal.Decimal `db:"balance"`
	ParentAccountID *string         `db:"parent_account_id"`
	Level           int             `db:"level"`
	Description     string          `db:"description"`
	IsActive        bool            `db:"is_active"`
	IsSystemAccount bool            `db:"is_system_account"`
	CanPost         bool            `db:"can_post"`
	UserID          *string         `db:"user_id"`
	PropertyID      *string         `db:"property_id"`
	AuditFields
}
