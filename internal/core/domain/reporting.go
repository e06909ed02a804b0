package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountAmount is one row of a per-account summary (revenue or expense
// totals over a period, expressed in normal-balance terms).
type AccountAmount struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	NetAmount     decimal.Decimal `json:"netAmount"`
}

// BalanceComponents are the raw posted debit and credit totals for one
// account up to a point in time, before any normal-balance sign correction.
type BalanceComponents struct {
	AccountID   string
	AccountType AccountType
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

// StatementLine is one row of an account statement: a posted transaction
// touching the account within the requested range.
type StatementLine struct {
	Transaction FinancialTransaction `json:"transaction"`
	IsDebit     bool                 `json:"isDebit"` // Whether the statement account is the debit leg
}

// PeriodFilter bounds a transaction query to a date range with optional
// status/entry-type filters and a result cap.
type PeriodFilter struct {
	From      time.Time
	To        time.Time
	Status    *TransactionStatus
	EntryType *EntryType
	Limit     int
}
