package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a transaction is an original entry or a reversal.
type EntryType string

const (
	EntryNormal   EntryType = "NORMAL"
	EntryReversal EntryType = "REVERSAL"
)

// TransactionStatus is the lifecycle state of a financial transaction.
type TransactionStatus string

const (
	StatusApproved TransactionStatus = "APPROVED"
	StatusPosted   TransactionStatus = "POSTED"
)

// FinancialTransaction is one two-leg journal entry: a single debit account
// and a single credit account for the same amount. It contributes to account
// balances only once posted.
type FinancialTransaction struct {
	TransactionID     string            `json:"transactionID"`     // Primary key (UUID)
	TransactionNumber string            `json:"transactionNumber"` // Unique, "JV-{yyyyMM}{seq:4}"
	TransactionDate   time.Time         `json:"transactionDate"`
	PostingDate       *time.Time        `json:"postingDate"` // Set only once posted
	EntryType         EntryType         `json:"entryType"`
	DebitAccountID    string            `json:"debitAccountID"`
	CreditAccountID   string            `json:"creditAccountID"`
	Amount            decimal.Decimal   `json:"amount"` // Always positive
	CurrencyCode      string            `json:"currencyCode"`
	ExchangeRate      decimal.Decimal   `json:"exchangeRate"`
	BaseAmount        decimal.Decimal   `json:"baseAmount"` // Amount converted to the reporting currency
	Description       string            `json:"description"`
	ReferenceNumber   string            `json:"referenceNumber"` // For reversals, the original's TransactionNumber
	Status            TransactionStatus `json:"status"`
	IsPosted          bool              `json:"isPosted"`
	IsReversed        bool              `json:"isReversed"` // One-way flag on the original entry
	ReverseTransactionID string         `json:"reverseTransactionID"` // ID of the reversing entry, if any

	// Optional traceability links to external collaborators.
	BookingID         string `json:"bookingID"`
	PaymentID         string `json:"paymentID"`
	PropertyID        string `json:"propertyID"`
	UnitID            string `json:"unitID"`
	FirstPartyUserID  string `json:"firstPartyUserID"`
	SecondPartyUserID string `json:"secondPartyUserID"`

	FiscalYear      int    `json:"fiscalYear"`
	FiscalPeriod    int    `json:"fiscalPeriod"`
	IsAutomatic     bool   `json:"isAutomatic"`
	AutomaticSource string `json:"automaticSource"`
	AuditFields
}
