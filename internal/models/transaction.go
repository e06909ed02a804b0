package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialTransaction is the persistence model for a journal entry row.
type FinancialTransaction struct {
	TransactionID        string          `db:"transaction_id"`
	TransactionNumber    string          `db:"transaction_number"` // Unique constraint: financial_transactions_transaction_number_key
	TransactionDate      time.Time       `db:"transaction_date"`
	PostingDate          *time.Time      `db:"posting_date"`
	EntryType            string          `db:"entry_type"`
	DebitAccountID       string          `db:"debit_account_id"`
	CreditAccountID      string          `db:"credit_account_id"`
	Amount               decimal.Decimal `db:"amount"`
	CurrencyCode         string          `db:"currency_code"`
	ExchangeRate         decimal.Decimal `db:"exchange_rate"`
	BaseAmount           decimal.Decimal `db:"base_amount"`
	Description          string          `db:"description"`
	ReferenceNumber      *string         `db:"reference_number"`
	Status               string          `db:"status"`
	IsPosted             bool            `db:"is_posted"`
	IsReversed           bool            `db:"is_reversed"`
	ReverseTransactionID *string         `db:"reverse_transaction_id"`
	BookingID            *string         `db:"booking_id"`
	PaymentID            *string         `db:"payment_id"`
	PropertyID           *string         `db:"property_id"`
	UnitID               *string         `db:"unit_id"`
	FirstPartyUserID     *string         `db:"first_party_user_id"`
	SecondPartyUserID    *string         `db:"second_party_user_id"`
	FiscalYear           int             `db:"fiscal_year"`
	FiscalPeriod         int             `db:"fiscal_period"`
	IsAutomatic          bool            `db:"is_automatic"`
	AutomaticSource      *string         `db:"automatic_source"`
	AuditFields
}
