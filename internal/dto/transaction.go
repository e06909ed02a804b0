package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staybooked/ledger-core/internal/core/domain"
)

// CreateTransactionRequest carries the caller-supplied fields for a new
// journal entry. The ledger assigns the transaction number and amounts are
// validated against the two-leg invariants before persistence.
type CreateTransactionRequest struct {
	TransactionDate   time.Time       `json:"transactionDate" validate:"required"`
	DebitAccountID    string          `json:"debitAccountID" validate:"required"`
	CreditAccountID   string          `json:"creditAccountID" validate:"required,nefield=DebitAccountID"`
	Amount            decimal.Decimal `json:"amount" validate:"required"`
	CurrencyCode      string          `json:"currencyCode" validate:"required,len=3"`
	ExchangeRate      decimal.Decimal `json:"exchangeRate"`
	Description       string          `json:"description" validate:"max=1000"`
	BookingID         string          `json:"bookingID"`
	PaymentID         string          `json:"paymentID"`
	PropertyID        string          `json:"propertyID"`
	UnitID            string          `json:"unitID"`
	FirstPartyUserID  string          `json:"firstPartyUserID"`
	SecondPartyUserID string          `json:"secondPartyUserID"`
	IsAutomatic       bool            `json:"isAutomatic"`
	AutomaticSource   string          `json:"automaticSource"`
}

// ListTransactionsParams bounds paginated transaction listings.
type ListTransactionsParams struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=200"`
}

// RevenueExpenseRow is one row of a per-type summary over a period.
type RevenueExpenseRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	Total         decimal.Decimal `json:"total"`
}

// ToRevenueExpenseRows converts domain summary rows into the response shape.
func ToRevenueExpenseRows(rows []domain.AccountAmount) []RevenueExpenseRow {
	out := make([]RevenueExpenseRow, len(rows))
	for i, r := range rows {
		out[i] = RevenueExpenseRow{
			AccountID:     r.AccountID,
			AccountNumber: r.AccountNumber,
			Name:          r.Name,
			Total:         r.NetAmount,
		}
	}
	return out
}
