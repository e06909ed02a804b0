package dto

import (
	"github.com/staybooked/ledger-core/internal/core/domain"
)

// CreateAccountRequest carries the caller-supplied fields for a generic
// account creation. AccountNumber is never accepted from callers; the
// directory mints it.
type CreateAccountRequest struct {
	Name            string             `json:"name" validate:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Category        domain.AccountCategory `json:"category" validate:"required,oneof=MAIN SUB"`
	CurrencyCode    string             `json:"currencyCode" validate:"required,len=3"`
	ParentAccountID string             `json:"parentAccountID" validate:"omitempty,uuid"`
	Description     string             `json:"description" validate:"max=1000"`
	IsSystemAccount bool               `json:"isSystemAccount"`
	CanPost         bool               `json:"canPost"`
	UserID          string             `json:"userID" validate:"omitempty,excluded_with=PropertyID"`
	PropertyID      string             `json:"propertyID" validate:"omitempty,excluded_with=UserID"`
}
