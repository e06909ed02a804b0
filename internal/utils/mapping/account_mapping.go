package mapping

import (
	"github.com/staybooked/ledger-core/internal/core/domain"
	"github.com/staybooked/ledger-core/internal/models"
)

// ToModelAccount converts a domain account to its persistence model.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		AccountNumber:   d.AccountNumber,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		Category:        string(d.Category),
		NormalBalance:   string(d.NormalBalance),
		CurrencyCode:    d.CurrencyCode,
		Balance:         d.Balance,
		ParentAccountID: strOrNil(d.ParentAccountID),
		Level:           d.Level,
		Description:     d.Description,
		IsActive:        d.IsActive,
		IsSystemAccount: d.IsSystemAccount,
		CanPost:         d.CanPost,
		UserID:          strOrNil(d.UserID),
		PropertyID:      strOrNil(d.PropertyID),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a persistence account to the domain model.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		AccountNumber:   m.AccountNumber,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		Category:        domain.AccountCategory(m.Category),
		NormalBalance:   domain.NormalBalance(m.NormalBalance),
		CurrencyCode:    m.CurrencyCode,
		Balance:         m.Balance,
		ParentAccountID: strOrEmpty(m.ParentAccountID),
		Level:           m.Level,
		Description:     m.Description,
		IsActive:        m.IsActive,
		IsSystemAccount: m.IsSystemAccount,
		CanPost:         m.CanPost,
		UserID:          strOrEmpty(m.UserID),
		PropertyID:      strOrEmpty(m.PropertyID),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of persistence accounts.
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
