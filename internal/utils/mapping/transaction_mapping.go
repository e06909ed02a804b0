package mapping

import (
	"github.com/staybooked/ledger-core/internal/core/domain"
	"github.com/staybooked/ledger-core/internal/models"
)

// ToModelTransaction converts a domain transaction to its persistence model.
func ToModelTransaction(d domain.FinancialTransaction) models.FinancialTransaction {
	return models.FinancialTransaction{
		TransactionID:        d.TransactionID,
		TransactionNumber:    d.TransactionNumber,
		TransactionDate:      d.TransactionDate,
		PostingDate:          d.PostingDate,
		EntryType:            string(d.EntryType),
		DebitAccountID:       d.DebitAccountID,
		CreditAccountID:      d.CreditAccountID,
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		ExchangeRate:         d.ExchangeRate,
		BaseAmount:           d.BaseAmount,
		Description:          d.Description,
		ReferenceNumber:      strOrNil(d.ReferenceNumber),
		Status:               string(d.Status),
		IsPosted:             d.IsPosted,
		IsReversed:           d.IsReversed,
		ReverseTransactionID: strOrNil(d.ReverseTransactionID),
		BookingID:            strOrNil(d.BookingID),
		PaymentID:            strOrNil(d.PaymentID),
		PropertyID:           strOrNil(d.PropertyID),
		UnitID:               strOrNil(d.UnitID),
		FirstPartyUserID:     strOrNil(d.FirstPartyUserID),
		SecondPartyUserID:    strOrNil(d.SecondPartyUserID),
		FiscalYear:           d.FiscalYear,
		FiscalPeriod:         d.FiscalPeriod,
		IsAutomatic:          d.IsAutomatic,
		AutomaticSource:      strOrNil(d.AutomaticSource),
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a persistence transaction to the domain model.
func ToDomainTransaction(m models.FinancialTransaction) domain.FinancialTransaction {
	return domain.FinancialTransaction{
		TransactionID:        m.TransactionID,
		TransactionNumber:    m.TransactionNumber,
		TransactionDate:      m.TransactionDate,
		PostingDate:          m.PostingDate,
		EntryType:            domain.EntryType(m.EntryType),
		DebitAccountID:       m.DebitAccountID,
		CreditAccountID:      m.CreditAccountID,
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		ExchangeRate:         m.ExchangeRate,
		BaseAmount:           m.BaseAmount,
		Description:          m.Description,
		ReferenceNumber:      strOrEmpty(m.ReferenceNumber),
		Status:               domain.TransactionStatus(m.Status),
		IsPosted:             m.IsPosted,
		IsReversed:           m.IsReversed,
		ReverseTransactionID: strOrEmpty(m.ReverseTransactionID),
		BookingID:            strOrEmpty(m.BookingID),
		PaymentID:            strOrEmpty(m.PaymentID),
		PropertyID:           strOrEmpty(m.PropertyID),
		UnitID:               strOrEmpty(m.UnitID),
		FirstPartyUserID:     strOrEmpty(m.FirstPartyUserID),
		SecondPartyUserID:    strOrEmpty(m.SecondPartyUserID),
		FiscalYear:           m.FiscalYear,
		FiscalPeriod:         m.FiscalPeriod,
		IsAutomatic:          m.IsAutomatic,
		AutomaticSource:      strOrEmpty(m.AutomaticSource),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of persistence transactions.
func ToDomainTransactionSlice(ms []models.FinancialTransaction) []domain.FinancialTransaction {
	ds := make([]domain.FinancialTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
