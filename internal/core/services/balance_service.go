package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/staybooked/ledger-core/internal/core/ports/services"
	"github.com/staybooked/ledger-core/internal/utils/accounting"
)

// balanceService computes balances from the posted transaction log, without
// touching the stored running totals. It is the verification path for the
// incremental Balance field and the basis for reporting callers.
type balanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepository
	accountRepo portsrepo.AccountReader
}

// NewBalanceService creates the balance calculator.
func NewBalanceService(balanceRepo portsrepo.BalanceRepository, accountRepo portsrepo.AccountReader) portssvc.BalanceCalculatorSvc {
	return &balanceService{
		balanceRepo: balanceRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.BalanceCalculatorSvc = (*balanceService)(nil)

// BalanceAtDate computes one account's balance from posted transactions
// dated up to and including date, expressed in normal-balance terms. A date
// before the account's first posted transaction yields zero.
func (s *balanceService) BalanceAtDate(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load account %s for balance computation: %w", accountID, err)
	}

	components, err := s.balanceRepo.GetBalanceComponents(ctx, accountID, date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance components for account %s: %w", accountID, err)
	}
	if components == nil {
		return decimal.Zero, nil
	}

	return accounting.NormalizedBalance(account.AccountType, components.DebitTotal, components.CreditTotal), nil
}

// BatchBalances computes balances for many accounts in a single aggregate
// query, sign-corrected so increases are positive for every account type.
// Accounts without posted activity map to zero.
func (s *balanceService) BatchBalances(ctx context.Context, accountIDs []string, asOf time.Time) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal, len(accountIDs))
	if len(accountIDs) == 0 {
		return balances, nil
	}

	components, err := s.balanceRepo.GetBatchBalanceComponents(ctx, accountIDs, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute batch balance components: %w", err)
	}

	for _, accountID := range accountIDs {
		c, ok := components[accountID]
		if !ok {
			balances[accountID] = decimal.Zero
			continue
		}
		balances[accountID] = accounting.NormalizedBalance(c.AccountType, c.DebitTotal, c.CreditTotal)
	}
	return balances, nil
}
