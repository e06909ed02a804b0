package services

import (
	portsrepo "github.com/staybooked/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/staybooked/ledger-core/internal/core/ports/services"
)

// NewServiceContainer wires the ledger services over the given repositories.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The number generator comes first since the directory depends on it.
	container.Numbers = NewAccountNumberService(repos.AccountRepo)
	container.Accounts = NewAccountService(repos.AccountRepo, container.Numbers)
	container.Transactions = NewTransactionService(repos.TransactionRepo, repos.AccountRepo)
	container.Balances = NewBalanceService(repos.BalanceRepo, repos.AccountRepo)

	return container
}
