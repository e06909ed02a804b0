package services

// ServiceContainer bundles the ledger's service facades for consumers.
type ServiceContainer struct {
	Accounts     AccountDirectorySvc
	Numbers      AccountNumberGenerator
	Transactions TransactionLedgerSvc
	Balances     BalanceCalculatorSvc
}
