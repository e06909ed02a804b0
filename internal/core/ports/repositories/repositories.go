package repositories

// RepositoryProvider bundles all repository facades needed to assemble the
// service container. The store-connection handle lives inside the concrete
// repositories; nothing here is process-global.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	BalanceRepo     BalanceRepository
}
