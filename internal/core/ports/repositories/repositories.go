package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AssociationRepo AssociationRepositoryWithTx
	AccountRepo     AccountRepositoryWithTx
	JournalRepo     JournalRepositoryWithTx
	ChargeRepo      ChargeRepositoryWithTx
	PaymentRepo     PaymentRepositoryWithTx
	IdempotencyRepo IdempotencyRepositoryWithTx
	OutboxRepo      OutboxRepository
	ReportingRepo   ReportingRepository
	UserRepo        UserRepositoryFacade
	TxManager       TransactionManager
}
