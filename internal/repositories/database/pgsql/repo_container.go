package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	associationRepo := newPgxAssociationRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	chargeRepo := newPgxChargeRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	idempotencyRepo := newPgxIdempotencyRepository(dbPool)
	outboxRepo := newPgxOutboxRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AssociationRepo: associationRepo,
		AccountRepo:     accountRepo,
		JournalRepo:     journalRepo,
		ChargeRepo:      chargeRepo,
		PaymentRepo:     paymentRepo,
		IdempotencyRepo: idempotencyRepo,
		OutboxRepo:      outboxRepo,
		ReportingRepo:   reportingRepo,
		UserRepo:        userRepo,
		TxManager:       &BaseRepository{Pool: dbPool},
	}
}
