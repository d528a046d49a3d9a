package services

import (
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Account and journal come first since the ledger-facing services post
	// through them.
	container.Account = NewAccountService(repos.AccountRepo, repos.AssociationRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.AccountRepo)

	// The outbox dispatcher posts GL entries on behalf of charges and payments.
	container.Outbox = NewOutboxService(
		repos.OutboxRepo,
		repos.ChargeRepo,
		repos.PaymentRepo,
		repos.AssociationRepo,
		repos.AccountRepo,
		container.Journal,
		repos.TxManager,
	)

	container.Charge = NewChargeService(repos.ChargeRepo, repos.AssociationRepo, container.Outbox)
	container.Payment = NewPaymentService(repos.PaymentRepo, repos.ChargeRepo, repos.AssociationRepo, container.Outbox)

	// Association creation seeds the default chart through the account service.
	container.Association = NewAssociationService(repos.AssociationRepo, container.Account)

	container.Idempotency = NewIdempotencyService(repos.IdempotencyRepo, cfg.IdempotencyTakeoverAfter)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.User = NewUserService(repos.UserRepo)

	// Initialize TokenService
	container.TokenService = NewTokenService(cfg)

	// Initialize GoogleOAuthHandlerSvcFacade
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AssociationSvcFacade = (*AssociationService)(nil)
	_ portssvc.ChargeSvcFacade      = (*ChargeService)(nil)
	// Add other implementation checks as services are created
)
