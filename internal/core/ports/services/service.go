package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Association        AssociationSvcFacade
	Account            AccountSvcFacade
	Journal            JournalSvcFacade
	Charge             ChargeSvcFacade
	Payment            PaymentSvcFacade
	Idempotency        IdempotencySvcFacade
	Outbox             OutboxSvcFacade
	Reporting          ReportingSvcFacade
	User               UserSvcFacade
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
}
