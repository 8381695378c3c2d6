package services

// ServiceContainer holds all service facades needed by the handlers.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	User        UserSvcFacade
}
