package services

import (
	portsrepo "github.com/gorushkin/ledgerly/internal/core/ports/repositories"
	portssvc "github.com/gorushkin/ledgerly/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account service first since the entry context loader depends on it
	// for system-account resolution.
	container.Account = NewAccountService(repos.AccountRepo)
	container.User = NewUserService(repos.UserRepo)

	ctxLoader := NewEntryContextLoader(repos.AccountRepo, container.Account)
	opFactory := NewOperationFactory(repos.AccountRepo, repos.TransactionRepo)

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.UserRepo,
		ctxLoader,
		opFactory,
	)

	return container
}
