// Package di provides dependency injection configuration for the Shelfkeep server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/auth"
	"github.com/shelfkeep/shelfkeep-server/internal/config"
	"github.com/shelfkeep/shelfkeep-server/internal/di/providers"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// NewContainer creates the DI container. args are the command line flags
// handed to the config loader.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideHasher)

	// Business services
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvidePublisherService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap resolves every core service, which opens the database and
// starts the HTTP listener.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.PublisherService](injector)

	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
