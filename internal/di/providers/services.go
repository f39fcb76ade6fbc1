package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/auth"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// ProvideUserService provides registration, token exchange and self-service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	hasher := do.MustInvoke[*auth.Hasher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, tokenService, hasher, log.Logger), nil
}

// ProvideBookService provides the book and review service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, log.Logger), nil
}

// ProvidePublisherService provides the publisher service.
func ProvidePublisherService(i do.Injector) (*service.PublisherService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPublisherService(storeHandle.Store, log.Logger), nil
}
