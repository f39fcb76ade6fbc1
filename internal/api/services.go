package api

import "github.com/shelfkeep/shelfkeep-server/internal/service"

// Services groups the business logic used by the API server.
type Services struct {
	User      *service.UserService
	Book      *service.BookService
	Publisher *service.PublisherService
}
