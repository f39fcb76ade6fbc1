// Package store defines the persistence interface for the Shelfkeep server.
package store

import (
	"context"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// Store is the full persistence surface plus lifecycle.
type Store interface {
	Queries

	Close() error
}

// Queries is every read and write the services need.
type Queries interface {
	Users
	Books
	Publishers
	Reviews

	// InTx runs fn against a transaction-bound Queries. fn's error rolls the
	// transaction back; a nil return commits. Calling InTx on the Queries
	// passed to fn reuses the same transaction.
	InTx(ctx context.Context, fn func(q Queries) error) error
}

// Users persists accounts.
type Users interface {
	// CreateUser returns ErrEmailExists when the email is taken, ignoring case.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// Books persists books and their publisher and review links.
type Books interface {
	// CreateBook stores scalar fields only. Links are set separately.
	CreateBook(ctx context.Context, book *domain.Book) error
	// GetBook returns the book with publishers and reviews loaded.
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	// ListBooks returns every book, newest first, with links loaded.
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	// UpdateBook writes scalar fields. OwnerID is never changed.
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	// SetBookPublishers replaces the book's whole publisher set.
	SetBookPublishers(ctx context.Context, bookID string, publisherIDs []string) error
	// AddBookReview links a review to a book. Existing links are kept.
	AddBookReview(ctx context.Context, bookID, reviewID string) error
}

// Publishers persists owner-scoped publishers.
type Publishers interface {
	// FindOrCreatePublisher atomically returns the owner's publisher with
	// exactly attrs, inserting one if none exists. created reports an insert.
	FindOrCreatePublisher(ctx context.Context, ownerID string, attrs domain.PublisherAttrs) (p *domain.Publisher, created bool, err error)
	GetPublisher(ctx context.Context, id string) (*domain.Publisher, error)
	ListPublishersByOwner(ctx context.Context, ownerID string) ([]*domain.Publisher, error)
	// UpdatePublisher writes attrs. OwnerID is never changed.
	UpdatePublisher(ctx context.Context, p *domain.Publisher) error
	DeletePublisher(ctx context.Context, id string) error
}

// Reviews persists reviews.
type Reviews interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	// ListBookReviews returns the book's reviews in the order they were attached.
	ListBookReviews(ctx context.Context, bookID string) ([]*domain.Review, error)
}
