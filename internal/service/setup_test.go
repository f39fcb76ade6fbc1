package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfkeep/shelfkeep-server/internal/auth"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/store/sqlite"
)

var cheapHashParams = auth.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testServices struct {
	store      *sqlite.Store
	tokens     *auth.TokenService
	users      *UserService
	books      *BookService
	publishers *PublisherService
}

// setupServices wires every service against a fresh sqlite store in t.TempDir().
func setupServices(t *testing.T) *testServices {
	t.Helper()

	dir := t.TempDir()
	log := logger.Discard().Logger

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	return &testServices{
		store:      s,
		tokens:     tokens,
		users:      NewUserService(s, tokens, auth.NewHasher(cheapHashParams), log),
		books:      NewBookService(s, log),
		publishers: NewPublisherService(s, nil),
	}
}

// registerUser creates an active account and returns it.
func (ts *testServices) registerUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := ts.users.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "hunter2",
		Name:     "Reader",
	})
	require.NoError(t, err)
	return u
}

// createBook creates a book owned by owner with the given publishers.
func (ts *testServices) createBook(t *testing.T, owner *domain.User, publishers ...domain.PublisherAttrs) *domain.Book {
	t.Helper()
	b, err := ts.books.Create(context.Background(), owner, CreateBookRequest{
		Title:           "The Left Hand of Darkness",
		PublicationDate: "1969-03-01",
		ISBN:            "978-0441478125",
		Publishers:      publishers,
	})
	require.NoError(t, err)
	return b
}

func publisherAttrs(name string) domain.PublisherAttrs {
	return domain.PublisherAttrs{
		Name:    name,
		Website: "https://" + name + ".example.com",
		Email:   "books@" + name + ".example.com",
	}
}


