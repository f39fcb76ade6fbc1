package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfkeep/shelfkeep-server/internal/access"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// BookService manages the shared book catalogue and the reviews attached to it.
type BookService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: orDiscard(logger),
	}
}

// CreateBookRequest contains the data for a new book. Publishers are
// reconciled against the caller's own publishers.
type CreateBookRequest struct {
	Title           string                  `json:"title" validate:"required,max=255"`
	PublicationDate string                  `json:"publication_date" validate:"required,datetime=2006-01-02"`
	ISBN            string                  `json:"isbn" validate:"required,max=255"`
	Publishers      []domain.PublisherAttrs `json:"publishers" validate:"dive"`
}

// UpdateBookRequest changes an existing book. Nil fields are left alone.
// A non-nil Publishers replaces the whole publisher set, so an empty slice
// detaches every publisher.
type UpdateBookRequest struct {
	Title           *string                  `json:"title,omitempty" validate:"omitnil,min=1,max=255"`
	PublicationDate *string                  `json:"publication_date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	ISBN            *string                  `json:"isbn,omitempty" validate:"omitnil,min=1,max=255"`
	Publishers      *[]domain.PublisherAttrs `json:"publishers,omitempty" validate:"omitnil,dive"`
}

// CreateReviewRequest contains the data for a review attached to a book.
type CreateReviewRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating"`
}

// List returns every book, newest first.
func (s *BookService) List(ctx context.Context, actor *domain.User) ([]*domain.Book, error) {
	if err := access.Authorize(actor, access.ActionList, access.Collection(access.KindBook)); err != nil {
		return nil, err
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get returns one book with its publishers and reviews.
func (s *BookService) Get(ctx context.Context, actor *domain.User, bookID string) (*domain.Book, error) {
	if err := access.Authorize(actor, access.ActionRead, access.Collection(access.KindBook)); err != nil {
		return nil, err
	}
	return getBook(ctx, s.store, bookID)
}

// CheckWrite returns the error Update or Delete would fail with for actor
// on the book, without writing. Nil means the actor owns it.
func (s *BookService) CheckWrite(ctx context.Context, actor *domain.User, bookID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	book, err := getBook(ctx, s.store, bookID)
	if err != nil {
		return err
	}
	return access.Authorize(actor, access.ActionUpdate, access.Book(book))
}

// Create stores a new book owned by actor. The book and any publishers it
// names are written in one transaction.
func (s *BookService) Create(ctx context.Context, actor *domain.User, req CreateBookRequest) (*domain.Book, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Collection(access.KindBook)); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Entity:          domain.Entity{ID: bookID},
		Title:           req.Title,
		PublicationDate: req.PublicationDate,
		ISBN:            req.ISBN,
		OwnerID:         actor.ID,
	}
	book.InitTimestamps()

	var created *domain.Book
	err = s.store.InTx(ctx, func(q store.Queries) error {
		if err := q.CreateBook(ctx, book); err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		if len(req.Publishers) > 0 {
			if err := s.replacePublishers(ctx, q, actor.ID, book.ID, req.Publishers); err != nil {
				return err
			}
		}
		created, err = getBook(ctx, q, book.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book created",
		slog.String("book_id", created.ID),
		slog.String("owner_id", actor.ID),
		slog.Int("publishers", len(created.Publishers)),
	)
	return created, nil
}

// Update applies req to a book owned by actor. Ownership is checked inside
// the same transaction that writes, after the book is known to exist.
func (s *BookService) Update(ctx context.Context, actor *domain.User, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var updated *domain.Book
	err := s.store.InTx(ctx, func(q store.Queries) error {
		book, err := getBook(ctx, q, bookID)
		if err != nil {
			return err
		}
		if err := access.Authorize(actor, access.ActionUpdate, access.Book(book)); err != nil {
			s.logger.Warn("book write denied",
				slog.String("book_id", book.ID),
				slog.String("user_id", actor.ID),
			)
			return err
		}

		if req.Title != nil {
			book.Title = *req.Title
		}
		if req.PublicationDate != nil {
			book.PublicationDate = *req.PublicationDate
		}
		if req.ISBN != nil {
			book.ISBN = *req.ISBN
		}
		book.Touch()

		if err := q.UpdateBook(ctx, book); err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if req.Publishers != nil {
			if err := s.replacePublishers(ctx, q, actor.ID, book.ID, *req.Publishers); err != nil {
				return err
			}
		}

		updated, err = getBook(ctx, q, book.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book updated", slog.String("book_id", updated.ID))
	return updated, nil
}

// Delete removes a book owned by actor. Its publishers and reviews survive.
func (s *BookService) Delete(ctx context.Context, actor *domain.User, bookID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(q store.Queries) error {
		book, err := getBook(ctx, q, bookID)
		if err != nil {
			return err
		}
		if err := access.Authorize(actor, access.ActionDelete, access.Book(book)); err != nil {
			s.logger.Warn("book write denied",
				slog.String("book_id", book.ID),
				slog.String("user_id", actor.ID),
			)
			return err
		}
		if err := q.DeleteBook(ctx, book.ID); err != nil {
			return mapBookErr(err, "delete book")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("book deleted", slog.String("book_id", bookID))
	return nil
}

// ListReviews returns the reviews attached to a book, in attach order.
func (s *BookService) ListReviews(ctx context.Context, actor *domain.User, bookID string) ([]*domain.Review, error) {
	if err := access.Authorize(actor, access.ActionList, access.Collection(access.KindReview)); err != nil {
		return nil, err
	}
	if _, err := getBook(ctx, s.store, bookID); err != nil {
		return nil, err
	}

	reviews, err := s.store.ListBookReviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// AttachReview writes a review authored by actor and links it to the book.
// Any authenticated user may review any book.
func (s *BookService) AttachReview(ctx context.Context, actor *domain.User, bookID string, req CreateReviewRequest) (*domain.Review, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Collection(access.KindReview)); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Entity:   domain.Entity{ID: reviewID},
		Title:    req.Title,
		Content:  req.Content,
		Rating:   req.Rating,
		AuthorID: actor.ID,
	}
	review.InitTimestamps()

	err = s.store.InTx(ctx, func(q store.Queries) error {
		if _, err := getBook(ctx, q, bookID); err != nil {
			return err
		}
		if err := q.CreateReview(ctx, review); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		if err := q.AddBookReview(ctx, bookID, review.ID); err != nil {
			return mapBookErr(err, "attach review")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review attached",
		slog.String("book_id", bookID),
		slog.String("review_id", review.ID),
		slog.String("author_id", actor.ID),
	)
	return review, nil
}

// replacePublishers reconciles attrs against ownerID's publishers and makes
// the result the book's whole publisher set.
func (s *BookService) replacePublishers(ctx context.Context, q store.Queries, ownerID, bookID string, attrs []domain.PublisherAttrs) error {
	result, err := ReconcilePublishers(ctx, q, ownerID, attrs)
	if err != nil {
		return err
	}
	if err := q.SetBookPublishers(ctx, bookID, result.IDs()); err != nil {
		return mapBookErr(err, "set book publishers")
	}
	if result.Created > 0 {
		s.logger.Debug("publishers created during reconciliation",
			slog.String("book_id", bookID),
			slog.Int("created", result.Created),
		)
	}
	return nil
}

func getBook(ctx context.Context, q store.Books, bookID string) (*domain.Book, error) {
	book, err := q.GetBook(ctx, bookID)
	if err != nil {
		return nil, mapBookErr(err, "get book")
	}
	return book, nil
}

func mapBookErr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("book not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
