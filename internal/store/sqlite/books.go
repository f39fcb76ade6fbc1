package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.publication_date, b.isbn, b.owner_id`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
	)

	if err := scanner.Scan(&b.ID, &createdAt, &updatedAt, &b.Title, &b.PublicationDate, &b.ISBN, &b.OwnerID); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &b, nil
}

// CreateBook inserts the scalar columns of book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, publication_date, isbn, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		book.PublicationDate,
		book.ISBN,
		book.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook retrieves a book with its publishers and reviews.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err)
	}

	if err := s.loadBookLinks(ctx, []*domain.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns all books, newest first, with links loaded.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+bookColumns+` FROM books b ORDER BY b.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadBookLinks(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// loadBookLinks fills Publishers and Reviews on each book. Books without
// links get empty, non-nil slices so they encode as [].
func (s *Store) loadBookLinks(ctx context.Context, books []*domain.Book) error {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	publishers, err := s.publishersForBooks(ctx, ids)
	if err != nil {
		return err
	}
	reviews, err := s.reviewsForBooks(ctx, ids)
	if err != nil {
		return err
	}

	for _, b := range books {
		b.Publishers = publishers[b.ID]
		if b.Publishers == nil {
			b.Publishers = []*domain.Publisher{}
		}
		b.Reviews = reviews[b.ID]
		if b.Reviews == nil {
			b.Reviews = []*domain.Review{}
		}
	}
	return nil
}

// UpdateBook writes title, publication date and ISBN. owner_id is not part
// of the statement, so ownership cannot change here.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE books SET updated_at = ?, title = ?, publication_date = ?, isbn = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		book.PublicationDate,
		book.ISBN,
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(res)
}

// DeleteBook removes a book. Its publishers and reviews survive; only the
// link rows go with it.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return requireAffected(res)
}

// SetBookPublishers replaces every publisher link of the book. Duplicate IDs
// keep their first position.
func (s *Store) SetBookPublishers(ctx context.Context, bookID string, publisherIDs []string) error {
	return s.InTx(ctx, func(q store.Queries) error {
		tx := q.(*Store)

		if _, err := tx.q.ExecContext(ctx, `DELETE FROM book_publishers WHERE book_id = ?`, bookID); err != nil {
			return fmt.Errorf("clear book publishers: %w", err)
		}

		for pos, pubID := range publisherIDs {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO book_publishers (book_id, publisher_id, position)
				VALUES (?, ?, ?)
				ON CONFLICT (book_id, publisher_id) DO NOTHING`,
				bookID, pubID, pos,
			)
			if err != nil {
				return fmt.Errorf("insert book publisher: %w", err)
			}
		}
		return nil
	})
}

// AddBookReview links a review to a book. Linking twice is a no-op.
func (s *Store) AddBookReview(ctx context.Context, bookID, reviewID string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO book_reviews (book_id, review_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (book_id, review_id) DO NOTHING`,
		bookID, reviewID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert book review: %w", err)
	}
	return nil
}
