package sqlite

import (
	"context"
	"fmt"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

const reviewColumns = `r.id, r.created_at, r.updated_at, r.title, r.content, r.rating, r.author_id`

func scanReview(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Review, error) {
	var (
		r                    domain.Review
		createdAt, updatedAt string
	)

	dest := append([]any{&r.ID, &createdAt, &updatedAt, &r.Title, &r.Content, &r.Rating, &r.AuthorID}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &r, nil
}

// CreateReview inserts a review. It is not linked to any book yet.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reviews (id, created_at, updated_at, title, content, rating, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
		review.Title,
		review.Content,
		review.Rating,
		review.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListBookReviews returns a book's reviews in attach order.
// An unknown book yields an empty list.
func (s *Store) ListBookReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	byBook, err := s.reviewsForBooks(ctx, []string{bookID})
	if err != nil {
		return nil, err
	}
	if reviews := byBook[bookID]; reviews != nil {
		return reviews, nil
	}
	return []*domain.Review{}, nil
}

// reviewsForBooks loads the reviews of every book in bookIDs with one query.
func (s *Store) reviewsForBooks(ctx context.Context, bookIDs []string) (map[string][]*domain.Review, error) {
	out := make(map[string][]*domain.Review, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(bookIDs))
	for i, id := range bookIDs {
		args[i] = id
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+reviewColumns+`, br.book_id
		FROM book_reviews br
		JOIN reviews r ON r.id = br.review_id
		WHERE br.book_id IN (`+placeholders(len(bookIDs))+`)
		ORDER BY br.rowid ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query book reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID string
		r, err := scanReview(rows, &bookID)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out[bookID] = append(out[bookID], r)
	}
	return out, rows.Err()
}
