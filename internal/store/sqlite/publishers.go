package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
)

const publisherColumns = `p.id, p.created_at, p.updated_at, p.owner_id, p.name, p.website, p.email`

func scanPublisher(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Publisher, error) {
	var (
		p                    domain.Publisher
		createdAt, updatedAt string
	)

	dest := append([]any{&p.ID, &createdAt, &updatedAt, &p.OwnerID, &p.Name, &p.Website, &p.Email}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &p, nil
}

// FindOrCreatePublisher returns the owner's publisher matching attrs exactly,
// inserting it first when missing. The insert is a single conditional
// statement, so concurrent callers cannot both create the same publisher.
// When older data already holds several matches the earliest one wins.
func (s *Store) FindOrCreatePublisher(ctx context.Context, ownerID string, attrs domain.PublisherAttrs) (*domain.Publisher, bool, error) {
	pubID, err := id.Generate(id.PrefixPublisher)
	if err != nil {
		return nil, false, fmt.Errorf("generate publisher id: %w", err)
	}
	now := formatTime(time.Now())

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO publishers (id, created_at, updated_at, owner_id, name, website, email)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM publishers
			WHERE owner_id = ? AND name = ? AND website = ? AND email = ?
		)`,
		pubID, now, now, ownerID, attrs.Name, attrs.Website, attrs.Email,
		ownerID, attrs.Name, attrs.Website, attrs.Email,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert publisher: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT `+publisherColumns+`
		FROM publishers p
		WHERE p.owner_id = ? AND p.name = ? AND p.website = ? AND p.email = ?
		ORDER BY p.rowid ASC
		LIMIT 1`,
		ownerID, attrs.Name, attrs.Website, attrs.Email,
	)
	p, err := scanPublisher(row)
	if err != nil {
		return nil, false, fmt.Errorf("select publisher: %w", notFound(err))
	}

	return p, inserted > 0, nil
}

// GetPublisher retrieves a publisher by ID regardless of owner.
func (s *Store) GetPublisher(ctx context.Context, publisherID string) (*domain.Publisher, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+publisherColumns+` FROM publishers p WHERE p.id = ?`, publisherID)
	p, err := scanPublisher(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListPublishersByOwner returns the owner's publishers, newest first.
func (s *Store) ListPublishersByOwner(ctx context.Context, ownerID string) ([]*domain.Publisher, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+publisherColumns+`
		FROM publishers p
		WHERE p.owner_id = ?
		ORDER BY p.rowid DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query publishers: %w", err)
	}
	defer rows.Close()

	publishers := []*domain.Publisher{}
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publisher: %w", err)
		}
		publishers = append(publishers, p)
	}
	return publishers, rows.Err()
}

// UpdatePublisher writes name, website and email. The owner is left alone.
func (s *Store) UpdatePublisher(ctx context.Context, p *domain.Publisher) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE publishers SET updated_at = ?, name = ?, website = ?, email = ?
		WHERE id = ?`,
		formatTime(p.UpdatedAt), p.Name, p.Website, p.Email, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update publisher: %w", err)
	}
	return requireAffected(res)
}

// DeletePublisher removes a publisher and, by cascade, its book links.
func (s *Store) DeletePublisher(ctx context.Context, publisherID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM publishers WHERE id = ?`, publisherID)
	if err != nil {
		return fmt.Errorf("delete publisher: %w", err)
	}
	return requireAffected(res)
}

// publishersForBooks loads the publishers of every book in bookIDs with one query.
func (s *Store) publishersForBooks(ctx context.Context, bookIDs []string) (map[string][]*domain.Publisher, error) {
	out := make(map[string][]*domain.Publisher, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(bookIDs))
	for i, bookID := range bookIDs {
		args[i] = bookID
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+publisherColumns+`, bp.book_id
		FROM book_publishers bp
		JOIN publishers p ON p.id = bp.publisher_id
		WHERE bp.book_id IN (`+placeholders(len(bookIDs))+`)
		ORDER BY bp.position ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query book publishers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID string
		p, err := scanPublisher(rows, &bookID)
		if err != nil {
			return nil, fmt.Errorf("scan publisher: %w", err)
		}
		out[bookID] = append(out[bookID], p)
	}
	return out, rows.Err()
}
