package sqlite

import (
	"context"
	"testing"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

func TestBookReviews_AdditiveInAttachOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "a@example.com")
	seedUser(t, s, "user-2", "b@example.com")
	seedBook(t, s, "book-1", "user-1")

	for i, author := range []string{"user-2", "user-1"} {
		r := &domain.Review{
			Entity:   domain.Entity{ID: []string{"rev-a", "rev-b"}[i]},
			Title:    "Review",
			Content:  "Text",
			Rating:   10,
			AuthorID: author,
		}
		r.InitTimestamps()
		if err := s.CreateReview(ctx, r); err != nil {
			t.Fatalf("CreateReview: %v", err)
		}
		if err := s.AddBookReview(ctx, "book-1", r.ID); err != nil {
			t.Fatalf("AddBookReview: %v", err)
		}
	}
	// Re-linking is harmless.
	if err := s.AddBookReview(ctx, "book-1", "rev-a"); err != nil {
		t.Fatalf("AddBookReview again: %v", err)
	}

	reviews, err := s.ListBookReviews(ctx, "book-1")
	if err != nil {
		t.Fatalf("ListBookReviews: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if reviews[0].ID != "rev-a" || reviews[1].ID != "rev-b" {
		t.Errorf("unexpected order: %s, %s", reviews[0].ID, reviews[1].ID)
	}
	if reviews[0].AuthorID != "user-2" || reviews[0].Rating != 10 {
		t.Errorf("unexpected review %+v", reviews[0])
	}

	empty, err := s.ListBookReviews(ctx, "book-unknown")
	if err != nil {
		t.Fatalf("ListBookReviews: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}
}
