package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

var acme = domain.PublisherAttrs{Name: "Acme", Website: "https://acme.example.com", Email: "books@acme.example.com"}

func TestFindOrCreatePublisher_CreatesThenReuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "a@example.com")

	first, created, err := s.FindOrCreatePublisher(ctx, "user-1", acme)
	if err != nil {
		t.Fatalf("FindOrCreatePublisher: %v", err)
	}
	if !created {
		t.Error("first call should create")
	}
	if first.OwnerID != "user-1" || first.PublisherAttrs != acme {
		t.Errorf("unexpected publisher %+v", first)
	}

	second, created, err := s.FindOrCreatePublisher(ctx, "user-1", acme)
	if err != nil {
		t.Fatalf("FindOrCreatePublisher again: %v", err)
	}
	if created {
		t.Error("second call should reuse")
	}
	if second.ID != first.ID {
		t.Errorf("expected same publisher, got %s and %s", first.ID, second.ID)
	}
}

func TestFindOrCreatePublisher_ScopedByOwnerAndAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "a@example.com")
	seedUser(t, s, "user-2", "b@example.com")

	mine, _, err := s.FindOrCreatePublisher(ctx, "user-1", acme)
	if err != nil {
		t.Fatalf("FindOrCreatePublisher: %v", err)
	}

	theirs, created, err := s.FindOrCreatePublisher(ctx, "user-2", acme)
	if err != nil {
		t.Fatalf("FindOrCreatePublisher: %v", err)
	}
	if !created || theirs.ID == mine.ID {
		t.Error("another owner must get their own publisher")
	}

	changed := acme
	changed.Email = "other@acme.example.com"
	variant, created, err := s.FindOrCreatePublisher(ctx, "user-1", changed)
	if err != nil {
		t.Fatalf("FindOrCreatePublisher: %v", err)
	}
	if !created || variant.ID == mine.ID {
		t.Error("a partial match must create a new publisher")
	}
}

func TestFindOrCreatePublisher_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "a@example.com")

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.InTx(ctx, func(q store.Queries) error {
				p, _, err := q.FindOrCreatePublisher(ctx, "user-1", acme)
				if err != nil {
					return err
				}
				ids[i] = p.ID
				return nil
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	for _, got := range ids[1:] {
		if got != ids[0] {
			t.Errorf("workers resolved different publishers: %v", ids)
			break
		}
	}

	list, err := s.ListPublishersByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPublishersByOwner: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected exactly one publisher row, got %d", len(list))
	}
}

func TestListPublishersByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "a@example.com")
	seedUser(t, s, "user-2", "b@example.com")

	if _, _, err := s.FindOrCreatePublisher(ctx, "user-1", acme); err != nil {
		t.Fatal(err)
	}
	other := domain.PublisherAttrs{Name: "Globex", Website: "https://globex.example.com", Email: "g@globex.example.com"}
	if _, _, err := s.FindOrCreatePublisher(ctx, "user-1", other); err != nil {
		t.Fatal(err)
	}

	mine, err := s.ListPublishersByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListPublishersByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].Name != "Globex" || mine[1].Name != "Acme" {
		t.Errorf("unexpected list %+v", mine)
	}

	theirs, err := s.ListPublishersByOwner(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListPublishersByOwner: %v", err)
	}
	if theirs == nil || len(theirs) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", theirs)
	}
}

func TestUpdateAndDeletePublisher(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-1", "a@example.com")
	seedUser(t, s, "user-2", "b@example.com")

	p, _, err := s.FindOrCreatePublisher(ctx, "user-1", acme)
	if err != nil {
		t.Fatal(err)
	}

	p.Name = "Acme Books"
	p.OwnerID = "user-2"
	p.Touch()
	if err := s.UpdatePublisher(ctx, p); err != nil {
		t.Fatalf("UpdatePublisher: %v", err)
	}

	got, err := s.GetPublisher(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPublisher: %v", err)
	}
	if got.Name != "Acme Books" {
		t.Errorf("Name: got %q", got.Name)
	}
	if got.OwnerID != "user-1" {
		t.Errorf("owner must not change, got %q", got.OwnerID)
	}

	if err := s.DeletePublisher(ctx, p.ID); err != nil {
		t.Fatalf("DeletePublisher: %v", err)
	}
	if _, err := s.GetPublisher(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeletePublisher(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
