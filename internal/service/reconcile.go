package service

import (
	"context"
	"fmt"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
)

// PublisherFinder resolves one attribute set to the owner's publisher,
// creating it when missing. store.Queries satisfies it.
type PublisherFinder interface {
	FindOrCreatePublisher(ctx context.Context, ownerID string, attrs domain.PublisherAttrs) (*domain.Publisher, bool, error)
}

// ReconcileResult is the outcome of ReconcilePublishers.
type ReconcileResult struct {
	Publishers []*domain.Publisher
	Created    int
}

// IDs returns the resolved publisher IDs in input order.
func (r ReconcileResult) IDs() []string {
	ids := make([]string, len(r.Publishers))
	for i, p := range r.Publishers {
		ids[i] = p.ID
	}
	return ids
}

// ReconcilePublishers maps each attribute set to an existing or new publisher
// owned by ownerID. Repeated attribute sets collapse to one publisher, kept
// at the position of their first occurrence. Matching is exact on all three
// fields; a partial match creates a new publisher and never edits an old one.
// An empty input makes no store calls.
func ReconcilePublishers(ctx context.Context, finder PublisherFinder, ownerID string, attrs []domain.PublisherAttrs) (ReconcileResult, error) {
	if ownerID == "" {
		return ReconcileResult{}, domainerrors.MissingActor("publisher reconciliation needs an owner")
	}

	result := ReconcileResult{Publishers: make([]*domain.Publisher, 0, len(attrs))}
	seen := make(map[domain.PublisherAttrs]struct{}, len(attrs))

	for _, a := range attrs {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}

		p, created, err := finder.FindOrCreatePublisher(ctx, ownerID, a)
		if err != nil {
			return ReconcileResult{}, fmt.Errorf("resolve publisher %q: %w", a.Name, err)
		}
		if created {
			result.Created++
		}
		result.Publishers = append(result.Publishers, p)
	}

	return result, nil
}
