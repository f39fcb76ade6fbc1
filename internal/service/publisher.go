package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfkeep/shelfkeep-server/internal/access"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// PublisherService manages publishers. Every publisher is private to its
// owner; other users get not-found for it.
type PublisherService struct {
	store  store.Store
	logger *slog.Logger
}

// NewPublisherService creates a new publisher service.
func NewPublisherService(store store.Store, logger *slog.Logger) *PublisherService {
	return &PublisherService{
		store:  store,
		logger: orDiscard(logger),
	}
}

// UpdatePublisherRequest changes a publisher. Nil fields are left alone.
type UpdatePublisherRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Website *string `json:"website,omitempty" validate:"omitnil,url,max=255"`
	Email   *string `json:"email,omitempty" validate:"omitnil,email,max=255"`
}

// List returns the actor's publishers, newest first.
func (s *PublisherService) List(ctx context.Context, actor *domain.User) ([]*domain.Publisher, error) {
	if err := access.Authorize(actor, access.ActionList, access.Collection(access.KindPublisher)); err != nil {
		return nil, err
	}

	publishers, err := s.store.ListPublishersByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	return publishers, nil
}

// Get returns one of the actor's publishers.
func (s *PublisherService) Get(ctx context.Context, actor *domain.User, publisherID string) (*domain.Publisher, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.visiblePublisher(ctx, s.store, actor, access.ActionRead, publisherID)
}

// Create adds a publisher for the actor. An identical publisher the actor
// already owns is reported as a duplicate and left untouched.
func (s *PublisherService) Create(ctx context.Context, actor *domain.User, attrs domain.PublisherAttrs) (*domain.Publisher, error) {
	if err := access.Authorize(actor, access.ActionCreate, access.Collection(access.KindPublisher)); err != nil {
		return nil, err
	}
	if err := validate.Validate(attrs); err != nil {
		return nil, err
	}

	publisher, created, err := s.store.FindOrCreatePublisher(ctx, actor.ID, attrs)
	if err != nil {
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	if !created {
		return nil, domainerrors.Duplicate("publisher with these details already exists").
			WithDetails(map[string]string{"id": publisher.ID})
	}

	s.logger.Info("publisher created",
		slog.String("publisher_id", publisher.ID),
		slog.String("user_id", actor.ID),
	)
	return publisher, nil
}

// Update applies req to one of the actor's publishers. Books linked to it see
// the new values.
func (s *PublisherService) Update(ctx context.Context, actor *domain.User, publisherID string, req UpdatePublisherRequest) (*domain.Publisher, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var updated *domain.Publisher
	err := s.store.InTx(ctx, func(q store.Queries) error {
		publisher, err := s.visiblePublisher(ctx, q, actor, access.ActionUpdate, publisherID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			publisher.Name = *req.Name
		}
		if req.Website != nil {
			publisher.Website = *req.Website
		}
		if req.Email != nil {
			publisher.Email = *req.Email
		}
		publisher.Touch()

		if err := q.UpdatePublisher(ctx, publisher); err != nil {
			return mapPublisherErr(err, "update publisher")
		}
		updated = publisher
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("publisher updated", slog.String("publisher_id", updated.ID))
	return updated, nil
}

// Delete removes one of the actor's publishers and its book links.
func (s *PublisherService) Delete(ctx context.Context, actor *domain.User, publisherID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(q store.Queries) error {
		publisher, err := s.visiblePublisher(ctx, q, actor, access.ActionDelete, publisherID)
		if err != nil {
			return err
		}
		if err := q.DeletePublisher(ctx, publisher.ID); err != nil {
			return mapPublisherErr(err, "delete publisher")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("publisher deleted", slog.String("publisher_id", publisherID))
	return nil
}

// visiblePublisher loads a publisher and hides it unless actor owns it.
func (s *PublisherService) visiblePublisher(ctx context.Context, q store.Publishers, actor *domain.User, action access.Action, publisherID string) (*domain.Publisher, error) {
	publisher, err := q.GetPublisher(ctx, publisherID)
	if err != nil {
		return nil, mapPublisherErr(err, "get publisher")
	}
	if err := access.Authorize(actor, action, access.Publisher(publisher)); err != nil {
		s.logger.Warn("publisher access denied",
			slog.String("publisher_id", publisherID),
			slog.String("user_id", actor.ID),
		)
		return nil, err
	}
	return publisher, nil
}

func mapPublisherErr(err error, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("publisher not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
