// Package access decides whether an actor may perform an action on a resource.
//
// Rules, checked in order:
//
//  1. There must be an actor.
//  2. Books are readable by everyone and writable by their owner.
//  3. Publishers exist only for their owner; anyone else sees not-found.
//  4. Reviews under a book may be listed and created by any actor.
package access

import (
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
)

// Action is what the actor wants to do.
type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind is the resource type being accessed.
type Kind string

const (
	KindBook      Kind = "book"
	KindPublisher Kind = "publisher"
	KindReview    Kind = "review"
)

// Owned is implemented by resources with a single owning user.
type Owned interface {
	IsOwnedBy(userID string) bool
}

// Resource describes the target of an action. Target is nil for
// collection-level actions (list, create).
type Resource struct {
	Kind   Kind
	Target Owned
}

// Book describes an existing book.
func Book(b *domain.Book) Resource {
	return Resource{Kind: KindBook, Target: b}
}

// Publisher describes an existing publisher.
func Publisher(p *domain.Publisher) Resource {
	return Resource{Kind: KindPublisher, Target: p}
}

func (r Resource) ownedBy(userID string) bool {
	return r.Target != nil && r.Target.IsOwnedBy(userID)
}

// Collection describes the set of all resources of kind.
func Collection(kind Kind) Resource {
	return Resource{Kind: kind}
}

// Authorize returns nil when actor may perform action on res, and a coded
// domain error otherwise: Unauthorized, Forbidden, or NotFound for
// publishers hidden from the actor.
func Authorize(actor *domain.User, action Action, res Resource) error {
	if actor == nil || actor.ID == "" {
		return domainerrors.Unauthorized("authentication credentials were not provided")
	}

	switch res.Kind {
	case KindBook:
		return authorizeBook(actor, action, res)
	case KindPublisher:
		return authorizePublisher(actor, action, res)
	case KindReview:
		switch action {
		case ActionList, ActionRead, ActionCreate:
			return nil
		}
		return domainerrors.Forbiddenf("cannot %s reviews here", action)
	default:
		return domainerrors.Forbiddenf("unknown resource kind %q", res.Kind)
	}
}

func authorizeBook(actor *domain.User, action Action, res Resource) error {
	switch action {
	case ActionList, ActionRead, ActionCreate:
		return nil
	case ActionUpdate, ActionDelete:
		if res.ownedBy(actor.ID) {
			return nil
		}
		return domainerrors.Forbidden("you do not have permission to perform this action")
	default:
		return domainerrors.Forbiddenf("unknown action %q", action)
	}
}

func authorizePublisher(actor *domain.User, action Action, res Resource) error {
	switch action {
	case ActionList, ActionCreate:
		// The listing itself is filtered by owner; creation assigns the actor.
		return nil
	case ActionRead, ActionUpdate, ActionDelete:
		if res.ownedBy(actor.ID) {
			return nil
		}
		return domainerrors.NotFound("publisher not found")
	default:
		return domainerrors.Forbiddenf("unknown action %q", action)
	}
}
