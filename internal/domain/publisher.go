package domain

// PublisherAttrs is the identity of a publisher within one owner's scope.
// Two publishers of the same owner are the same publisher only when all
// three fields match exactly.
type PublisherAttrs struct {
	Name    string `json:"name" validate:"required,max=255"`
	Website string `json:"website" validate:"required,url,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
}

// Publisher is visible only to its owner.
type Publisher struct {
	Entity
	PublisherAttrs
	OwnerID string `json:"owner"`
}

// IsOwnedBy reports whether userID owns the publisher.
func (p *Publisher) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}
