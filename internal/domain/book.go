package domain

import "time"

// DateLayout is the wire and storage format of Book.PublicationDate.
const DateLayout = "2006-01-02"

// Book is a catalogue entry owned by one user. Any authenticated user may read it.
type Book struct {
	Entity
	Title           string       `json:"title"`
	PublicationDate string       `json:"publication_date"`
	ISBN            string       `json:"isbn"`
	OwnerID         string       `json:"owner"`
	Publishers      []*Publisher `json:"publishers"`
	Reviews         []*Review    `json:"reviews"`
}

// IsOwnedBy reports whether userID owns the book.
func (b *Book) IsOwnedBy(userID string) bool {
	return userID != "" && b.OwnerID == userID
}

// PublishedOn parses PublicationDate.
func (b *Book) PublishedOn() (time.Time, error) {
	return time.Parse(DateLayout, b.PublicationDate)
}

// PublisherIDs returns the IDs of the attached publishers in order.
func (b *Book) PublisherIDs() []string {
	ids := make([]string, 0, len(b.Publishers))
	for _, p := range b.Publishers {
		ids = append(ids, p.ID)
	}
	return ids
}
