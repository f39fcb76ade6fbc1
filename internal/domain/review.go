package domain

// Review is written by any authenticated user and attached to one or more books.
// Authorship is independent of book ownership.
type Review struct {
	Entity
	Title    string `json:"title"`
	Content  string `json:"content"`
	Rating   int    `json:"rating"`
	AuthorID string `json:"author"`
}
