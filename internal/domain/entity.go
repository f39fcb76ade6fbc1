// Package domain holds the Shelfkeep entities: users, books, publishers and reviews.
package domain

import "time"

// Entity carries the identity and timestamps shared by every persisted record.
type Entity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (e *Entity) InitTimestamps() {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
}

// Touch bumps UpdatedAt. Call it whenever a mutable field changes.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
