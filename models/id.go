package models

import "github.com/google/uuid"

// NewID returns a time-ordered UUID. V7 ids keep insertion order roughly
// monotonic, which keeps the primary key index append-friendly.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		return uuid.New()
	}
	return id
}
