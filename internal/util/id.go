package util

import "github.com/google/uuid"

// NewID returns a random UUID string used as an entity identifier.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether s is a structurally valid entity identifier.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
