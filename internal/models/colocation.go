package models

import (
	"time"

	"github.com/google/uuid"
)

// Colocation is a household: a named grouping of member ids that share
// expenses. Membership is the authorization boundary for every expense
// operation.
type Colocation struct {
	// ID is the unique identifier for the colocation (UUID format).
	ID string

	// Name is the display name (e.g. "Rue de la Paix 12").
	Name string

	// Members is the list of member user ids.
	Members []string

	// CreatedAt is the Unix timestamp when the colocation was created.
	CreatedAt int64
}

// NewColocation creates a colocation with the creator as its first member.
func NewColocation(name, creatorID string) *Colocation {
	return &Colocation{
		ID:        uuid.New().String(),
		Name:      name,
		Members:   []string{creatorID},
		CreatedAt: time.Now().Unix(),
	}
}

// HasMember reports whether memberID belongs to the colocation.
func (c *Colocation) HasMember(memberID string) bool {
	for _, m := range c.Members {
		if m == memberID {
			return true
		}
	}
	return false
}
