// Package ids issues identifiers for chat messages and events.
package ids

import (
	"strconv"

	"github.com/google/uuid"
)

// Provider issues fresh identifiers.
type Provider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs a Provider that issues UUIDv7 identifiers.
// UUIDv7 embeds a millisecond timestamp, so identifiers are derived from the
// current time and still unique when two are issued within the same millisecond.
func NewUUIDProvider() Provider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

// Sequence is a deterministic Provider for tests and fixtures.
type Sequence struct {
	Prefix string
	next   int
}

// NewID returns Prefix followed by an increasing counter starting at 1.
func (s *Sequence) NewID() (string, error) {
	s.next++
	return s.Prefix + strconv.Itoa(s.next), nil
}
