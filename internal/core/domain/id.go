package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// EntityID is a validated UUID identifier for a domain entity.
type EntityID string

// NewEntityID allocates a fresh random identifier.
func NewEntityID() EntityID {
	return EntityID(uuid.NewString())
}

// EntityIDFromPersistence validates an identifier restored from storage or
// supplied by a caller.
func EntityIDFromPersistence(id string) (EntityID, error) {
	if err := uuid.Validate(id); err != nil {
		return "", fmt.Errorf("%w: %q is not a valid UUID", apperrors.ErrInvalidID, id)
	}
	return EntityID(id), nil
}

// String implements fmt.Stringer.
func (id EntityID) String() string { return string(id) }
