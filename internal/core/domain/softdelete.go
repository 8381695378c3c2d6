package domain

import (
	"fmt"
	"time"

	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// SoftDelete is a tombstone flag carried by every mutable entity. Deletion
// is logical: the record stays, marked inactive. The value is immutable;
// MarkDeleted returns a new value and leaves the receiver untouched.
type SoftDelete struct {
	deleted   bool
	deletedAt *time.Time
}

// NewSoftDelete returns a live (non-deleted) tombstone value.
func NewSoftDelete() SoftDelete {
	return SoftDelete{}
}

// SoftDeleteFromPersistence restores a tombstone from storage.
func SoftDeleteFromPersistence(deletedAt *time.Time) SoftDelete {
	if deletedAt == nil {
		return SoftDelete{}
	}
	at := *deletedAt
	return SoftDelete{deleted: true, deletedAt: &at}
}

// MarkDeleted returns a deleted copy stamped with now.
func (s SoftDelete) MarkDeleted(now time.Time) SoftDelete {
	at := now
	return SoftDelete{deleted: true, deletedAt: &at}
}

// IsDeleted reports whether the entity is tombstoned.
func (s SoftDelete) IsDeleted() bool { return s.deleted }

// DeletedAt returns the deletion timestamp, or nil for live entities.
func (s SoftDelete) DeletedAt() *time.Time {
	if s.deletedAt == nil {
		return nil
	}
	at := *s.deletedAt
	return &at
}

// ValidateUpdateAllowed fails when the entity is tombstoned. Every mutating
// factory method calls this before producing a new state.
func (s SoftDelete) ValidateUpdateAllowed() error {
	if s.deleted {
		return fmt.Errorf("%w: cannot update a deleted entity", apperrors.ErrEntityDeleted)
	}
	return nil
}
