// Package persistence holds helpers that sit between domain factories and
// repositories.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// MaxIDAttempts bounds the id-collision retry loop. UUID collisions are
// astronomically rare; hitting the bound means something other than chance
// is wrong.
const MaxIDAttempts = 3

// SaveWithIDRetry decouples "construct an entity with a fresh id" from
// "persist it". build must allocate a new identifier on every call; persist
// must report an id uniqueness violation as apperrors.ErrDuplicateID. On
// such a violation the entity is rebuilt and persisted again, up to
// MaxIDAttempts times. Any other error propagates immediately without
// retry; exhausting the attempts yields apperrors.ErrIDAllocationExhausted.
func SaveWithIDRetry[T any](ctx context.Context, build func() (T, error), persist func(context.Context, T) error) (T, error) {
	var zero T
	for attempt := 0; attempt < MaxIDAttempts; attempt++ {
		entity, err := build()
		if err != nil {
			return zero, err
		}
		err = persist(ctx, entity)
		if err == nil {
			return entity, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicateID) {
			return zero, err
		}
	}
	return zero, fmt.Errorf("%w: gave up after %d attempts", apperrors.ErrIDAllocationExhausted, MaxIDAttempts)
}
