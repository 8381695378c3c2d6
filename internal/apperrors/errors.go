package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrAccountNotFound indicates that a referenced account does not exist or is
// not visible to the requesting user.
var ErrAccountNotFound = errors.New("account not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidAmount indicates a malformed or unrepresentable monetary amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInvalidID indicates a malformed entity identifier.
var ErrInvalidID = errors.New("invalid identifier")

// ErrInvalidCurrency indicates an unknown or malformed currency code.
var ErrInvalidCurrency = errors.New("invalid currency code")

// ErrForbidden indicates that the resource belongs to a different user.
var ErrForbidden = errors.New("access forbidden")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDuplicateID indicates a uniqueness violation on an entity's primary
// identifier. It is recovered locally by the id-retry mechanism and should
// never surface past it.
var ErrDuplicateID = errors.New("duplicate entity identifier")

// ErrIDAllocationExhausted indicates that the bounded id-retry loop ran out
// of attempts without finding a free identifier.
var ErrIDAllocationExhausted = errors.New("identifier allocation attempts exhausted")

// ErrUnbalancedEntry indicates that an entry's operations do not sum to zero
// per currency. Reaching this error means a bug in the balancing code.
var ErrUnbalancedEntry = errors.New("entry operations do not balance to zero")

// ErrEntityDeleted indicates a mutation attempt on a soft-deleted entity.
var ErrEntityDeleted = errors.New("entity has been deleted")

// ErrIntegrity indicates a content hash mismatch on a stored entity.
var ErrIntegrity = errors.New("content hash mismatch")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
