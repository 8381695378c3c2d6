package domain

import (
	"fmt"
	"time"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/utils/hashing"
)

// Transaction is the top-level ledger record: a named, dated group of one
// or more balanced entries, owned by exactly one user. The hash fingerprints
// the user-controlled header fields and backs duplicate-submission
// detection.
type Transaction struct {
	TransactionID   EntityID   `json:"transactionID"`
	UserID          EntityID   `json:"userID"`
	Description     string     `json:"description"`
	PostingDate     DateString `json:"postingDate"`
	TransactionDate DateString `json:"transactionDate"`
	Entries         []Entry    `json:"entries"`
	Hash            string     `json:"hash"`
	SoftDelete      SoftDelete
	AuditFields
}

// CreateTransaction builds a new transaction header with a fresh
// identifier. Entries are attached by the transaction service after their
// own assembly.
func CreateTransaction(userID EntityID, description string, postingDate, transactionDate DateString, now time.Time) (Transaction, error) {
	if description == "" {
		return Transaction{}, fmt.Errorf("%w: transaction description is required", apperrors.ErrValidation)
	}
	txn := Transaction{
		TransactionID:   NewEntityID(),
		UserID:          userID,
		Description:     description,
		PostingDate:     postingDate,
		TransactionDate: transactionDate,
		SoftDelete:      NewSoftDelete(),
		AuditFields:     NewAuditFields(now),
	}
	txn.Hash = txn.computeHash()
	return txn, nil
}

func (t Transaction) computeHash() string {
	return hashing.TransactionHash(t.Description, t.PostingDate.String(), t.TransactionDate.String())
}

// ValidateHash recomputes the fingerprint and compares it to the stored
// one. A mismatch means corruption or tampering and is never auto-repaired.
func (t Transaction) ValidateHash() error {
	if t.computeHash() != t.Hash {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrIntegrity, t.TransactionID)
	}
	return nil
}

// UpdateHeader returns a copy with description and/or dates changed and the
// hash recomputed. Nil fields are left untouched.
func (t Transaction) UpdateHeader(description *string, postingDate, transactionDate *DateString, now time.Time) (Transaction, error) {
	if err := t.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return Transaction{}, err
	}
	if description != nil {
		if *description == "" {
			return Transaction{}, fmt.Errorf("%w: transaction description is required", apperrors.ErrValidation)
		}
		t.Description = *description
	}
	if postingDate != nil {
		t.PostingDate = *postingDate
	}
	if transactionDate != nil {
		t.TransactionDate = *transactionDate
	}
	t.AuditFields = t.AuditFields.Touched(now)
	t.Hash = t.computeHash()
	return t, nil
}

// MarkDeleted tombstones the transaction, returning the new state.
func (t Transaction) MarkDeleted(now time.Time) (Transaction, error) {
	if err := t.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return Transaction{}, err
	}
	t.SoftDelete = t.SoftDelete.MarkDeleted(now)
	t.AuditFields = t.AuditFields.Touched(now)
	return t, nil
}
