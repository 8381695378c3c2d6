package domain

import (
	"fmt"
	"time"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/utils/hashing"
	"github.com/shopspring/decimal"
)

// OperationDraft is a raw posting before it becomes an Operation: the
// resolved target account, the signed amount in that account's currency,
// and optionally a valuation in the user's base currency with the exchange
// rate used. IsSystem marks balancing postings synthesized by the entry
// assembly rather than supplied by the user.
type OperationDraft struct {
	Account          Account
	Amount           Amount
	Description      string
	IsSystem         bool
	BaseAmount       *Amount
	BaseCurrency     *CurrencyCode
	RateBasePerLocal *decimal.Decimal
}

// Operation is a single signed posting of money against one account,
// belonging to exactly one entry. The account reference is weak: the
// operation does not own the account.
type Operation struct {
	OperationID      EntityID         `json:"operationID"`
	UserID           EntityID         `json:"userID"`
	AccountID        EntityID         `json:"accountID"`
	EntryID          EntityID         `json:"entryID"`
	CurrencyCode     CurrencyCode     `json:"currencyCode"`
	Amount           Amount           `json:"amount"`
	BaseAmount       *Amount          `json:"baseAmount,omitempty"`
	BaseCurrency     *CurrencyCode    `json:"baseCurrency,omitempty"`
	RateBasePerLocal *decimal.Decimal `json:"rateBasePerLocal,omitempty"`
	Description      string           `json:"description"`
	IsSystem         bool             `json:"isSystem"`
	Hash             string           `json:"hash"`
	SoftDelete       SoftDelete
	AuditFields
}

// CreateOperation turns a draft into an Operation with a fresh identifier.
// Each call allocates a new id, so the id-retry mechanism can rebuild the
// operation on a collision. The account must belong to the posting user and
// must not be tombstoned.
func CreateOperation(userID, entryID EntityID, draft OperationDraft, now time.Time) (Operation, error) {
	if draft.Account.UserID != userID {
		return Operation{}, fmt.Errorf("%w: account %s belongs to a different user", apperrors.ErrForbidden, draft.Account.AccountID)
	}
	if draft.Account.SoftDelete.IsDeleted() {
		return Operation{}, fmt.Errorf("%w: cannot post to deleted account %s", apperrors.ErrEntityDeleted, draft.Account.AccountID)
	}
	if draft.Amount.Exponent() != draft.Account.CurrencyCode.MinorUnitDigits() {
		return Operation{}, fmt.Errorf("%w: amount does not match currency %s of account %s",
			apperrors.ErrInvalidAmount, draft.Account.CurrencyCode, draft.Account.AccountID)
	}

	op := Operation{
		OperationID:      NewEntityID(),
		UserID:           userID,
		AccountID:        draft.Account.AccountID,
		EntryID:          entryID,
		CurrencyCode:     draft.Account.CurrencyCode,
		Amount:           draft.Amount,
		BaseAmount:       draft.BaseAmount,
		BaseCurrency:     draft.BaseCurrency,
		RateBasePerLocal: draft.RateBasePerLocal,
		Description:      draft.Description,
		IsSystem:         draft.IsSystem,
		SoftDelete:       NewSoftDelete(),
		AuditFields:      NewAuditFields(now),
	}
	op.Hash = op.computeHash()
	return op, nil
}

// computeHash fingerprints the operation's canonical fields.
func (o Operation) computeHash() string {
	var baseAmount, rate string
	if o.BaseAmount != nil {
		baseAmount = o.BaseAmount.String()
	}
	if o.RateBasePerLocal != nil {
		rate = o.RateBasePerLocal.String()
	}
	return hashing.OperationHash(
		o.AccountID.String(),
		o.Description,
		o.SoftDelete.IsDeleted(),
		o.Amount.String(),
		baseAmount,
		rate,
	)
}

// ValidateHash recomputes the fingerprint and compares it to the stored
// one. A mismatch is fatal to the operation in progress.
func (o Operation) ValidateHash() error {
	if o.computeHash() != o.Hash {
		return fmt.Errorf("%w: operation %s", apperrors.ErrIntegrity, o.OperationID)
	}
	return nil
}

// MarkDeleted tombstones the operation, returning the new state. The hash
// is recomputed because the tombstone flag is part of the fingerprint.
func (o Operation) MarkDeleted(now time.Time) (Operation, error) {
	if err := o.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return Operation{}, err
	}
	o.SoftDelete = o.SoftDelete.MarkDeleted(now)
	o.AuditFields = o.AuditFields.Touched(now)
	o.Hash = o.computeHash()
	return o, nil
}
