package domain

import (
	"fmt"
	"time"

	"github.com/gorushkin/ledgerly/internal/apperrors"
)

// Entry is a balanced group of operations representing one logical transfer
// within a transaction. The user supplies exactly two postings; when those
// span multiple currencies, the entry additionally carries one system
// posting per unbalanced currency against the user's currency-trading
// accounts.
type Entry struct {
	EntryID       EntityID    `json:"entryID"`
	UserID        EntityID    `json:"userID"`
	TransactionID EntityID    `json:"transactionID"`
	Description   string      `json:"description"`
	Operations    []Operation `json:"operations"`
	SoftDelete    SoftDelete
	AuditFields
}

// currencyNets sums draft amounts per currency, reporting currencies in the
// order they were first encountered.
func currencyNets(drafts []OperationDraft) ([]CurrencyCode, map[CurrencyCode]Amount, error) {
	order := make([]CurrencyCode, 0, len(drafts))
	nets := make(map[CurrencyCode]Amount, len(drafts))
	for _, d := range drafts {
		code := d.Account.CurrencyCode
		net, seen := nets[code]
		if !seen {
			order = append(order, code)
			net = ZeroAmount(code.MinorUnitDigits())
		}
		sum, err := net.Add(d.Amount)
		if err != nil {
			return nil, nil, err
		}
		nets[code] = sum
	}
	return order, nets, nil
}

// BalanceDrafts implements the cross-currency balancing algorithm: for each
// currency whose user-supplied postings do not net to zero, it appends one
// system draft of the opposite amount against that user's system account
// for the currency. Already-balanced single-currency input is returned
// unchanged. System drafts are appended in the order their currencies were
// first encountered in the input.
func BalanceDrafts(drafts []OperationDraft, systemAccounts map[CurrencyCode]Account) ([]OperationDraft, error) {
	order, nets, err := currencyNets(drafts)
	if err != nil {
		return nil, err
	}
	balanced := drafts
	for _, code := range order {
		net := nets[code]
		if net.IsZero() {
			continue
		}
		sysAcc, ok := systemAccounts[code]
		if !ok {
			return nil, fmt.Errorf("%w: no system account resolved for currency %s", apperrors.ErrInternal, code)
		}
		balanced = append(balanced, OperationDraft{
			Account:     sysAcc,
			Amount:      net.Neg(),
			Description: fmt.Sprintf("Balancing %s", code),
			IsSystem:    true,
		})
	}
	return balanced, nil
}

// CreateEntry validates a draft set and builds an Entry with a fresh
// identifier. Operations are attached afterwards by the operation factory;
// the invariants are checked here, over the drafts, so an invalid entry is
// never persisted.
func CreateEntry(userID, transactionID EntityID, description string, drafts []OperationDraft, now time.Time) (Entry, error) {
	userDrafts := 0
	for _, d := range drafts {
		if !d.IsSystem {
			userDrafts++
		}
	}
	if userDrafts != 2 {
		return Entry{}, fmt.Errorf("%w: entry must contain exactly two user operations, got %d", apperrors.ErrValidation, userDrafts)
	}

	// BalanceDrafts constructs zero nets for every currency; a non-zero net
	// here means a bug upstream, not bad user input.
	_, nets, err := currencyNets(drafts)
	if err != nil {
		return Entry{}, err
	}
	for code, net := range nets {
		if !net.IsZero() {
			return Entry{}, fmt.Errorf("%w: currency %s nets to %s", apperrors.ErrUnbalancedEntry, code, net)
		}
	}

	return Entry{
		EntryID:       NewEntityID(),
		UserID:        userID,
		TransactionID: transactionID,
		Description:   description,
		SoftDelete:    NewSoftDelete(),
		AuditFields:   NewAuditFields(now),
	}, nil
}

// UserOperations returns the user-supplied postings, always two for an
// entry built through CreateEntry.
func (e Entry) UserOperations() []Operation {
	out := make([]Operation, 0, 2)
	for _, op := range e.Operations {
		if !op.IsSystem {
			out = append(out, op)
		}
	}
	return out
}

// SystemOperations returns the balancing postings, possibly empty.
func (e Entry) SystemOperations() []Operation {
	var out []Operation
	for _, op := range e.Operations {
		if op.IsSystem {
			out = append(out, op)
		}
	}
	return out
}

// MarkDeleted tombstones the entry, returning the new state.
func (e Entry) MarkDeleted(now time.Time) (Entry, error) {
	if err := e.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return Entry{}, err
	}
	e.SoftDelete = e.SoftDelete.MarkDeleted(now)
	e.AuditFields = e.AuditFields.Touched(now)
	return e, nil
}
