// Package hashing derives deterministic content fingerprints for ledger
// records. Hashes are computed over fixed, ordered field lists and never
// over volatile fields (timestamps, the hash itself), so equal content
// always produces an equal hash. They back duplicate-submission detection
// and storage integrity checks.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// fieldSeparator joins canonical fields before hashing. Field values never
// contain it unescaped in a way that matters: the field list and order are
// fixed, so any ambiguity is stable across recomputations.
const fieldSeparator = "|"

// TransactionHash fingerprints a transaction's user-controlled fields:
// description, posting date, transaction date. Changing this field list is
// a breaking, versioned change.
func TransactionHash(description, postingDate, transactionDate string) string {
	return digest(description, postingDate, transactionDate)
}

// OperationHash fingerprints an operation. The base-currency amount and
// rate are included so revaluation edits change the fingerprint; empty
// strings stand in when the operation carries no base valuation.
func OperationHash(accountID, description string, isTombstone bool, localAmount, baseAmount, rateBasePerLocal string) string {
	return digest(accountID, description, strconv.FormatBool(isTombstone), localAmount, baseAmount, rateBasePerLocal)
}

func digest(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, fieldSeparator)))
	return hex.EncodeToString(sum[:])
}
