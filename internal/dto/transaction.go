package dto

import (
	"time"

	"github.com/gorushkin/ledgerly/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateOperationRequest is one raw posting inside an entry: the target
// account, a signed amount in that account's currency, and optionally a
// valuation in the user's base currency.
type CreateOperationRequest struct {
	AccountID        string           `json:"accountID" binding:"required,uuid"`
	Amount           string           `json:"amount" binding:"required"`
	Description      string           `json:"description"`
	BaseAmount       *string          `json:"baseAmount"`
	RateBasePerLocal *decimal.Decimal `json:"rateBasePerLocal"`
}

// CreateEntryRequest is one transfer: exactly two user postings. Balancing
// postings for cross-currency transfers are synthesized server-side.
type CreateEntryRequest struct {
	Description string                   `json:"description"`
	Operations  []CreateOperationRequest `json:"operations" binding:"required,len=2,dive"`
}

// CreateTransactionRequest carries a new transaction with its raw entries.
type CreateTransactionRequest struct {
	Description     string               `json:"description" binding:"required"`
	PostingDate     string               `json:"postingDate" binding:"required"`
	TransactionDate string               `json:"transactionDate" binding:"required"`
	Entries         []CreateEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// UpdateTransactionRequest defines the header fields that may be changed.
type UpdateTransactionRequest struct {
	Description     *string `json:"description"`
	PostingDate     *string `json:"postingDate"`
	TransactionDate *string `json:"transactionDate"`
}

// OperationResponse is the API projection of a single posting.
type OperationResponse struct {
	OperationID      string           `json:"operationID"`
	AccountID        string           `json:"accountID"`
	CurrencyCode     string           `json:"currencyCode"`
	Amount           string           `json:"amount"`
	BaseAmount       *string          `json:"baseAmount,omitempty"`
	BaseCurrencyCode *string          `json:"baseCurrencyCode,omitempty"`
	RateBasePerLocal *decimal.Decimal `json:"rateBasePerLocal,omitempty"`
	Description      string           `json:"description"`
	IsSystem         bool             `json:"isSystem"`
	Hash             string           `json:"hash"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// EntryResponse projects an entry as its two user operations plus any
// system balancing operations, kept apart so clients can render the
// canonical double-entry pair without filtering.
type EntryResponse struct {
	EntryID          string              `json:"entryID"`
	Description      string              `json:"description"`
	Operations       []OperationResponse `json:"operations"`
	SystemOperations []OperationResponse `json:"systemOperations,omitempty"`
}

// TransactionResponse is the API projection of a transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	Description     string          `json:"description"`
	PostingDate     string          `json:"postingDate"`
	TransactionDate string          `json:"transactionDate"`
	Entries         []EntryResponse `json:"entries,omitempty"`
	Hash            string          `json:"hash"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ToOperationResponse converts a domain.Operation to its DTO.
func ToOperationResponse(op domain.Operation) OperationResponse {
	var baseAmount, baseCurrency *string
	if op.BaseAmount != nil {
		s := op.BaseAmount.String()
		baseAmount = &s
	}
	if op.BaseCurrency != nil {
		s := op.BaseCurrency.String()
		baseCurrency = &s
	}
	return OperationResponse{
		OperationID:      op.OperationID.String(),
		AccountID:        op.AccountID.String(),
		CurrencyCode:     op.CurrencyCode.String(),
		Amount:           op.Amount.String(),
		BaseAmount:       baseAmount,
		BaseCurrencyCode: baseCurrency,
		RateBasePerLocal: op.RateBasePerLocal,
		Description:      op.Description,
		IsSystem:         op.IsSystem,
		Hash:             op.Hash,
		CreatedAt:        op.CreatedAt,
		UpdatedAt:        op.UpdatedAt,
	}
}

// ToEntryResponse converts a domain.Entry to its DTO.
func ToEntryResponse(entry domain.Entry) EntryResponse {
	resp := EntryResponse{
		EntryID:     entry.EntryID.String(),
		Description: entry.Description,
	}
	for _, op := range entry.UserOperations() {
		resp.Operations = append(resp.Operations, ToOperationResponse(op))
	}
	for _, op := range entry.SystemOperations() {
		resp.SystemOperations = append(resp.SystemOperations, ToOperationResponse(op))
	}
	return resp
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:   txn.TransactionID.String(),
		Description:     txn.Description,
		PostingDate:     txn.PostingDate.String(),
		TransactionDate: txn.TransactionDate.String(),
		Hash:            txn.Hash,
		CreatedAt:       txn.CreatedAt,
		UpdatedAt:       txn.UpdatedAt,
	}
	for _, entry := range txn.Entries {
		resp.Entries = append(resp.Entries, ToEntryResponse(entry))
	}
	return resp
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListTransactionsResponse wraps the list of transaction headers.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ListOperationsResponse wraps operations listed for one account.
type ListOperationsResponse struct {
	Operations []OperationResponse `json:"operations"`
}
