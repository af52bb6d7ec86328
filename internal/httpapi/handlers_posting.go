package httpapi

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/posting"
)

type postEntryRequest struct {
	AccountID   string `json:"account_id"`
	Direction   string `json:"direction"`
	AmountMinor string `json:"amount_minor"`
	Currency    string `json:"currency"`
}

type postTransactionRequest struct {
	LedgerID  string             `json:"ledger_id"`
	Reference string             `json:"reference"`
	Currency  string             `json:"currency"`
	Entries   []postEntryRequest `json:"entries"`
}

type postTransactionResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Created       bool      `json:"created"`
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	var body postTransactionRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, "INVALID_INPUT", "malformed JSON body", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	ledgerID, err := uuid.Parse(body.LedgerID)
	if err != nil {
		respondError(w, "INVALID_INPUT", "invalid ledger_id", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	entries := make([]posting.EntryInput, 0, len(body.Entries))
	for _, e := range body.Entries {
		accountID, err := uuid.Parse(e.AccountID)
		if err != nil {
			respondError(w, "INVALID_INPUT", "invalid entry account_id", http.StatusBadRequest)
			return http.StatusBadRequest
		}
		amount, err := strconv.ParseInt(e.AmountMinor, 10, 64)
		if err != nil {
			respondError(w, "INVALID_INPUT", "invalid entry amount_minor", http.StatusBadRequest)
			return http.StatusBadRequest
		}
		entries = append(entries, posting.EntryInput{
			AccountID:   accountID,
			Direction:   domain.Direction(e.Direction),
			AmountMinor: amount,
			Currency:    e.Currency,
		})
	}

	req := posting.Request{
		TenantID:  ac.TenantID,
		LedgerID:  ledgerID,
		Reference: body.Reference,
		Currency:  body.Currency,
		Entries:   entries,
	}

	res, err := s.posting.PostTransaction(r.Context(), req)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	status := http.StatusCreated
	if !res.Created {
		status = http.StatusOK
	}
	respondJSON(w, status, postTransactionResponse{TransactionID: res.TransactionID, Created: res.Created})
	return status
}
