package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/llk-ledger/ledger/internal/errs"
)

type createLedgerRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateLedger(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	var req createLedgerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "INVALID_INPUT", "malformed JSON body", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	l, err := s.ledgers.CreateLedger(r.Context(), ac.TenantID, req.Name)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	respondJSON(w, http.StatusCreated, l)
	return http.StatusCreated
}

func (s *Server) handleListLedgers(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	ledgers, err := s.ledgers.GetLedgersByTenant(r.Context(), ac.TenantID)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	respondJSON(w, http.StatusOK, ledgers)
	return http.StatusOK
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, "INVALID_INPUT", "invalid ledger id", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	l, err := s.ledgers.GetLedgerByID(r.Context(), ac.TenantID, id)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	respondJSON(w, http.StatusOK, l)
	return http.StatusOK
}

func (s *Server) handleTrialBalance(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	idStr := mux.Vars(r)["ledger_id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, "INVALID_INPUT", "invalid ledger id", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	tb, err := s.read.TrialBalance(r.Context(), ac.TenantID, id)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	respondJSON(w, http.StatusOK, toTrialBalanceView(tb))
	return http.StatusOK
}
