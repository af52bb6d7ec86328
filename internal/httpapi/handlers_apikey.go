package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/apikey"
)

type createApiKeyRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type createApiKeyResponse struct {
	ApiKey domain.ApiKey `json:"api_key"`
	Key    string        `json:"key"`
}

func (s *Server) handleCreateApiKey(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	var req createApiKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "INVALID_INPUT", "malformed JSON body", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	created, err := s.apiKeys.CreateApiKey(r.Context(), ac, apikey.CreateApiKeyInput{
		TenantID: ac.TenantID,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	respondJSON(w, http.StatusCreated, createApiKeyResponse{ApiKey: created.Key, Key: created.RawKey})
	return http.StatusCreated
}

func (s *Server) handleListApiKeys(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	keys, err := s.apiKeys.ListApiKeys(r.Context(), ac)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	respondJSON(w, http.StatusOK, keys)
	return http.StatusOK
}

func (s *Server) handleRevokeApiKey(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, "INVALID_INPUT", "invalid api key id", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	if err := s.apiKeys.RevokeApiKey(r.Context(), ac, id); err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return http.StatusNoContent
}
