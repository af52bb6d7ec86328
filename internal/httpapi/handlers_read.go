package httpapi

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/read"
)

// queryFromRequest pulls ?limit&cursor off the request into a read.Query; the
// service layer owns range validation and cursor decoding. A non-nil error
// here is strictly malformed-input (a non-integer limit), distinct from the
// service's own range/cursor validation errors.
func queryFromRequest(r *http.Request, tenantID uuid.UUID) (read.Query, error) {
	q := read.Query{TenantID: tenantID}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return read.Query{}, errBadLimit
		}
		q.Limit = &limit
	}

	if raw := r.URL.Query().Get("cursor"); raw != "" {
		q.RawCursor = &raw
	}

	return q, nil
}

var errBadLimit = errInvalidInput("limit must be an integer")

type errInvalidInput string

func (e errInvalidInput) Error() string { return string(e) }

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	q, statusErr := queryFromRequest(r, ac.TenantID)
	if statusErr != nil {
		respondError(w, "INVALID_INPUT", statusErr.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	page, err := s.read.ListAccounts(r.Context(), q)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	views := make([]accountView, 0, len(page.Data))
	for _, a := range page.Data {
		views = append(views, toAccountView(a))
	}
	respondJSON(w, http.StatusOK, pageView[accountView]{Data: views, NextCursor: page.NextCursor})
	return http.StatusOK
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	q, statusErr := queryFromRequest(r, ac.TenantID)
	if statusErr != nil {
		respondError(w, "INVALID_INPUT", statusErr.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	page, err := s.read.ListTransactions(r.Context(), q)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	views := make([]transactionView, 0, len(page.Data))
	for _, t := range page.Data {
		views = append(views, toTransactionView(t))
	}
	respondJSON(w, http.StatusOK, pageView[transactionView]{Data: views, NextCursor: page.NextCursor})
	return http.StatusOK
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) int {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		mapError(w, errs.Unauthorized("API key is required"))
		return http.StatusUnauthorized
	}

	q, statusErr := queryFromRequest(r, ac.TenantID)
	if statusErr != nil {
		respondError(w, "INVALID_INPUT", statusErr.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}

	page, err := s.read.ListEntries(r.Context(), q)
	if err != nil {
		mapError(w, err)
		return statusFromErr(err)
	}

	views := make([]entryView, 0, len(page.Data))
	for _, e := range page.Data {
		views = append(views, toEntryView(e))
	}
	respondJSON(w, http.StatusOK, pageView[entryView]{Data: views, NextCursor: page.NextCursor})
	return http.StatusOK
}
