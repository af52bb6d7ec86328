// Package httpapi is the HTTP surface: routing, request/response shaping,
// auth middleware, and error mapping, instrumented with the same
// Prometheus counter/histogram pair the teacher service exposes.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/llk-ledger/ledger/internal/logging"
	"github.com/llk-ledger/ledger/internal/service/apikey"
	"github.com/llk-ledger/ledger/internal/service/ledger"
	"github.com/llk-ledger/ledger/internal/service/posting"
	"github.com/llk-ledger/ledger/internal/service/read"
)

const (
	apiPrefix   = "/v1"
	adminPrefix = "/v1/admin"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Server wires the services into an http.Handler.
type Server struct {
	router    *mux.Router
	posting   *posting.Service
	read      *read.Service
	ledgers   *ledger.Service
	apiKeys   *apikey.Service
	log       *logging.Logger
	readyFunc func() bool
}

func NewServer(postingSvc *posting.Service, readSvc *read.Service, ledgerSvc *ledger.Service, apiKeySvc *apikey.Service, log *logging.Logger, readyFunc func() bool) *Server {
	if log == nil {
		log = logging.Nop()
	}
	if readyFunc == nil {
		readyFunc = func() bool { return true }
	}
	s := &Server{
		router:    mux.NewRouter(),
		posting:   postingSvc,
		read:      readSvc,
		ledgers:   ledgerSvc,
		apiKeys:   apiKeySvc,
		log:       log,
		readyFunc: readyFunc,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix(apiPrefix).Subrouter()
	api.Use(s.authMiddleware)
	api.Use(requestIDMiddleware)

	api.Handle("/ledgers", instrument("POST", "/v1/ledgers", s.handleCreateLedger)).Methods(http.MethodPost)
	api.Handle("/ledgers", instrument("GET", "/v1/ledgers", s.handleListLedgers)).Methods(http.MethodGet)
	api.Handle("/ledgers/{id}", instrument("GET", "/v1/ledgers/{id}", s.handleGetLedger)).Methods(http.MethodGet)
	api.Handle("/ledgers/{ledger_id}/trial-balance", instrument("GET", "/v1/ledgers/{ledger_id}/trial-balance", s.handleTrialBalance)).Methods(http.MethodGet)

	api.Handle("/accounts", instrument("GET", "/v1/accounts", s.handleListAccounts)).Methods(http.MethodGet)
	api.Handle("/transactions", instrument("POST", "/v1/transactions", s.handlePostTransaction)).Methods(http.MethodPost)
	api.Handle("/transactions", instrument("GET", "/v1/transactions", s.handleListTransactions)).Methods(http.MethodGet)
	api.Handle("/entries", instrument("GET", "/v1/entries", s.handleListEntries)).Methods(http.MethodGet)

	api.Handle("/admin/api-keys", instrument("POST", "/v1/admin/api-keys", s.handleCreateApiKey)).Methods(http.MethodPost)
	api.Handle("/admin/api-keys", instrument("GET", "/v1/admin/api-keys", s.handleListApiKeys)).Methods(http.MethodGet)
	api.Handle("/admin/api-keys/{id}/revoke", instrument("POST", "/v1/admin/api-keys/{id}/revoke", s.handleRevokeApiKey)).Methods(http.MethodPost)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.readyFunc() {
		respondError(w, "NOT_READY", "not ready", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requestIDMiddleware echoes X-Request-Id, generating one if absent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// instrument wraps a handler body with the Prometheus timer+counter pattern
// the teacher service uses for every route.
func instrument(method, endpoint string, fn func(w http.ResponseWriter, r *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(method, endpoint))
		status := fn(w, r)
		timer.ObserveDuration()
		httpRequestsTotal.WithLabelValues(method, endpoint, statusLabel(status)).Inc()
	}
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
