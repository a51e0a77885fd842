package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/teleview-org/teleview/engine"
)

// ============================================================================
// HTTP API — Read-only JSON surface over one generated snapshot
// ============================================================================
// Every endpoint selects a view from the same immutable dataset; filters
// arrive as query parameters and never mutate anything, so concurrent
// requests need no locking.
// ============================================================================

// Server serves a generated dataset over HTTP.
type Server struct {
	dataset    *engine.Dataset
	snapshotID string
	httpServer *http.Server
	router     *mux.Router
}

// Options configures the server.
type Options struct {
	Addr           string
	AllowedOrigins []string
}

// New builds a server around an already-generated dataset. The snapshot
// id is minted once and echoed by /api/health so clients can detect a
// regenerated backend.
func New(dataset *engine.Dataset, opts Options) *Server {
	s := &Server{
		dataset:    dataset,
		snapshotID: uuid.NewString(),
		router:     mux.NewRouter(),
	}
	s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      c.Handler(logRequests(s.router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/organizations", s.handleOrganizations).Methods("GET")
	api.HandleFunc("/accounts", s.handleAccounts).Methods("GET")
	api.HandleFunc("/bills", s.handleBills).Methods("GET")
	api.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	api.HandleFunc("/dso/trend", s.handleDSOTrend).Methods("GET")
	api.HandleFunc("/insights", s.handleInsights).Methods("GET")
	api.HandleFunc("/service-utilization", s.handleServiceUtilization).Methods("GET")
	api.HandleFunc("/surprise-histogram", s.handleSurpriseHistogram).Methods("GET")
	api.HandleFunc("/high-risk", s.handleHighRisk).Methods("GET")
}

// Start begins serving and blocks until the listener fails or the server
// is shut down.
func (s *Server) Start() error {
	log.Printf("🌐 Serving analytics API on %s (snapshot %s)", s.httpServer.Addr, s.snapshotID)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("🛑 Shutting down analytics API")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ── handlers ────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"snapshotId":  s.snapshotID,
		"generatedAt": s.dataset.GeneratedAt,
	})
}

func (s *Server) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.Organizations)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.Accounts)
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.Bills)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.Metrics())
}

func (s *Server) handleDSOTrend(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.DSOTrend())
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	insights := view.Insights()
	if insights == nil {
		insights = []engine.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleServiceUtilization(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.ServiceUtilization())
}

func (s *Server) handleSurpriseHistogram(w http.ResponseWriter, r *http.Request) {
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.SurpriseHistogram())
}

func (s *Server) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	view := s.dataset.Select(filterFromQuery(r))
	writeJSON(w, http.StatusOK, view.HighRisk(limit))
}

// ── helpers ─────────────────────────────────────────────────────────────────

func filterFromQuery(r *http.Request) engine.Filter {
	q := r.URL.Query()
	return engine.Filter{
		Size:      engine.OrgSize(q.Get("size")),
		Risk:      engine.RiskCategory(q.Get("risk")),
		OrgID:     q.Get("org"),
		AccountID: q.Get("account"),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("📡 %s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start).Round(time.Microsecond))
	})
}
