// Package api provides the HTTP REST API server for MarketDesk.
//
// It exposes the surveillance, regime, regulatory impact, client brief,
// research draft and earnings-call operations, the audit log (list,
// export and WebSocket stream), health checks, configuration and
// Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seenimoa/marketdesk/internal/agent"
	"github.com/seenimoa/marketdesk/internal/audit"
	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/logger"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/internal/schema"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// Version is reported by the health endpoint; set at build time.
var Version = "dev"

// defaultAuditLimit is the number of audit entries listed when no limit is given.
const defaultAuditLimit = 50

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	desk    *agent.Desk
	audit   *audit.Log
	metrics *metrics.Metrics
	log     *zap.Logger
	wsHub   *WSHub
	now     func() time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	auditLog := audit.NewLog(cfg.Audit.Capacity)
	m := metrics.New(auditLog.Len)

	srv := &Server{
		cfg:     cfg,
		desk:    agent.NewFromConfig(cfg, auditLog, m, log),
		audit:   auditLog,
		metrics: m,
		log:     log,
		wsHub:   NewWSHub(log.Named("ws")),
		now:     time.Now,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Desk returns the analysis desk behind the server.
func (s *Server) Desk() *agent.Desk { return s.desk }

// AuditLog returns the server's audit log.
func (s *Server) AuditLog() *audit.Log { return s.audit }

// Start runs the WebSocket hub and streams audit entries into it until
// ctx is done.
func (s *Server) Start(ctx context.Context) {
	go s.wsHub.Run(ctx)
	go s.streamAudit(ctx)
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// Prometheus
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket routes sit outside the timeout middleware.
		r.Get("/ws", s.handleWebSocket)
		r.Get("/ws/audit", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(120 * time.Second))

			// Health (also available at /health)
			r.Get("/health", s.handleHealth)
			r.Get("/llm/health", s.handleLLMHealth)

			// Analysis
			r.Post("/surveillance/triage", s.handleSurveillance)
			r.Post("/regime/analyze", s.handleRegime)
			r.Post("/regimpact/analyze", s.handleRegImpact)
			r.Get("/regimpact/feed", s.handleRegFeed)
			r.Post("/client/brief", s.handleClientBrief)
			r.Post("/research/draft", s.handleResearchDraft)
			r.Post("/meetings/analyze", s.handleMeetingsAnalyze)
			r.Get("/report", s.handleReport)

			// Audit
			r.Get("/audit", s.handleAuditList)
			r.Post("/audit/export", s.handleAuditExport)

			// Configuration
			r.Get("/config", s.handleGetConfig)
			r.Put("/config", s.handleUpdateConfig)
			r.Get("/config/keys", s.handleGetConfigKeys)
		})
	})

	return r
}

// ============================================================
// Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuditListResponse is returned by GET /api/v1/audit.
type AuditListResponse struct {
	Success bool                `json:"success"`
	Data    []models.AuditEntry `json:"data"`
	Total   int                 `json:"total"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	Version      string `json:"version"`
	LLMAvailable bool   `json:"llm_available"`
	Timestamp    string `json:"timestamp"`
}

// LLMHealthResponse is returned by GET /api/v1/llm/health.
type LLMHealthResponse struct {
	Live  bool   `json:"live"`
	Model string `json:"model"`
	At    string `json:"at"`
	Mode  string `json:"mode"` // "Live" or "Mock"

	// Providers is filled only for ?ping=true: provider name to "ok" or
	// the ping error.
	Providers map[string]string `json:"providers,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Success:      true,
		Status:       "ok",
		Version:      Version,
		LLMAvailable: s.desk.LiveAvailable(),
		Timestamp:    s.now().UTC().Format(time.RFC3339),
	})
}

// handleLLMHealth reports the text-generation backend.
//
//	GET /api/v1/llm/health?ping=true
func (s *Server) handleLLMHealth(w http.ResponseWriter, r *http.Request) {
	resp := LLMHealthResponse{
		Live: s.desk.LiveAvailable(),
		At:   s.now().UTC().Format(time.RFC3339),
		Mode: "Mock",
	}
	if resp.Live {
		resp.Mode = "Live"
	}
	resp.Model = s.cfg.LLM.Model
	if rt := s.desk.Router(); resp.Live && rt != nil && rt.Model() != "" {
		resp.Model = rt.Model()
	}
	if ping, _ := strconv.ParseBool(r.URL.Query().Get("ping")); ping {
		resp.Providers = s.pingProviders(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) pingProviders(ctx context.Context) map[string]string {
	out := map[string]string{}
	rt := s.desk.Router()
	if rt == nil {
		return out
	}
	for name, err := range rt.HealthCheck(ctx) {
		if err != nil {
			s.log.Warn("llm provider unhealthy", zap.String("provider", name), zap.Error(err))
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	return out
}

func (s *Server) handleSurveillance(w http.ResponseWriter, r *http.Request) {
	var req agent.SurveillanceRequest
	if !s.decodeBody(w, r, agent.OpSurveillance, agent.RouteSurveillance, &req) {
		return
	}
	res, err := s.desk.Surveillance(r.Context(), req)
	s.respond(w, agent.OpSurveillance, res, err)
}

func (s *Server) handleRegime(w http.ResponseWriter, r *http.Request) {
	var req agent.RegimeRequest
	if !s.decodeBody(w, r, agent.OpRegime, agent.RouteRegime, &req) {
		return
	}
	res, err := s.desk.Regime(r.Context(), req)
	s.respond(w, agent.OpRegime, res, err)
}

func (s *Server) handleRegImpact(w http.ResponseWriter, r *http.Request) {
	var req agent.RegImpactRequest
	if !s.decodeBody(w, r, agent.OpRegImpact, agent.RouteRegImpact, &req) {
		return
	}
	res, err := s.desk.RegImpact(r.Context(), req)
	s.respond(w, agent.OpRegImpact, res, err)
}

func (s *Server) handleClientBrief(w http.ResponseWriter, r *http.Request) {
	var req agent.BriefRequest
	if !s.decodeBody(w, r, agent.OpClientBrief, agent.RouteClientBrief, &req) {
		return
	}
	res, err := s.desk.ClientBrief(r.Context(), req)
	s.respond(w, agent.OpClientBrief, res, err)
}

func (s *Server) handleResearchDraft(w http.ResponseWriter, r *http.Request) {
	var req agent.ResearchRequest
	if !s.decodeBody(w, r, agent.OpResearch, agent.RouteResearch, &req) {
		return
	}
	res, err := s.desk.ResearchDraft(r.Context(), req)
	s.respond(w, agent.OpResearch, res, err)
}

func (s *Server) handleMeetingsAnalyze(w http.ResponseWriter, r *http.Request) {
	var req agent.MeetingsRequest
	if !s.decodeBody(w, r, agent.OpMeetings, agent.RouteMeetings, &req) {
		return
	}
	res, err := s.desk.MeetingsAnalyze(r.Context(), req)
	s.respond(w, agent.OpMeetings, res, err)
}

// handleRegFeed lists notices from the configured regulatory feeds, or
// from ?url=... when given. With ?analyze=true each notice is mapped.
func (s *Server) handleRegFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	urls := q["url"]
	limit, _ := strconv.Atoi(q.Get("limit"))
	analyze, _ := strconv.ParseBool(q.Get("analyze"))

	var (
		data any
		err  error
	)
	if analyze {
		data, err = s.desk.FeedImpact(r.Context(), urls, limit, nil, q.Get("mode"))
	} else {
		data, err = s.desk.Notices(r.Context(), urls, limit)
	}
	switch {
	case errors.Is(err, agent.ErrNoFeed):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, "failed to fetch regulatory feeds: "+err.Error())
	default:
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
	}
}

func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, AuditListResponse{
		Success: true,
		Data:    s.audit.Recent(limit),
		Total:   s.audit.Len(),
	})
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	export := s.audit.Export()
	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export audit logs")
		return
	}
	filename := fmt.Sprintf("audit-log-%s.json", export.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.log.Warn("failed to write audit export", zap.Error(err))
	}
}

// ============================================================
// Helpers
// ============================================================

// decodeBody reads the JSON request body into v. An empty body is an
// empty request. A malformed body is answered with 400, audited as a
// failed invocation of route and counted as an invalid op.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, op, route string, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	start := time.Now()
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	err = fmt.Errorf("%w: request body: %v", agent.ErrInvalidInput, err)
	s.audit.Emit(route, audit.FailedInputs, "Error: "+err.Error(), false)
	s.metrics.Observe(op, metrics.OutcomeInvalid, time.Since(start))
	writeError(w, http.StatusBadRequest, err.Error())
	return false
}

// respond maps an operation outcome onto the JSON envelope and notifies
// WebSocket clients.
func (s *Server) respond(w http.ResponseWriter, op string, res any, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrInvalidInput) {
			status = http.StatusBadRequest
		} else if errors.Is(err, schema.ErrSchemaViolation) {
			s.log.Error("result failed schema validation", zap.String("operation", op), zap.Error(err))
		}
		writeError(w, status, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: MsgAnalysisComplete,
		Data: map[string]any{"operation": op},
	})
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
