package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	accesscontrol "docketdesk/contexts/identity-access/access-control"
	exportservice "docketdesk/contexts/public-comment/export-service"
	moderationservice "docketdesk/contexts/public-comment/moderation-service"
	"docketdesk/internal/platform/metrics"
	"docketdesk/internal/platform/objectstore"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	_ "docketdesk/internal/platform/httpserver/docs"
)

const (
	headerUserID         = "X-User-Id"
	headerTenantID       = "X-Tenant-Id"
	headerIdempotencyKey = "Idempotency-Key"

	maxJSONBody       = 1 << 20
	maxSubmissionBody = 32 << 20
)

// Modules are the bounded contexts served over HTTP.
type Modules struct {
	Access     accesscontrol.Module
	Moderation moderationservice.Module
	Exports    exportservice.Module
}

type Options struct {
	Addr                string
	Signer              *objectstore.Signer
	Artifacts           objectstore.Store
	Metrics             *metrics.Registry
	ExportRatePerMinute int
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *slog.Logger
}

type Server struct {
	mux           *http.ServeMux
	httpServer    *http.Server
	logger        *slog.Logger
	addr          string
	access        accesscontrol.Module
	moderation    moderationservice.Module
	exports       exportservice.Module
	signer        *objectstore.Signer
	artifacts     objectstore.Store
	metrics       *metrics.Registry
	exportLimiter *tenantLimiter
	ready         func(ctx context.Context) error
	tracer        trace.Tracer
}

func New(modules Modules, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		access:        modules.Access,
		moderation:    modules.Moderation,
		exports:       modules.Exports,
		signer:        opts.Signer,
		artifacts:     opts.Artifacts,
		metrics:       opts.Metrics,
		exportLimiter: newTenantLimiter(opts.ExportRatePerMinute),
		ready:         opts.Ready,
		tracer:        otel.Tracer("docketdesk/internal/platform/httpserver"),
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.route("GET /v1/members", s.handleListMembers)
	s.route("GET /v1/members/assignable-roles", s.handleAssignableRoles)
	s.route("POST /v1/members/invitations", s.handleInviteMember)
	s.route("POST /v1/members/invitations/accept", s.handleAcceptInvitation)
	s.route("PATCH /v1/members/{actor_id}/role", s.handleChangeRole)
	s.route("POST /v1/members/{actor_id}/deactivate", s.handleDeactivateMember)

	s.route("GET /v1/dockets", s.handleListDockets)
	s.route("POST /v1/dockets", s.handleCreateDocket)
	s.route("POST /v1/public/dockets/{docket_id}/comments", s.handleSubmitComment)

	s.route("GET /v1/comments", s.handleListComments)
	s.route("GET /v1/comments/stats", s.handleCommentStats)
	s.route("POST /v1/comments/bulk-moderate", s.handleBulkModerate)
	s.route("GET /v1/comments/{comment_id}", s.handleGetComment)
	s.route("GET /v1/comments/{comment_id}/log", s.handleCommentLog)
	s.route("POST /v1/comments/{comment_id}/moderate", s.handleModerate)
	s.route("GET /v1/comments/{comment_id}/attachments/{attachment_id}/preview", s.handleAttachmentPreview)

	s.route("POST /v1/exports", s.handleCreateExport)
	s.route("GET /v1/exports", s.handleListExports)
	s.route("GET /v1/exports/{job_id}", s.handleGetExport)
	s.route("DELETE /v1/exports/{job_id}", s.handleDeleteExport)
	s.route("GET /v1/exports/{job_id}/download", s.handleDownloadExport)

	s.route("GET /v1/artifacts", s.handleArtifactDownload)
}

// route registers pattern with a span and request metrics keyed by the
// pattern rather than the raw path.
func (s *Server) route(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx, span := s.tracer.Start(r.Context(), pattern, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.route", pattern),
			attribute.Int("http.status_code", rec.status),
			attribute.String("tenant.id", strings.TrimSpace(r.Header.Get(headerTenantID))),
		)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(pattern, rec.status, time.Since(started))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type healthResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

var errInvalidJSON = errors.New("request body must be valid JSON")

// decodeJSON reads one JSON document no larger than limit bytes. An empty body
// leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", errInvalidJSON, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %s", errInvalidJSON, err.Error())
	}
	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// caller reads the tenant and user headers every authenticated route needs.
func caller(r *http.Request) (tenantID string, userID string) {
	return strings.TrimSpace(r.Header.Get(headerTenantID)), strings.TrimSpace(r.Header.Get(headerUserID))
}
