package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ganot/shipdash/internal/domain/activity"
	"github.com/ganot/shipdash/internal/domain/order"
	"github.com/ganot/shipdash/internal/domain/workclock"
	"github.com/ganot/shipdash/internal/odoo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// OrderService defines order operations needed over HTTP.
type OrderService interface {
	FetchPending(ctx context.Context, tenantID string) ([]order.SalesOrder, error)
	Dashboard(ctx context.Context, tenantID string, q order.Query) (*order.Dashboard, error)
}

// ActivityService defines activity operations needed over HTTP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Options wires the HTTP server.
type Options struct {
	Orders   OrderService
	Activity ActivityService
	// MCP is mounted at /mcp when set. It authenticates on its own.
	MCP http.Handler
	// Auth guards the /api routes; nil assigns DefaultTenant instead.
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	orders   OrderService
	activity ActivityService
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{orders: opts.Orders, activity: opts.Activity, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		} else {
			r.Use(DefaultTenantMiddleware)
		}
		r.Use(noStore)
		r.Get("/odoo", srv.handleOdoo)
		r.Get("/orders", srv.handleOrders)
		r.Get("/activity", srv.handleActivity)
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type salesOrdersResponse struct {
	SalesOrders []order.SalesOrder `json:"salesOrders"`
}

func (s *Server) handleOdoo(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := TenantFromContext(r.Context())
	rows, err := s.orders.FetchPending(r.Context(), tenantID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, salesOrdersResponse{SalesOrders: rows})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := TenantFromContext(r.Context())
	query := r.URL.Query()

	q := order.Query{
		Status:  workclock.Status(query.Get("status")),
		Website: query.Get("website"),
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "page must be a number")
			return
		}
		q.Page = page
	}

	dash, err := s.orders.Dashboard(r.Context(), tenantID, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

type activityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := TenantFromContext(r.Context())
	query := r.URL.Query()

	var opts activity.ListActivityOptions
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		opts.Limit = limit
	}
	if raw := query.Get("type"); raw != "" {
		typ := activity.ActivityType(raw)
		opts.ActivityType = &typ
	}

	entries, err := s.activity.GetRecentActivity(r.Context(), tenantID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, activityResponse{Entries: entries})
}

// writeError maps domain errors to a status and a one-line message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, order.ErrNoWebsites):
		status, message = http.StatusNotFound, "No websites found."
	case errors.Is(err, order.ErrInvalidQuery), errors.Is(err, activity.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, odoo.ErrAuthentication), errors.Is(err, odoo.ErrRemoteCall):
		status, message = http.StatusBadGateway, err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	writeJSONError(w, status, message)
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		h.Set("Surrogate-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
