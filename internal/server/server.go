// Package server provides the HTTP front door for the Driver Checker
// backend.
//
// # API
//
//   - GET  /api/status - Health of the backend service
//   - POST /api/check  - Driver-licence lookup; JSON body with
//     firstName, lastName and documentSeriesNumber
//
// The lookup endpoint maps client error kinds onto HTTP statuses:
// invalid input is 400, a configuration defect is 500, and both service
// faults and transport failures are 502 (the registry, not this
// service, failed). Fault code and detail are passed through when the
// registry answered with a SOAP fault.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Lukasz5660/Driver-checker/internal/config"
	"github.com/Lukasz5660/Driver-checker/internal/storage"
	"github.com/Lukasz5660/Driver-checker/pkg/upki"
)

// Invoker performs a single driver-licence lookup. Satisfied by
// upki.Lookup via InvokerFunc; tests substitute a stub.
type Invoker interface {
	Invoke(ctx context.Context, req upki.Request) (upki.Result, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req upki.Request) (upki.Result, error)

func (f InvokerFunc) Invoke(ctx context.Context, req upki.Request) (upki.Result, error) {
	return f(ctx, req)
}

// Server is the Driver Checker HTTP server.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	invoker Invoker
	store   storage.Store
	httpSrv *http.Server
}

// New creates the server. A nil store disables auditing; a nil invoker
// uses the environment-configured UPKI client.
func New(cfg *config.Config, invoker Invoker, store storage.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = storage.Noop{}
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
	if invoker == nil {
		invoker = InvokerFunc(func(ctx context.Context, req upki.Request) (upki.Result, error) {
			return upki.Lookup(ctx, logger, req)
		})
	}
	s.invoker = invoker

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(s.cors)

	mux.Get("/api/status", s.handleStatus)
	mux.Post("/api/check", s.handleCheck)

	return mux
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		"addr", s.cfg.Server.Listen, "tls", s.cfg.Server.TLS.Enabled)
	if s.cfg.Server.TLS.Enabled {
		return s.httpSrv.ListenAndServeTLS(
			s.cfg.Server.TLS.CertFile,
			s.cfg.Server.TLS.KeyFile,
		)
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server and closes the audit store.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	return s.store.Close(ctx)
}

// cors allows the configured frontend origin to call the API from a
// browser. An empty configured origin allows any.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.cfg.Server.CORSOrigin
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"service": "Driver Checker API",
		"status":  "ok",
	})
}

// checkRequest is the lookup request body.
type checkRequest struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	DocumentSeriesNumber string `json:"documentSeriesNumber"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.jsonError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req checkRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.jsonError(w, "request body must be valid JSON", http.StatusBadRequest)
		return
	}

	started := time.Now()
	result, err := s.invoker.Invoke(r.Context(), upki.Request{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		DocumentSeriesNumber: req.DocumentSeriesNumber,
	})
	s.audit(r.Context(), req.DocumentSeriesNumber, started, err)

	if err != nil {
		s.writeClientError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"result": result})
}

// writeClientError maps the client error taxonomy onto HTTP statuses.
func (s *Server) writeClientError(w http.ResponseWriter, err error) {
	ce, ok := upki.AsClientError(err)
	if !ok {
		s.logger.Error("lookup failed with unclassified error", "error", err)
		s.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	switch ce.Kind {
	case upki.KindInvalidInput:
		s.jsonError(w, ce.Message, http.StatusBadRequest)
	case upki.KindConfiguration:
		s.jsonError(w, ce.Message, http.StatusInternalServerError)
	case upki.KindServiceFault:
		payload := map[string]any{"error": ce.Message}
		if ce.FaultCode != "" {
			payload["faultCode"] = ce.FaultCode
		}
		if ce.Details != nil {
			payload["details"] = ce.Details
		}
		s.jsonResponse(w, http.StatusBadGateway, payload)
	case upki.KindTransport:
		s.jsonError(w, ce.Message, http.StatusBadGateway)
	default:
		s.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// audit records the lookup outcome. Best effort: a failing audit store
// is logged and never fails the request.
func (s *Server) audit(ctx context.Context, documentSeriesNumber string, started time.Time, lookupErr error) {
	outcome := "success"
	faultCode := ""
	if lookupErr != nil {
		outcome = "error"
		if ce, ok := upki.AsClientError(lookupErr); ok {
			outcome = string(ce.Kind)
			faultCode = ce.FaultCode
		}
	}

	record := &storage.LookupRecord{
		Timestamp:      started,
		DocumentDigest: storage.DigestDocument(documentSeriesNumber),
		Outcome:        outcome,
		FaultCode:      faultCode,
		Duration:       time.Since(started),
	}

	if err := s.store.RecordLookup(ctx, record); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("recording lookup audit failed", "error", err)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("writing response failed", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
