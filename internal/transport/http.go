package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RPCHandler handles JSON-RPC method dispatch.
type RPCHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// UnknownMethod is the method label reported for calls the handler did not recognise.
const UnknownMethod = "unknown"

// CallObserver receives the outcome of every dispatched call.
type CallObserver interface {
	ObserveCall(method, outcome string, elapsed time.Duration)
}

// Options configures NewServer. The zero value is usable.
type Options struct {
	Logger     *slog.Logger
	Observer   CallObserver
	Middleware []func(http.Handler) http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	handler  RPCHandler
	logger   *slog.Logger
	observer CallObserver
}

const outcomeMethodNotFound = "method_not_found"

// codedError is implemented by application errors that carry a stable code.
type codedError interface {
	error
	CodeValue() string
	MessageValue() string
	DetailsValue() any
	RecoveryHintValue() string
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler RPCHandler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	for _, mw := range opts.Middleware {
		r.Use(mw)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{handler: handler, logger: logger, observer: opts.Observer}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	var outcome string
	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		outcome = s.writeHandlerError(w, r, req, err)
	} else {
		outcome = "ok"
		WriteResult(w, req.ID, result)
	}

	elapsed := time.Since(start)
	if s.observer != nil {
		method := req.Method
		if outcome == outcomeMethodNotFound {
			method = UnknownMethod
		}
		s.observer.ObserveCall(method, outcome, elapsed)
	}
	requestID, _ := RequestIDFromContext(r.Context())
	s.logger.Debug("rpc call", "method", req.Method, "request_id", requestID, "outcome", outcome, "elapsed", elapsed)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, r *http.Request, req Request, err error) string {
	var coded codedError
	switch {
	case errors.Is(err, ErrUnknownMethod):
		WriteError(w, req.ID, ErrMethodNotFound, err.Error(), nil)
		return outcomeMethodNotFound
	case errors.As(err, &coded):
		WriteError(w, req.ID, ErrServerCode, coded.MessageValue(), &ErrorData{
			Code:         coded.CodeValue(),
			Details:      coded.DetailsValue(),
			RecoveryHint: coded.RecoveryHintValue(),
		})
		return strings.ToLower(coded.CodeValue())
	default:
		requestID, _ := RequestIDFromContext(r.Context())
		s.logger.Error("rpc call failed", "method", req.Method, "request_id", requestID, "error", err)
		WriteError(w, req.ID, ErrInternal, err.Error(), &ErrorData{Code: CodeInternal})
		return "internal"
	}
}
