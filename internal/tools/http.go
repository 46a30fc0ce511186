package tools

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/copilot/internal/logging"
)

// NewHandler returns an HTTP API over rt:
//
//	GET  /tools          list tool names
//	POST /tools/{name}   call a tool with body {"args": [...], "kwargs": {...}}
func NewHandler(rt *Runtime, logger zerolog.Logger) http.Handler {
	h := &handler{rt: rt}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/tools", h.list)
	r.Post("/tools/{name}", h.call)
	return r
}

type handler struct {
	rt *Runtime
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": h.rt.Names()})
}

func (h *handler) call(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	var params Params
	if err := json.NewDecoder(req.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "body must be {args, kwargs}: " + err.Error()})
		return
	}

	result, err := h.rt.Call(req.Context(), "http", name, params)
	switch {
	case errors.Is(err, ErrUnknownTool):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"result": result})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr).
				Logger()

			ctx := logging.WithContext(req.Context(), reqLogger)
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, req.WithContext(ctx))

			reqLogger.Info().
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
