// Package api exposes the conversion pipeline over HTTP.
//
// The surface is deliberately small: POST a topology JSON document to
// /v1/convert and receive the converted topology back. Conversion
// options travel as query parameters so the body stays a plain topology.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/railplan/pkg/errors"
	"github.com/matzehuels/railplan/pkg/pipeline"
)

// maxBodyBytes bounds accepted topology documents.
const maxBodyBytes = 16 << 20

// Server handles conversion requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around the given runner.
// If logger is nil, the runner's logger is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, logger: logger}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/convert", s.handleConvert)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Topology-Hash", result.TopologyHash)
	if result.CacheInfo.ConvertHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{}
	q := r.URL.Query()

	if v := q.Get("scale_factor"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "", "invalid scale_factor %q", v)
		}
		opts.ScaleFactor = f
	}
	if v := q.Get("remove_non_ks_signals"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "", "invalid remove_non_ks_signals %q", v)
		}
		opts.RemoveNonKsSignals = b
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "", "invalid refresh %q", v)
		}
		opts.Refresh = b
	}
	return opts, nil
}

// statusForError maps layout failures to 422 (the topology itself defeats
// the engine), bad input to 400, not-found to 404, everything else to 500.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeVerticalEdge,
		errors.ErrCodeDegreeExceeded,
		errors.ErrCodeMainTrackCollision,
		errors.ErrCodeDiagonalSignalOverflow,
		errors.ErrCodeMalformedBreakpoint,
		errors.ErrCodeBadRelativePosition,
		errors.ErrCodeEdgeNotFound,
		errors.ErrCodeSignalNotOnEdge:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Element string `json:"element,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:   errors.UserMessage(err),
		Code:    string(errors.GetCode(err)),
		Element: errors.GetElement(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
