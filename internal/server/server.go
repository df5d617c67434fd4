package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/tundr-problems/internal/config"
	apperrors "github.com/copyleftdev/tundr-problems/internal/errors"
	"github.com/copyleftdev/tundr-problems/internal/logging"
	"github.com/copyleftdev/tundr-problems/internal/optimization"
	"github.com/copyleftdev/tundr-problems/internal/registry"
	"github.com/copyleftdev/tundr-problems/internal/wire"
)

// Content types accepted and produced by the problem endpoints.
const (
	contentTypeJSON     = "application/json"
	contentTypeProtobuf = "application/x-protobuf"
	contentTypeYAML     = "application/yaml"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Server implements the HTTP and JSON-RPC transport of the problem registry.
type Server struct {
	cfg      *config.Config
	logger   Logger
	registry *registry.Service
}

// NewServer creates a new server instance with the given config, logger and
// registry service.
func NewServer(cfg *config.Config, logger Logger, svc *registry.Service) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: svc,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/problems", func(r chi.Router) {
			r.Post("/", s.handleRegister)
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
			r.Delete("/{id}", s.handleDelete)
		})
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// registerResponse is returned for a stored problem.
type registerResponse struct {
	ProblemID         string   `json:"problem_id"`
	FeatureDimensions []string `json:"feature_dimensions"`
}

func newRegisterResponse(id string, p *optimization.Problem) registerResponse {
	return registerResponse{
		ProblemID:         id,
		FeatureDimensions: p.FeatureSpace().DimensionNames(),
	}
}

// handleRegister handles POST /api/v1/problems. The body is a JSON wire
// message, protobuf wire bytes, or a YAML problem document.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), "")
		return
	}

	var (
		id string
		p  *optimization.Problem
	)
	switch mediaType(r.Header.Get("Content-Type")) {
	case contentTypeProtobuf:
		var msg wire.OptimizationProblem
		if err := msg.UnmarshalBinary(body); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), "")
			return
		}
		id, p, err = s.registry.Register(r.Context(), &msg)
	case contentTypeYAML, "application/x-yaml", "text/yaml":
		id, p, err = s.registry.RegisterDocument(r.Context(), body)
	default:
		var msg wire.OptimizationProblem
		if err := json.Unmarshal(body, &msg); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), "")
			return
		}
		id, p, err = s.registry.Register(r.Context(), &msg)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, newRegisterResponse(id, p))
}

// handleList handles GET /api/v1/problems.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.registry.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"problem_ids": ids})
}

// handleGet handles GET /api/v1/problems/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.registry.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), contentTypeProtobuf) {
		data, err := p.MarshalWire(s.registry.Codec())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeProtobuf)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	s.writeJSON(w, http.StatusOK, p.ToDocument())
}

// handleDelete handles DELETE /api/v1/problems/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if s.cfg != nil && s.cfg.HTTP.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxBodyBytes)
	}
	return io.ReadAll(r.Body)
}

func mediaType(header string) string {
	if header == "" {
		return contentTypeJSON
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return contentTypeJSON
	}
	return mt
}

// writeServiceError maps registry and validation errors to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case registry.IsInvalid(err):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error(), optimization.ReasonOf(err))
	case errors.Is(err, registry.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "problem not found", "")
	case errors.Is(err, registry.ErrInvalidID):
		s.writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		s.logger.Error("Request failed", errorFields(err))
		s.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "")
	}
}

// errorFields adds the failing operation and component of store errors.
func errorFields(err error) map[string]interface{} {
	if e, ok := apperrors.Find(err); ok {
		fields := e.Fields()
		fields["error"] = err.Error()
		return fields
	}
	return map[string]interface{}{"error": err.Error()}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, reason string) {
	body := map[string]interface{}{"error": message}
	if reason != "" {
		body["reason"] = reason
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", map[string]interface{}{"error": err.Error()})
	}
}
