// Package registry is the transport-independent problem registry. HTTP and
// gRPC handlers both delegate to a Service.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/copyleftdev/tundr-problems/internal/errors"
	"github.com/copyleftdev/tundr-problems/internal/logging"
	"github.com/copyleftdev/tundr-problems/internal/optimization"
	"github.com/copyleftdev/tundr-problems/internal/store"
	"github.com/copyleftdev/tundr-problems/internal/wire"
)

// ErrNotFound is returned for unknown problem ids.
var ErrNotFound = store.ErrNotFound

// ErrInvalidID is returned when an id is empty.
var ErrInvalidID = errors.New("problem id is required")

// IsInvalid reports whether err rejects the caller's problem. Store failures
// are never invalid, even when they wrap a decode error of a stored value.
func IsInvalid(err error) bool {
	if _, ok := apperrors.Find(err); ok {
		return false
	}
	return optimization.IsInvalidProblem(err)
}

// Service registers, looks up and removes optimization problems.
type Service struct {
	store   store.Store
	logger  *logging.Logger
	metrics *Metrics
	codec   optimization.SpaceCodec
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCodec sets the space codec used for wire messages.
func WithCodec(codec optimization.SpaceCodec) Option {
	return func(s *Service) { s.codec = codec }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a Service over st. Metrics are registered on reg.
func NewService(ctx context.Context, st store.Store, logger *logging.Logger, reg prometheus.Registerer, opts ...Option) (*Service, error) {
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Service{
		store:   st,
		logger:  logger.WithField("component", "registry"),
		metrics: metrics,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}

	ids, err := st.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "count stored problems")
	}
	s.metrics.Stored.Set(float64(len(ids)))
	return s, nil
}

// Codec returns the space codec used for wire messages.
func (s *Service) Codec() optimization.SpaceCodec {
	return s.codec
}

// Register decodes msg, validates it and stores the result under a new id.
func (s *Service) Register(ctx context.Context, msg *wire.OptimizationProblem) (string, *optimization.Problem, error) {
	p, err := optimization.FromWire(msg, s.codec)
	if err != nil {
		return "", nil, s.reject(err)
	}
	id, err := s.RegisterProblem(ctx, p)
	if err != nil {
		return "", nil, err
	}
	return id, p, nil
}

// RegisterDocument parses a YAML or JSON problem document and stores it.
func (s *Service) RegisterDocument(ctx context.Context, data []byte) (string, *optimization.Problem, error) {
	p, err := optimization.ParseDocument(data)
	if err != nil {
		return "", nil, s.reject(err)
	}
	id, err := s.RegisterProblem(ctx, p)
	if err != nil {
		return "", nil, err
	}
	return id, p, nil
}

// RegisterProblem stores an already validated problem under a new id.
func (s *Service) RegisterProblem(ctx context.Context, p *optimization.Problem) (string, error) {
	id := s.newID()
	if err := s.store.Put(ctx, id, p); err != nil {
		s.logger.WithError(err).Error("Failed to store problem", map[string]interface{}{"problem_id": id})
		return "", apperrors.Wrap(err, "store problem")
	}

	s.metrics.Registered.Inc()
	s.metrics.Stored.Inc()
	s.logger.Info("Problem registered", map[string]interface{}{
		"problem_id":         id,
		"feature_dimensions": len(p.FeatureSpace().Dimensions()),
		"objectives":         len(p.Objectives()),
		"has_context":        p.HasContext(),
	})
	return id, nil
}

func (s *Service) reject(err error) error {
	reason := optimization.ReasonOf(err)
	s.metrics.Rejections.WithLabelValues(reason).Inc()
	s.logger.Warn("Problem rejected", map[string]interface{}{
		"reason": reason,
		"error":  err.Error(),
	})
	return err
}

// Get returns the problem stored under id.
func (s *Service) Get(ctx context.Context, id string) (*optimization.Problem, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetWire returns the wire form of the problem stored under id.
func (s *Service) GetWire(ctx context.Context, id string) (*wire.OptimizationProblem, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.ToWire(s.codec)
}

// List returns the registered ids in ascending order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Delete removes the problem stored under id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.Stored.Dec()
	s.logger.Info("Problem deleted", map[string]interface{}{"problem_id": id})
	return nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
