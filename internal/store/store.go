// Package store persists registered optimization problems.
package store

import (
	"context"
	"errors"

	"github.com/copyleftdev/tundr-problems/internal/optimization"
)

// ErrNotFound is returned when no problem is stored under an id.
var ErrNotFound = errors.New("problem not found")

// Store holds problems by id. Implementations are safe for concurrent use.
type Store interface {
	Put(ctx context.Context, id string, p *optimization.Problem) error
	Get(ctx context.Context, id string) (*optimization.Problem, error)
	Delete(ctx context.Context, id string) error
	// List returns the stored ids in ascending order.
	List(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close()
}
