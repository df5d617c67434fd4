package store

import (
	"context"
	"sort"
	"sync"

	"github.com/copyleftdev/tundr-problems/internal/optimization"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps problems in process memory. Problems are immutable, so
// they are stored and returned without copying.
type MemoryStore struct {
	mu       sync.RWMutex
	problems map[string]*optimization.Problem
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{problems: make(map[string]*optimization.Problem)}
}

func (s *MemoryStore) Put(ctx context.Context, id string, p *optimization.Problem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.problems[id] = p
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*optimization.Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.problems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.problems[id]; !ok {
		return ErrNotFound
	}
	delete(s.problems, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.problems))
	for id := range s.problems {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close drops every stored problem.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.problems = make(map[string]*optimization.Problem)
}
