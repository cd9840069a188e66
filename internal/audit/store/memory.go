package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
	"github.com/shandysiswandi/hijackaudit/internal/pkg/pkgerror"
)

// InMemoryStore keeps processed runs until they are reset. Nothing survives a restart.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*entity.Run
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs: make(map[string]*entity.Run),
	}
}

func (s *InMemoryStore) CreateRun(ctx context.Context, run *entity.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return pkgerror.NewBusiness("run already exists", pkgerror.CodeConflict)
	}

	s.runs[run.ID] = run

	return nil
}

func (s *InMemoryStore) GetRun(ctx context.Context, runID string) (*entity.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return run, nil
}

func (s *InMemoryStore) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return pkgerror.ErrNotFound
	}
	delete(s.runs, runID)

	return nil
}
