package lesson

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a lesson id does not exist in the store.
var ErrNotFound = errors.New("lesson not found")

// Store persists normalized lesson documents. Create returns the stored
// document with its server-assigned id; the editor merges nothing else back.
type Store interface {
	Create(ctx context.Context, p Payload) (Payload, error)
	Update(ctx context.Context, id string, p Payload) error
	Get(ctx context.Context, id string) (Payload, error)
	List(ctx context.Context) ([]Payload, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Payload
}

// NewMemoryStore creates a new in-memory lesson store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]Payload),
	}
}

func (s *MemoryStore) Create(_ context.Context, p Payload) (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = newID()
	s.docs[p.ID] = p
	return p, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, p Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	p.ID = id
	s.docs[id] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.docs[id]
	if !ok {
		return Payload{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Payload, 0, len(s.docs))
	for _, p := range s.docs {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
