package lesson

import (
	"context"
	"sync"
)

// TopicChild is one lesson within a topic's server-held ordering.
type TopicChild struct {
	LessonID   string `json:"lessonId"`
	OrderIndex int    `json:"orderIndex"`
}

// TopicStore maintains the server-held ordering of lessons within topics,
// used by list screens that reorder outside any editing session. Reorder
// follows the same contract as the in-tree maintainer: indices end up 1..N,
// and an out-of-bounds target is a no-op reported as false.
type TopicStore interface {
	Reorder(ctx context.Context, topicID, lessonID string, newIndex int) (bool, error)
	Children(ctx context.Context, topicID string) ([]TopicChild, error)
}

// MemoryTopicStore is an in-memory TopicStore implementation.
type MemoryTopicStore struct {
	mu       sync.RWMutex
	children map[string][]string // topic id -> ordered lesson ids
}

// NewMemoryTopicStore creates a new in-memory topic store.
func NewMemoryTopicStore() *MemoryTopicStore {
	return &MemoryTopicStore{
		children: make(map[string][]string),
	}
}

// Add appends a lesson at the end of a topic's child list.
func (s *MemoryTopicStore) Add(topicID, lessonID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[topicID] = append(s.children[topicID], lessonID)
}

func (s *MemoryTopicStore) Reorder(_ context.Context, topicID, lessonID string, newIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.children[topicID]
	from := -1
	for i, id := range ids {
		if id == lessonID {
			from = i
			break
		}
	}
	if from < 0 {
		return false, nil
	}

	moved, ok := moveTo(append([]string(nil), ids...), from, newIndex)
	if !ok {
		return false, nil
	}
	s.children[topicID] = moved
	return true, nil
}

func (s *MemoryTopicStore) Children(_ context.Context, topicID string) ([]TopicChild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.children[topicID]
	out := make([]TopicChild, 0, len(ids))
	for i, id := range ids {
		out = append(out, TopicChild{LessonID: id, OrderIndex: i + 1})
	}
	return out, nil
}
