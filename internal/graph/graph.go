package graph

import (
	"context"
	"sync"
)

// Graph - внешний сервис социального графа. Ядро только читает его:
// кто на кого подписан, решается вне этого сервиса.
type Graph interface {
	Following(ctx context.Context, userID string) ([]string, error)
}

// Static - граф в памяти для тестов и локального запуска без
// внешнего сервиса.
type Static struct {
	mu      sync.RWMutex
	follows map[string][]string
}

func NewStatic() *Static {
	return &Static{follows: make(map[string][]string)}
}

func (s *Static) Follow(followerID, followeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.follows[followerID] {
		if id == followeeID {
			return
		}
	}
	s.follows[followerID] = append(s.follows[followerID], followeeID)
}

func (s *Static) Following(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.follows[userID]))
	copy(ids, s.follows[userID])
	return ids, nil
}
