package session

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryRepository builds an in-memory token store.
func NewMemoryRepository() Repository {
	return &memoryRepository{tokens: make(map[string]string)}
}

func (r *memoryRepository) Save(_ context.Context, token, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = username
	return nil
}

func (r *memoryRepository) Find(_ context.Context, token string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	username, ok := r.tokens[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	return username, nil
}

func (r *memoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}
