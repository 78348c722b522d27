package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryDocumentStore is the in-process stand-in used by tests and local
// wiring. It reproduces the shallow-merge semantics of the postgres store.
type MemoryDocumentStore struct {
	docs map[string]json.RawMessage

	mu sync.RWMutex
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs: make(map[string]json.RawMessage),
	}
}

func (s *MemoryDocumentStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, ErrDocumentNotFound
	}

	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *MemoryDocumentStore) Set(ctx context.Context, path string, doc any, merge bool) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[path]
	if !merge || !ok {
		s.docs[path] = data
		return nil
	}

	var base, patch map[string]json.RawMessage
	if err := json.Unmarshal(existing, &base); err != nil {
		return fmt.Errorf("corrupted document at %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &patch); err != nil {
		return fmt.Errorf("failed to merge document: %w", err)
	}

	for k, v := range patch {
		base[k] = v
	}

	merged, err := json.Marshal(base)
	if err != nil {
		return err
	}

	s.docs[path] = merged
	return nil
}
