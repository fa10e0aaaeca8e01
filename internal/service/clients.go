package service

import (
	"maps"
	"strings"
	"sync"
)

// ClientStore holds read-mostly platform settings such as client ids and API keys.
// A refresh swaps the whole map so readers never see a half-updated set.
type ClientStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewClientStore(values map[string]string) *ClientStore {
	return &ClientStore{values: maps.Clone(values)}
}

func (s *ClientStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Replace installs values as the new settings
func (s *ClientStore) Replace(values map[string]string) {
	next := maps.Clone(values)
	s.mu.Lock()
	s.values = next
	s.mu.Unlock()
}

func (s *ClientStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Expand replaces every {key} in text with its current value. Unknown placeholders are kept.
func (s *ClientStore) Expand(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.values {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}
