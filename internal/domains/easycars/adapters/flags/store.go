package flags

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

var (
	_ ports.FeatureFlags = (*YAMLStore)(nil)
	_ ports.FeatureFlags = (*MemoryStore)(nil)
)

type flagFile struct {
	Flags map[string]bool `yaml:"flags"`
}

// YAMLStore serves flags from a YAML file; environment overrides win over file values.
type YAMLStore struct {
	values    map[string]bool
	overrides map[string]bool
}

// LoadYAML reads flags from path. An empty path yields a store holding only overrides.
func LoadYAML(path string, overrides map[string]bool) (*YAMLStore, error) {
	store := &YAMLStore{values: map[string]bool{}, overrides: map[string]bool{}}
	for key, value := range overrides {
		store.overrides[normalizeKey(key)] = value
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return store, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature flags %s: %w", path, err)
	}
	var file flagFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse feature flags %s: %w", path, err)
	}
	for key, value := range file.Flags {
		store.values[normalizeKey(key)] = value
	}
	return store, nil
}

func (s *YAMLStore) GetBool(_ context.Context, key string, def bool) bool {
	key = normalizeKey(key)
	if value, ok := s.overrides[key]; ok {
		return value
	}
	if value, ok := s.values[key]; ok {
		return value
	}
	return def
}

// MemoryStore is a mutable flag store for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]bool
}

func NewMemoryStore(values map[string]bool) *MemoryStore {
	store := &MemoryStore{values: map[string]bool{}}
	for key, value := range values {
		store.values[normalizeKey(key)] = value
	}
	return store
}

func (s *MemoryStore) Set(key string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[normalizeKey(key)] = value
}

func (s *MemoryStore) GetBool(_ context.Context, key string, def bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if value, ok := s.values[normalizeKey(key)]; ok {
		return value
	}
	return def
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
