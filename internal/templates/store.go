package templates

import (
	"context"
	"errors"
	"sync"
	"time"

	"batch-reconciliation-backend/internal/services/matching"
)

// DefaultKey is the key bank mapping templates are saved under.
const DefaultKey = "bank-mapping-templates"

var (
	ErrNotFound    = errors.New("template not found")
	ErrInvalidName = errors.New("template name is required")
)

// Template is a named, reusable column mapping with its account mapping.
type Template struct {
	Name       string                 `json:"name" yaml:"name"`
	Mapping    matching.ColumnMapping `json:"mapping" yaml:"mapping"`
	AccountMap map[string]string      `json:"accountMap,omitempty" yaml:"accountMap,omitempty"`
	SavedAt    time.Time              `json:"savedAt" yaml:"-"`
}

// Store is a key-value store for template lists. Load of an unknown key
// returns an empty list.
type Store interface {
	Load(ctx context.Context, key string) ([]Template, error)
	Save(ctx context.Context, key string, list []Template) error
}

// Find returns the template named name.
func Find(list []Template, name string) (Template, bool) {
	for _, t := range list {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Upsert replaces the template with the same name or appends it.
func Upsert(list []Template, t Template) []Template {
	out := make([]Template, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		if existing.Name == t.Name {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}

// Remove drops the template named name, reporting whether it existed.
func Remove(list []Template, name string) ([]Template, bool) {
	out := make([]Template, 0, len(list))
	found := false
	for _, t := range list {
		if t.Name == name {
			found = true
			continue
		}
		out = append(out, t)
	}
	return out, found
}

// MemoryStore keeps templates in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]Template
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]Template)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.data[key]), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, list []Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = clone(list)
	return nil
}

func clone(list []Template) []Template {
	out := make([]Template, len(list))
	for i, t := range list {
		if t.AccountMap != nil {
			m := make(map[string]string, len(t.AccountMap))
			for k, v := range t.AccountMap {
				m[k] = v
			}
			t.AccountMap = m
		}
		out[i] = t
	}
	return out
}
