package engine

import (
	"sort"
	"sync"

	"github.com/zuulgate/zuul/backend/internal/models"
)

// SuppressionSet holds the compiled active ignore entries. Any match
// suppresses persistence of the audit record; the verdict is untouched.
type SuppressionSet struct {
	mu      sync.RWMutex
	entries []models.CompiledIgnored
}

// NewSuppressionSet returns an empty suppression set. Populate it with Replace.
func NewSuppressionSet() *SuppressionSet {
	return &SuppressionSet{}
}

// Replace compiles the given entries and atomically installs the new snapshot.
func (s *SuppressionSet) Replace(entries []models.Ignored) {
	compiled := make([]models.CompiledIgnored, 0, len(entries))
	for _, entry := range entries {
		compiled = append(compiled, models.CompileIgnored(entry))
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Ignored.Weight < compiled[j].Ignored.Weight
	})

	s.mu.Lock()
	s.entries = compiled
	s.mu.Unlock()
}

// Suppress reports whether any ignore entry matches the record.
func (s *SuppressionSet) Suppress(rec *models.Record) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		if s.entries[i].Matches(rec) {
			return true
		}
	}
	return false
}

// Len returns the number of entries in the current snapshot.
func (s *SuppressionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
