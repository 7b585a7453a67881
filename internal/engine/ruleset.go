package engine

import (
	"sort"
	"sync"

	"github.com/zuulgate/zuul/backend/internal/models"
)

// RuleSet holds the compiled active rules ordered by ascending weight.
// Matching is read-mostly, so the snapshot sits behind an RWMutex and is
// swapped whole on reload: readers never observe a half-updated mix.
type RuleSet struct {
	mu    sync.RWMutex
	rules []models.CompiledRule
}

// NewRuleSet returns an empty rule set. Populate it with Replace.
func NewRuleSet() *RuleSet {
	return &RuleSet{}
}

// Replace compiles the given rules, orders them by ascending weight (ties
// keep their given order), and atomically installs the new snapshot.
func (s *RuleSet) Replace(rules []models.Rule) {
	compiled := make([]models.CompiledRule, 0, len(rules))
	for _, rule := range rules {
		compiled = append(compiled, models.CompileRule(rule))
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Rule.Weight < compiled[j].Rule.Weight
	})

	s.mu.Lock()
	s.rules = compiled
	s.mu.Unlock()
}

// ruleMatch evaluates one compiled rule against a record. Indirected at the
// package level so evaluation order is observable.
var ruleMatch = func(cr *models.CompiledRule, rec *models.Record) bool {
	return cr.Matches(rec)
}

// FirstMatch scans rules in weight order and returns the first one matching
// the record, or nil. The scan short-circuits: rules after the match are
// not evaluated.
func (s *RuleSet) FirstMatch(rec *models.Record) *models.CompiledRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.rules {
		if ruleMatch(&s.rules[i], rec) {
			return &s.rules[i]
		}
	}
	return nil
}

// Len returns the number of rules in the current snapshot.
func (s *RuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
