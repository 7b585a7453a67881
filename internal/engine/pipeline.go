package engine

import (
	"net/http"

	"github.com/zuulgate/zuul/backend/internal/geo"
	"github.com/zuulgate/zuul/backend/internal/logger"
	"github.com/zuulgate/zuul/backend/internal/metrics"
	"github.com/zuulgate/zuul/backend/internal/models"
)

// Verdict is the outcome of evaluating one forwarded request.
type Verdict struct {
	Allow  bool
	RuleID *uint
	Stored bool
}

// Notifier is told about deny verdicts. May drop or throttle at will.
type Notifier interface {
	NotifyDenied(rec *models.Record, ruleID uint)
}

// Pipeline evaluates a forwarded request against the rule set, checks the
// suppression set, and hands the audit record to the write-behind cache.
type Pipeline struct {
	rules    *RuleSet
	ignored  *SuppressionSet
	cache    *WriteBehindCache
	resolver geo.Resolver
	notifier Notifier
}

// NewPipeline wires the decision pipeline. notifier may be nil.
func NewPipeline(rules *RuleSet, ignored *SuppressionSet, cache *WriteBehindCache, resolver geo.Resolver, notifier Notifier) *Pipeline {
	return &Pipeline{
		rules:    rules,
		ignored:  ignored,
		cache:    cache,
		resolver: resolver,
		notifier: notifier,
	}
}

// Evaluate runs the full decision sequence for one forwarded request:
// build the record, find the first matching rule, apply suppression, and
// persist when the store policy says so. A request matching no rule is
// allowed and always recorded. Suppression is only consulted after a rule
// match; unmatched traffic stays auditable.
func (p *Pipeline) Evaluate(headers http.Header) Verdict {
	metrics.IncDecision()

	rec := models.NewRecordFromHeaders(headers, p.resolver)

	// Defaults when no rule governs the request.
	verdict := Verdict{Allow: true, Stored: true}

	if match := p.rules.FirstMatch(rec); match != nil {
		id := match.Rule.ID
		rec.RuleID = &id
		verdict.RuleID = &id
		verdict.Allow = match.Rule.Allow
		verdict.Stored = match.Rule.Store

		if p.ignored.Suppress(rec) {
			if verdict.Stored {
				metrics.IncSuppressed()
			}
			verdict.Stored = false
		}

		logger.WithFields(map[string]interface{}{
			"rule_id": id,
			"allow":   verdict.Allow,
			"store":   verdict.Stored,
		}).Debug("rule matched")
	}

	if !verdict.Allow {
		metrics.IncDenied()
		if p.notifier != nil && verdict.RuleID != nil {
			p.notifier.NotifyDenied(rec, *verdict.RuleID)
		}
	}

	if verdict.Stored {
		metrics.IncStored()
		p.cache.Record(rec)
	}

	return verdict
}
