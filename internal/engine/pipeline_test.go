package engine

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zuulgate/zuul/backend/internal/geo"
	"github.com/zuulgate/zuul/backend/internal/models"
)

type recordingNotifier struct {
	mu    sync.Mutex
	rules []uint
}

func (n *recordingNotifier) NotifyDenied(rec *models.Record, ruleID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rules = append(n.rules, ruleID)
}

func testHeaders(path, ip string) http.Header {
	h := http.Header{}
	h.Set("X-Forwarded-Proto", "https")
	h.Set("X-Forwarded-Host", "app.example.com")
	h.Set("X-Forwarded-Uri", path)
	h.Set("X-Forwarded-For", ip)
	return h
}

func newTestPipeline(rules []models.Rule, ignored []models.Ignored, store RecordStore, notifier Notifier) *Pipeline {
	ruleSet := NewRuleSet()
	ruleSet.Replace(rules)
	suppression := NewSuppressionSet()
	suppression.Replace(ignored)
	cache := NewWriteBehindCache(store, false, 1)
	return NewPipeline(ruleSet, suppression, cache, geo.NoopResolver{}, notifier)
}

func TestPipeline_DenyMatch(t *testing.T) {
	store := &fakeStore{}
	notifier := &recordingNotifier{}
	p := newTestPipeline(
		[]models.Rule{{ID: 4, Weight: 10, Allow: false, Store: true, Path: strp("^/admin"), Active: true}},
		nil, store, notifier,
	)

	v := p.Evaluate(testHeaders("/admin/login", "203.0.113.9"))

	assert.False(t, v.Allow)
	assert.NotNil(t, v.RuleID)
	assert.Equal(t, uint(4), *v.RuleID)
	assert.True(t, v.Stored)

	assert.Len(t, store.singles, 1)
	assert.Equal(t, uint(4), *store.singles[0].RuleID)
	assert.Equal(t, []uint{4}, notifier.rules)
}

func TestPipeline_NoMatchAllowsAndStores(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(nil, nil, store, nil)

	v := p.Evaluate(testHeaders("/public", "203.0.113.9"))

	assert.True(t, v.Allow)
	assert.Nil(t, v.RuleID)
	assert.True(t, v.Stored)
	assert.Len(t, store.singles, 1)
	assert.Nil(t, store.singles[0].RuleID)
}

func TestPipeline_StoreFalseSkipsPersistence(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		[]models.Rule{{ID: 1, Weight: 10, Allow: true, Store: false, IPAddress: strp("^10\\."), Active: true}},
		nil, store, nil,
	)

	v := p.Evaluate(testHeaders("/app", "10.0.0.5"))

	assert.True(t, v.Allow)
	assert.False(t, v.Stored)
	assert.Equal(t, 0, store.stored())
}

func TestPipeline_SuppressionOverridesStore(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		[]models.Rule{{ID: 1, Weight: 10, Allow: true, Store: true, Path: strp("^/healthz$"), Active: true}},
		[]models.Ignored{{ID: 1, Weight: 10, Path: strp("^/healthz$"), Active: true}},
		store, nil,
	)

	v := p.Evaluate(testHeaders("/healthz", "10.0.0.5"))

	assert.True(t, v.Allow)
	assert.False(t, v.Stored)
	assert.Equal(t, 0, store.stored())
}

func TestPipeline_SuppressionIgnoredWithoutRuleMatch(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		nil,
		[]models.Ignored{{ID: 1, Weight: 10, Path: strp("^/healthz$"), Active: true}},
		store, nil,
	)

	v := p.Evaluate(testHeaders("/healthz", "10.0.0.5"))

	assert.True(t, v.Allow)
	assert.True(t, v.Stored)
	assert.Equal(t, 1, store.stored())
}

func TestPipeline_UnresolvableIPStillEvaluates(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		[]models.Rule{{ID: 2, Weight: 10, Allow: false, Store: true, CountryCode: strp("^CN$"), Active: true}},
		nil, store, nil,
	)

	// No geo data resolves, so a country constraint cannot falsify and
	// the rule matches.
	v := p.Evaluate(testHeaders("/app", "not-an-ip"))

	assert.False(t, v.Allow)
	assert.Len(t, store.singles, 1)
	assert.Nil(t, store.singles[0].CountryCode)
}

func TestPipeline_RepeatedEvaluationIsStable(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(
		[]models.Rule{
			{ID: 1, Weight: 20, Allow: true, Store: true, Path: strp("^/"), Active: true},
			{ID: 2, Weight: 10, Allow: false, Store: true, Path: strp("^/admin"), Active: true},
		},
		nil, store, nil,
	)

	for i := 0; i < 5; i++ {
		v := p.Evaluate(testHeaders("/admin", "203.0.113.9"))
		assert.False(t, v.Allow)
		assert.Equal(t, uint(2), *v.RuleID)
	}
}
