package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/zuulgate/zuul/backend/internal/logger"
	"github.com/zuulgate/zuul/backend/internal/models"
)

// denyNotifyInterval is the minimum quiet period per rule between alerts,
// so a scanning client cannot flood the notification channel.
const denyNotifyInterval = 5 * time.Minute

// DenyNotifier sends an external notification when a deny rule fires.
// Notifications are throttled per rule and sent asynchronously; a failed
// send is logged and dropped.
type DenyNotifier struct {
	url string

	mu   sync.Mutex
	last map[uint]time.Time
}

// NewDenyNotifier creates a notifier for the given shoutrrr URL. Returns
// nil when no URL is configured, which disables notifications.
func NewDenyNotifier(url string) *DenyNotifier {
	if url == "" {
		return nil
	}
	return &DenyNotifier{url: url, last: make(map[uint]time.Time)}
}

// NotifyDenied sends a deny alert unless the rule alerted recently.
func (n *DenyNotifier) NotifyDenied(rec *models.Record, ruleID uint) {
	n.mu.Lock()
	now := time.Now()
	if last, ok := n.last[ruleID]; ok && now.Sub(last) < denyNotifyInterval {
		n.mu.Unlock()
		return
	}
	n.last[ruleID] = now
	n.mu.Unlock()

	msg := fmt.Sprintf("Request denied by rule %d (ip=%s host=%s path=%s)",
		ruleID, deref(rec.IPAddress), deref(rec.FQDN), deref(rec.Path))

	go func() {
		if err := shoutrrr.Send(n.url, msg); err != nil {
			logger.WithError(err).WithField("rule_id", ruleID).Warn("deny notification failed")
		}
	}()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
