package engine

import (
	"sync"

	"github.com/zuulgate/zuul/backend/internal/logger"
	"github.com/zuulgate/zuul/backend/internal/metrics"
	"github.com/zuulgate/zuul/backend/internal/models"
)

// RecordStore abstracts the durable persistence the cache writes to.
type RecordStore interface {
	InsertOne(rec *models.Record) error
	InsertBulk(recs []*models.Record) error
}

// WriteBehindCache buffers audit records and flushes them to storage in
// bulk once the buffer reaches its configured size. When disabled, every
// record is written through synchronously instead.
//
// Persistence failures are logged and swallowed: the HTTP verdict has
// already been decided and must not depend on audit durability.
type WriteBehindCache struct {
	store   RecordStore
	enabled bool
	size    int

	mu  sync.Mutex
	buf []*models.Record
}

// NewWriteBehindCache creates a cache flushing to store every size records.
// A size below 1 is raised to 1.
func NewWriteBehindCache(store RecordStore, enabled bool, size int) *WriteBehindCache {
	if size < 1 {
		size = 1
	}
	return &WriteBehindCache{
		store:   store,
		enabled: enabled,
		size:    size,
		buf:     make([]*models.Record, 0, size),
	}
}

// Record accepts one audit record. Enabled: append under the lock and, when
// the threshold is reached, swap the full buffer out while still holding
// the lock so no concurrent caller can append into a batch mid-flush. The
// bulk insert itself runs outside the lock so a slow database round trip
// never serializes concurrent decisions.
func (c *WriteBehindCache) Record(rec *models.Record) {
	if !c.enabled {
		if err := c.store.InsertOne(rec); err != nil {
			logger.WithError(err).Error("insert audit record")
		}
		return
	}

	c.mu.Lock()
	c.buf = append(c.buf, rec)
	if len(c.buf) < c.size {
		c.mu.Unlock()
		return
	}
	batch := c.buf
	c.buf = make([]*models.Record, 0, c.size)
	c.mu.Unlock()

	c.flush(batch)
}

// Flush drains whatever is currently buffered. Intended for shutdown.
func (c *WriteBehindCache) Flush() {
	c.mu.Lock()
	if len(c.buf) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buf
	c.buf = make([]*models.Record, 0, c.size)
	c.mu.Unlock()

	c.flush(batch)
}

// Len returns the number of records currently buffered.
func (c *WriteBehindCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// flush bulk-inserts one taken batch. The batch is all-or-nothing: on
// failure it is logged and dropped, never requeued.
func (c *WriteBehindCache) flush(batch []*models.Record) {
	metrics.IncFlush()
	if err := c.store.InsertBulk(batch); err != nil {
		metrics.IncFlushError()
		logger.WithError(err).WithField("batch", len(batch)).Error("bulk insert audit records")
	}
}
