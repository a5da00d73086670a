package cache

import (
	"sync"
	"time"
)

// InMemoryCache keeps translations in process memory, keyed by the
// coordinator's hash:lang cache keys. It backs single-process runs and the
// CLI's snapshot files; deployments sharing translations across processes
// use RedisCache instead.
type InMemoryCache struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	ttl     time.Duration
}

// memoryRecord pins a translation to its expiry deadline.
type memoryRecord struct {
	text      string
	expiresAt time.Time // zero when the record never expires
}

// NewInMemoryCache creates a cache whose entries expire ttlSeconds after
// they are set. Zero or negative disables expiry, which suits
// snapshot-backed runs where staleness is handled by deleting the snapshot
// file.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	return &InMemoryCache{
		records: make(map[string]memoryRecord),
		ttl:     ttl,
	}
}

// Get returns the cached translation for the key. Expired records are
// removed on access and reported as misses.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	record, ok := c.records[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if !record.expiresAt.IsZero() && time.Now().After(record.expiresAt) {
		c.mu.Lock()
		delete(c.records, key)
		c.mu.Unlock()
		return "", false
	}
	return record.text, true
}

// Set stores a translation, resetting its expiry deadline.
func (c *InMemoryCache) Set(key string, value string) error {
	record := memoryRecord{text: value}
	if c.ttl > 0 {
		record.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.records[key] = record
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored records, expired ones included until
// their next access.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Entries returns a copy of all live translations, for snapshot export.
func (c *InMemoryCache) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	result := make(map[string]string, len(c.records))
	for key, record := range c.records {
		if !record.expiresAt.IsZero() && now.After(record.expiresAt) {
			continue
		}
		result[key] = record.text
	}
	return result
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
