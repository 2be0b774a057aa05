package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dohyun-ko/recal/event"
)

// cacheEntry is one cached expansion result.
type cacheEntry struct {
	occurrences []event.Occurrence
	expiresAt   time.Time
	accessedAt  time.Time
}

// Cache memoizes expansion results. Entries are keyed on a digest of
// the full event snapshot (fields, rule, exclude dates) and the query
// window. A mutated event can never be answered with a stale result
// because the mutation changes the key.
type Cache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL             time.Duration // how long entries stay valid
	MaxEntries      int           // maximum entries before eviction
	CleanupInterval time.Duration // how often expired entries are swept
}

// DefaultCacheConfig provides sensible defaults for expansion caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewCache creates an expansion cache with the given configuration.
func NewCache(config CacheConfig) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}

	cache := &Cache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	go cache.cleanupLoop()
	return cache
}

// key digests every input that can influence an expansion result.
func key(ev event.Event, windowStart, windowEnd time.Time) string {
	h := sha256.New()

	writeField := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	writeField(ev.ID)
	writeField(ev.Title)
	writeField(ev.Description)
	writeField(ev.Location)
	writeField(ev.Category)
	writeField(ev.Date.Format(time.RFC3339Nano))
	writeField(ev.StartTime)
	writeField(ev.EndTime)
	writeField(strconv.Itoa(ev.NotifyMinutes))
	writeField(ev.OriginalEventID)
	for _, ex := range ev.ExcludeDates {
		writeField(ex.Format(time.RFC3339Nano))
	}

	r := ev.Repeat
	writeField(string(r.Kind))
	writeField(strconv.Itoa(r.Interval))
	writeField(string(r.DayPolicy))
	if until, ok := r.Until.Get(); ok {
		writeField(until.Format(time.RFC3339Nano))
	}
	if count, ok := r.Count.Get(); ok {
		writeField(strconv.Itoa(count))
	}
	writeField(strconv.FormatBool(r.Unbounded))

	writeField(windowStart.Format(time.RFC3339Nano))
	writeField(windowEnd.Format(time.RFC3339Nano))

	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves a cached expansion if present and not expired.
func (c *Cache) Get(ev event.Event, windowStart, windowEnd time.Time) ([]event.Occurrence, bool) {
	k := key(ev, windowStart, windowEnd)

	c.mutex.RLock()
	entry, exists := c.entries[k]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mutex.Lock()
		delete(c.entries, k)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.accessedAt = now
	c.mutex.Unlock()

	return entry.occurrences, true
}

// Set stores an expansion result.
func (c *Cache) Set(ev event.Event, windowStart, windowEnd time.Time, occurrences []event.Occurrence) {
	k := key(ev, windowStart, windowEnd)
	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[k] = &cacheEntry{
		occurrences: occurrences,
		expiresAt:   now.Add(c.ttl),
		accessedAt:  now,
	}

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently accessed
// ones while still over the limit. Caller holds the write lock.
func (c *Cache) cleanup() {
	now := time.Now()

	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}

	if len(c.entries) > c.maxEntries {
		type keyAccess struct {
			key        string
			accessedAt time.Time
		}
		byAccess := make([]keyAccess, 0, len(c.entries))
		for k, entry := range c.entries {
			byAccess = append(byAccess, keyAccess{key: k, accessedAt: entry.accessedAt})
		}
		sort.Slice(byAccess, func(i, j int) bool {
			return byAccess[i].accessedAt.Before(byAccess[j].accessedAt)
		})

		toRemove := len(c.entries) - c.maxEntries
		for i := 0; i < toRemove; i++ {
			delete(c.entries, byAccess[i].key)
		}
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache.
func (c *Cache) Close() {
	close(c.stopCleanup)
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mutex.Unlock()
}

// Stats returns a snapshot of cache occupancy.
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := CacheStats{TotalEntries: len(c.entries)}
	now := time.Now()
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			stats.ExpiredEntries++
		}
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredEntries
	return stats
}

// CacheStats provides information about cache occupancy.
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
