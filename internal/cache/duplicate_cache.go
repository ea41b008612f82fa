// Package cache memoizes duplicate-line detection. The detector is a pure
// function of (algorithm, threshold, text), so only its pair list is kept;
// analysis results themselves never outlive a request.
package cache

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/codeqa/internal/analysis"
	"github.com/standardbeagle/codeqa/internal/types"
)

// Cache configuration constants
const (
	DefaultMaxEntries      = 400
	DefaultTTL             = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

type cachedPairs struct {
	pairs    []types.DuplicatePair
	cachedAt int64 // Unix nano for atomic compare
}

// DuplicateCache is a lock-free cache of detector output using sync.Map
type DuplicateCache struct {
	entries sync.Map // map[uint64]*cachedPairs

	// Configuration (read-only after creation)
	maxEntries int
	ttlNanos   int64

	hits          int64
	misses        int64
	evictions     int64
	totalRequests int64
	count         int64

	createdAt   time.Time
	lastCleanup int64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Config defines configuration options
type Config struct {
	MaxEntries      int
	TTL             time.Duration
	AutoCleanup     bool
	CleanupInterval time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MaxEntries:      DefaultMaxEntries,
		TTL:             DefaultTTL,
		AutoCleanup:     true,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// New creates a cache. With AutoCleanup a goroutine expires entries until Close.
func New(config Config) *DuplicateCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}

	c := &DuplicateCache{
		maxEntries:  config.MaxEntries,
		ttlNanos:    config.TTL.Nanoseconds(),
		createdAt:   time.Now(),
		lastCleanup: time.Now().UnixNano(),
		stop:        make(chan struct{}),
	}

	if config.AutoCleanup {
		interval := config.CleanupInterval
		if interval <= 0 {
			interval = DefaultCleanupInterval
		}
		c.wg.Add(1)
		go c.startAutoCleanup(interval)
	}
	return c
}

// Key digests everything the detector output depends on
func Key(algorithm string, threshold float64, text string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(algorithm)
	var bits [9]byte
	v := math.Float64bits(threshold)
	for i := 0; i < 8; i++ {
		bits[i] = byte(v >> (8 * i))
	}
	_, _ = d.Write(bits[:]) // trailing zero separates the header from the text
	_, _ = d.WriteString(text)
	return d.Sum64()
}

// Get returns a copy of the pairs cached under key
func (c *DuplicateCache) Get(key uint64) ([]types.DuplicatePair, bool) {
	atomic.AddInt64(&c.totalRequests, 1)

	if value, ok := c.entries.Load(key); ok {
		cached := value.(*cachedPairs)
		if time.Now().UnixNano()-atomic.LoadInt64(&cached.cachedAt) <= c.ttlNanos {
			atomic.AddInt64(&c.hits, 1)
			return copyPairs(cached.pairs), true
		}
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Put stores a copy of pairs under key, evicting the oldest entry when full
func (c *DuplicateCache) Put(key uint64, pairs []types.DuplicatePair) {
	cached := &cachedPairs{pairs: copyPairs(pairs), cachedAt: time.Now().UnixNano()}

	if _, loaded := c.entries.LoadOrStore(key, cached); loaded {
		c.entries.Store(key, cached)
		return
	}
	if atomic.AddInt64(&c.count, 1) > int64(c.maxEntries) {
		c.evictOldest()
	}
}

// Detect returns the detector's pairs for text, running it only on a miss
func (c *DuplicateCache) Detect(detector *analysis.DuplicateDetector, text string) []types.DuplicatePair {
	key := Key(detector.Algorithm(), detector.Threshold(), text)
	if pairs, ok := c.Get(key); ok {
		return pairs
	}
	pairs := detector.Detect(text)
	c.Put(key, pairs)
	return pairs
}

func copyPairs(pairs []types.DuplicatePair) []types.DuplicatePair {
	out := make([]types.DuplicatePair, len(pairs))
	copy(out, pairs)
	return out
}

// evictOldest removes the entry cached longest ago
func (c *DuplicateCache) evictOldest() {
	var oldestKey interface{}
	oldestTime := time.Now().UnixNano()

	c.entries.Range(func(key, value interface{}) bool {
		cachedAt := atomic.LoadInt64(&value.(*cachedPairs).cachedAt)
		if cachedAt < oldestTime {
			oldestTime = cachedAt
			oldestKey = key
		}
		return true
	})

	if oldestKey != nil {
		c.entries.Delete(oldestKey)
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// CleanExpired removes expired entries and returns how many were removed
func (c *DuplicateCache) CleanExpired() int {
	now := time.Now().UnixNano()
	cleaned := int64(0)
	remaining := int64(0)

	c.entries.Range(func(key, value interface{}) bool {
		if now-atomic.LoadInt64(&value.(*cachedPairs).cachedAt) > c.ttlNanos {
			c.entries.Delete(key)
			cleaned++
		} else {
			remaining++
		}
		return true
	})

	atomic.StoreInt64(&c.count, remaining)
	atomic.AddInt64(&c.evictions, cleaned)
	atomic.StoreInt64(&c.lastCleanup, now)
	return int(cleaned)
}

func (c *DuplicateCache) startAutoCleanup(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CleanExpired()
		case <-c.stop:
			return
		}
	}
}

// Close stops the cleanup goroutine. The cache stays usable.
func (c *DuplicateCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.wg.Wait()
	})
}

// Clear removes all entries and resets statistics
func (c *DuplicateCache) Clear() {
	c.entries.Range(func(key, _ interface{}) bool {
		c.entries.Delete(key)
		return true
	})
	atomic.StoreInt64(&c.count, 0)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
	atomic.StoreInt64(&c.totalRequests, 0)
}

// Stats holds cache statistics
type Stats struct {
	Hits          int64         `json:"hits"`
	Misses        int64         `json:"misses"`
	Evictions     int64         `json:"evictions"`
	TotalRequests int64         `json:"total_requests"`
	HitRate       float64       `json:"hit_rate"`
	Entries       int           `json:"entries"`
	LastCleanup   time.Time     `json:"last_cleanup"`
	Uptime        time.Duration `json:"uptime_ns"`
}

// Stats returns cache statistics
func (c *DuplicateCache) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	total := atomic.LoadInt64(&c.totalRequests)

	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:          hits,
		Misses:        atomic.LoadInt64(&c.misses),
		Evictions:     atomic.LoadInt64(&c.evictions),
		TotalRequests: total,
		HitRate:       hitRate,
		Entries:       int(atomic.LoadInt64(&c.count)),
		LastCleanup:   time.Unix(0, atomic.LoadInt64(&c.lastCleanup)),
		Uptime:        time.Since(c.createdAt),
	}
}
