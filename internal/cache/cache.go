// Package cache memoizes expensive, deterministic report computations.
//
// Entries are keyed by the kind of computation and a content hash of its input.
// Each entry also records a list of coarse dependency fingerprints; an entry is
// only served while it is younger than the TTL and its fingerprints match the
// ones freshly derived from the request.
package cache

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Kind names a family of cached computations
type Kind string

const (
	KindDistribution Kind = "distribution"
	KindLiquidity    Kind = "liquidity"
	KindStressTest   Kind = "stress_test"
	KindProjection   Kind = "projection"
)

// Input is a cacheable request.
// Dependencies returns the fingerprints used for staleness checks; they are
// coarser than the full input hash and never used for identity.
type Input interface {
	Dependencies() ([]string, error)
}

// Options configures a Cache
type Options struct {
	TTL            time.Duration
	MaxEntries     int
	EvictionMargin int              // extra entries removed by an eviction pass
	Now            func() time.Time // clock, time.Now when nil
}

// DefaultOptions returns a 5 minute TTL, 100 entries and a margin of 10
func DefaultOptions() Options {
	return Options{
		TTL:            5 * time.Minute,
		MaxEntries:     100,
		EvictionMargin: 10,
	}
}

// Stats is a point-in-time view of the cache counters
type Stats struct {
	Hits               uint64        `json:"hits"`
	Misses             uint64        `json:"misses"`
	Evictions          uint64        `json:"evictions"`
	Entries            int           `json:"entries"`
	HitRate            float64       `json:"hitRate"`
	TotalComputeTime   time.Duration `json:"totalComputeTime"`
	AverageComputeTime time.Duration `json:"averageComputeTime"`
}

type entry struct {
	data         any
	timestamp    time.Time
	dependencies []string
	computeTime  time.Duration
}

// Cache is an in-process memoization cache safe for concurrent use.
// A mutex guards the entry map and counters; concurrent misses on the same
// key and dependency list share one computation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	flights singleflight.Group
	opts    Options
	log     zerolog.Logger

	hits             uint64
	misses           uint64
	evictions        uint64
	totalComputeTime time.Duration
}

// New creates a new Cache instance
func New(opts Options, log zerolog.Logger) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultOptions().MaxEntries
	}
	if opts.EvictionMargin < 0 {
		opts.EvictionMargin = 0
	}
	return &Cache{
		entries: make(map[string]*entry),
		opts:    opts,
		log:     log.With().Str("component", "computation_cache").Logger(),
	}
}

// GetOrCompute returns the cached value for (kind, input) or computes and stores it.
// Logic:
//  1. Derive the key (kind + input hash) and the dependency fingerprints
//  2. Serve a valid entry (age < TTL, identical fingerprints) without calling compute
//  3. Otherwise call compute once per key and fingerprint list, time it, store the result.
//     Callers that join an in-flight computation count as hits.
//  4. Evict oldest entries when the cache grows past MaxEntries
//
// A compute error is returned unchanged and nothing is stored.
func GetOrCompute[T any](c *Cache, kind Kind, input Input, compute func() (T, error)) (T, error) {
	var zero T

	key, err := Key(kind, input)
	if err != nil {
		return zero, err
	}
	deps, err := input.Dependencies()
	if err != nil {
		return zero, err
	}

	if v, ok := lookup[T](c, key, deps); ok {
		return v, nil
	}

	flight := key + "|" + strings.Join(deps, "|")
	executed := false
	v, err, _ := c.flights.Do(flight, func() (any, error) {
		executed = true
		// A flight that finished just before this one may already have stored it
		if v, ok := lookup[T](c, key, deps); ok {
			return v, nil
		}

		start := c.opts.Now()
		result, err := compute()
		if err != nil {
			c.log.Debug().Err(err).Str("key", key).Msg("computation failed, nothing cached")
			return nil, err
		}
		elapsed := c.opts.Now().Sub(start)

		c.store(key, deps, result, elapsed)
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	if !executed {
		c.recordSharedHit(key)
	}
	return v.(T), nil
}

// recordSharedHit counts a result received from another caller's computation
func (c *Cache) recordSharedHit(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits++
	c.log.Debug().Str("key", key).Msg("cache hit, shared in-flight computation")
}

func lookup[T any](c *Cache, key string, deps []string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok || !c.valid(e, deps) {
		return zero, false
	}
	v, ok := e.data.(T)
	if !ok {
		return zero, false
	}

	c.hits++
	c.log.Debug().Str("key", key).Msg("cache hit")
	return v, true
}

func (c *Cache) valid(e *entry, deps []string) bool {
	return c.opts.Now().Sub(e.timestamp) < c.opts.TTL && slices.Equal(e.dependencies, deps)
}

func (c *Cache) store(key string, deps []string, data any, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		data:         data,
		timestamp:    c.opts.Now(),
		dependencies: slices.Clone(deps),
		computeTime:  elapsed,
	}
	c.misses++
	c.totalComputeTime += elapsed
	c.log.Debug().Str("key", key).Dur("compute_time", elapsed).Msg("cache miss")

	if len(c.entries) > c.opts.MaxEntries {
		c.evictLocked()
	}
}

// evictLocked removes the oldest entries until the cache is back under
// MaxEntries minus the eviction margin
func (c *Cache) evictLocked() {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := c.entries[keys[i]].timestamp, c.entries[keys[j]].timestamp
		if ti.Equal(tj) {
			return keys[i] < keys[j]
		}
		return ti.Before(tj)
	})

	n := min(len(keys)-c.opts.MaxEntries+c.opts.EvictionMargin, len(keys))
	for _, k := range keys[:n] {
		delete(c.entries, k)
	}
	c.evictions += uint64(n)
	c.log.Info().Int("evicted", n).Int("remaining", len(c.entries)).Msg("cache eviction")
}

// Stats returns the current counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:             c.hits,
		Misses:           c.misses,
		Evictions:        c.evictions,
		Entries:          len(c.entries),
		TotalComputeTime: c.totalComputeTime,
	}
	if c.misses > 0 {
		s.AverageComputeTime = c.totalComputeTime / time.Duration(c.misses)
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Size returns the number of stored entries, valid or not
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry and resets the counters
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.hits, c.misses, c.evictions = 0, 0, 0
	c.totalComputeTime = 0
}

// Invalidate removes every entry whose key contains pattern and returns how many were removed.
// This is a linear scan over all keys.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if strings.Contains(k, pattern) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.log.Info().Str("pattern", pattern).Int("removed", removed).Msg("cache invalidated")
	}
	return removed
}

// PurgeExpired removes entries older than the TTL and returns how many were removed
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.timestamp) >= c.opts.TTL {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
