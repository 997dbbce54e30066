// Package pricecache provides the persistent last-known-good price cache.
//
// The whole symbol → {price, timestamp} map is persisted as one JSON blob
// under a fixed storage key and reloaded lazily on first use. The in-memory
// map stays authoritative for the process lifetime even when write-through
// to storage fails.
package pricecache

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
)

// StorageKey is the logical key the serialized cache map is persisted under.
const StorageKey = "price_cache"

// DefaultTTL is the age beyond which a cached price is no longer served.
const DefaultTTL = time.Hour

// Cache maps upper-cased symbols to their last observed price.
// Last write wins per symbol.
type Cache struct {
	mu      sync.Mutex
	store   interfaces.KVStore
	logger  *common.Logger
	ttl     time.Duration
	now     func() time.Time // injectable clock for testing
	entries map[string]models.PricePoint
	loaded  bool
}

// Option configures the cache.
type Option func(*Cache)

// WithTTL overrides the default one-hour expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects a clock for testing.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a price cache backed by the given store.
// store may be nil — the cache then operates purely in memory.
func New(store interfaces.KVStore, logger *common.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		logger:  logger,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]models.PricePoint),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// load reads the persisted map on first use. Unreadable or corrupt blobs
// are logged and treated as an empty cache.
func (c *Cache) load(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true

	if c.store == nil {
		return
	}

	raw, err := c.store.Get(ctx, StorageKey)
	if err != nil || raw == "" {
		return
	}

	var entries map[string]models.PricePoint
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn().Err(err).Msg("Price cache blob is corrupt, starting empty")
		return
	}

	c.entries = entries
	c.logger.Debug().Int("entries", len(entries)).Msg("Price cache loaded")
}

// persist writes the whole map through to storage. Failures are logged;
// the in-memory map remains authoritative.
func (c *Cache) persist(ctx context.Context) {
	if c.store == nil {
		return
	}

	data, err := json.Marshal(c.entries)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to serialize price cache")
		return
	}

	if err := c.store.Set(ctx, StorageKey, string(data)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to persist price cache, in-memory state retained")
	}
}

func (c *Cache) expired(p models.PricePoint) bool {
	age := c.now().UnixMilli() - p.Timestamp
	return age > c.ttl.Milliseconds()
}

// Save stores {price, now} for the symbol and persists the whole map.
// Non-positive and non-finite prices are ignored — a zero is "absent",
// never a valid quote.
func (c *Cache) Save(ctx context.Context, symbol string, price float64) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}
	key := normalizeSymbol(symbol)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(ctx)

	c.entries[key] = models.PricePoint{
		Price:     price,
		Timestamp: c.now().UnixMilli(),
	}
	c.persist(ctx)
}

// Get returns the cached price if present and younger than the TTL.
// A stale entry is evicted (the reduced map is persisted) and reported
// as a miss.
func (c *Cache) Get(ctx context.Context, symbol string) (float64, bool) {
	key := normalizeSymbol(symbol)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(ctx)

	p, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if c.expired(p) {
		delete(c.entries, key)
		c.persist(ctx)
		c.logger.Debug().Str("symbol", key).Msg("Evicted stale price cache entry")
		return 0, false
	}
	return p.Price, true
}

// GetAll returns every non-expired entry. Expired entries are excluded
// but not evicted in place.
func (c *Cache) GetAll(ctx context.Context) map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(ctx)

	out := make(map[string]float64, len(c.entries))
	for symbol, p := range c.entries {
		if c.expired(p) {
			continue
		}
		out[symbol] = p.Price
	}
	return out
}

// PurgeExpired evicts every entry older than the TTL and persists the
// reduced map if anything was removed.
func (c *Cache) PurgeExpired(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load(ctx)

	removed := 0
	for symbol, p := range c.entries {
		if c.expired(p) {
			delete(c.entries, symbol)
			removed++
		}
	}
	if removed > 0 {
		c.persist(ctx)
		c.logger.Debug().Int("removed", removed).Msg("Purged expired price cache entries")
	}
}
