package razor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CodeTreeFactory builds the code tree of a file from its content.
type CodeTreeFactory func(info FileInfo, content string) *CodeTree

// CodeTreeCache memoizes normalized path -> code tree.
type CodeTreeCache interface {
	// GetOrAdd returns the cached tree for path when it is still fresh, or
	// reads the file and builds a new one with factory. It returns nil when
	// the file is missing or unreadable, or when factory returns nil.
	GetOrAdd(ctx context.Context, path string, factory CodeTreeFactory) *CodeTree
}

// CacheConfig configures the default code tree cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached trees.
	// When exceeded, the least recently used entry is evicted.
	// Default: 1000.
	MaxEntries int
}

// DefaultCodeTreeCacheConfig returns the default cache configuration.
func DefaultCodeTreeCacheConfig() CacheConfig {
	return CacheConfig{MaxEntries: DefaultCacheMaxEntries}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// CacheOption configures a DefaultCodeTreeCache.
type CacheOption func(*DefaultCodeTreeCache)

// WithCacheLogger sets the cache logger.
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *DefaultCodeTreeCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// DefaultCodeTreeCache caches code trees read through a FileProvider. An
// entry is fresh while the provider reports the same file version. Concurrent
// misses on the same path and version share a single parse.
type DefaultCodeTreeCache struct {
	provider FileProvider
	config   CacheConfig
	logger   *zap.Logger

	mu      sync.RWMutex
	entries map[string]*codeTreeEntry
	hits    int64
	misses  int64

	group singleflight.Group
}

type codeTreeEntry struct {
	tree       *CodeTree
	version    string
	accessedAt time.Time
}

// NewDefaultCodeTreeCache creates a cache reading files from provider.
func NewDefaultCodeTreeCache(provider FileProvider, config CacheConfig, opts ...CacheOption) *DefaultCodeTreeCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	c := &DefaultCodeTreeCache{
		provider: provider,
		config:   config,
		logger:   zap.NewNop(),
		entries:  make(map[string]*codeTreeEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the file provider backing the cache.
func (c *DefaultCodeTreeCache) Provider() FileProvider {
	return c.provider
}

// GetOrAdd implements CodeTreeCache.
func (c *DefaultCodeTreeCache) GetOrAdd(ctx context.Context, path string, factory CodeTreeFactory) *CodeTree {
	info, err := c.provider.GetFileInfo(ctx, path)
	if err != nil {
		c.logger.Debug(LogMsgFileUnavailable, zap.String(LogFieldPath, path), zap.Error(err))
		c.Invalidate(path)
		return nil
	}

	c.mu.Lock()
	if entry, ok := c.entries[path]; ok {
		if entry.version == info.Version {
			entry.accessedAt = time.Now()
			c.hits++
			c.mu.Unlock()
			c.logger.Debug(LogMsgCacheHit, zap.String(LogFieldPath, path), zap.String(LogFieldVersion, info.Version))
			return entry.tree
		}
		c.logger.Debug(LogMsgCacheStale, zap.String(LogFieldPath, path), zap.String(LogFieldVersion, info.Version))
	}
	c.misses++
	c.mu.Unlock()

	key := path + "\x00" + info.Version
	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		content, err := c.provider.ReadFile(ctx, path)
		if err != nil {
			c.logger.Debug(LogMsgFileUnavailable, zap.String(LogFieldPath, path), zap.Error(err))
			return (*CodeTree)(nil), nil
		}
		tree := factory(info, content)
		if tree != nil {
			c.store(path, info.Version, tree)
		}
		return tree, nil
	})
	c.logger.Debug(LogMsgCacheMiss, zap.String(LogFieldPath, path), zap.Bool(LogFieldShared, shared))

	tree, _ := v.(*CodeTree)
	return tree
}

func (c *DefaultCodeTreeCache) store(path, version string, tree *CodeTree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[path]; !exists && len(c.entries) >= c.config.MaxEntries {
		c.evictOldest()
	}
	c.entries[path] = &codeTreeEntry{
		tree:       tree,
		version:    version,
		accessedAt: time.Now(),
	}
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *DefaultCodeTreeCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.accessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.accessedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.logger.Debug(LogMsgCacheEvicted, zap.String(LogFieldPath, oldestKey))
	}
}

// Invalidate removes the entry for path.
func (c *DefaultCodeTreeCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// InvalidateAll clears the entire cache.
func (c *DefaultCodeTreeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*codeTreeEntry)
}

// Stats returns cache statistics.
func (c *DefaultCodeTreeCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
