package agent

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type cacheEntry struct {
	pipeline  *Pipeline
	createdAt time.Time
}

// PipelineCache maps document ids to live pipelines, created lazily and
// reused across calls. Owned by the host process and passed by handle;
// entries are not persisted and are rebuilt after a restart.
type PipelineCache struct {
	mu         sync.RWMutex
	entries    map[uuid.UUID]*cacheEntry
	build      func(uuid.UUID) *Pipeline
	maxEntries int
	logger     *slog.Logger
}

// NewPipelineCache creates a cache bounded at maxEntries pipelines
// (0 means unbounded). When full, the oldest entry is evicted.
func NewPipelineCache(maxEntries int, build func(uuid.UUID) *Pipeline) *PipelineCache {
	return &PipelineCache{
		entries:    make(map[uuid.UUID]*cacheEntry),
		build:      build,
		maxEntries: maxEntries,
		logger:     slog.Default(),
	}
}

// GetOrCreate returns the cached pipeline for docID, constructing and
// storing one if absent. Construction happens outside the lock, so two
// concurrent first questions for the same document may both build; the
// later store wins and the other pipeline is discarded. Pipelines for
// the same document are interchangeable, so this race only wastes one
// construction.
func (c *PipelineCache) GetOrCreate(docID uuid.UUID) *Pipeline {
	c.mu.RLock()
	entry, ok := c.entries[docID]
	c.mu.RUnlock()
	if ok {
		return entry.pipeline
	}

	pipeline := c.build(docID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[docID] = &cacheEntry{pipeline: pipeline, createdAt: time.Now()}
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictOldestLocked()
	}
	return pipeline
}

// Invalidate removes the entry for docID. Must be called whenever the
// underlying document is deleted, or stale state could leak across
// document identities if ids are ever reused.
func (c *PipelineCache) Invalidate(docID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, docID)
}

// Len returns the number of live pipelines.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *PipelineCache) evictOldestLocked() {
	var oldestID uuid.UUID
	var oldest time.Time
	first := true
	for id, entry := range c.entries {
		if first || entry.createdAt.Before(oldest) {
			oldestID = id
			oldest = entry.createdAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestID)
		c.logger.Info("evicted oldest pipeline", "doc_id", oldestID)
	}
}
