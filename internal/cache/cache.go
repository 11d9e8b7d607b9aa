// Package cache holds the authoritative in-process copy of the timeline
// dataset: reads never touch disk, upserts mark the state dirty, and a
// background loop periodically writes dirty state back through the
// persistence gateway.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jeanpaul/lifeline/internal/metrics"
	"github.com/jeanpaul/lifeline/internal/persist"
	"github.com/jeanpaul/lifeline/internal/timeline"
)

// Gateway is the slice of the persistence layer the cache needs.
type Gateway interface {
	Load(path string) (timeline.Dataset, error)
	SaveAtomic(path string, ds timeline.Dataset) error
}

// Cache is the thread-safe façade over the record store and the
// persistence gateway. One mutex guards dataset, name index, and dirty
// flag; it is never held across disk writes or enrichment calls.
type Cache struct {
	mu    sync.Mutex
	store *timeline.Store
	dirty bool

	gw   Gateway
	path string
	log  *slog.Logger
}

// New builds an unloaded cache. Call Preload exactly once before exposing
// it to concurrent readers and writers.
func New(gw Gateway, path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: timeline.NewStore(), gw: gw, path: path, log: logger}
}

// Preload loads the persisted dataset, substituting fallback when the
// file is absent, corrupt, or empty, and builds the name index from the
// roster names followed by the dataset names. It runs in the
// single-threaded startup phase and clears the dirty flag.
func (c *Cache) Preload(roster []string, fallback timeline.Dataset) {
	ds, err := c.gw.Load(c.path)
	switch {
	case errors.Is(err, persist.ErrNotExist):
		c.log.Info("dataset file absent, using fallback", "path", c.path)
		ds = fallback
	case errors.Is(err, persist.ErrCorrupt):
		c.log.Warn("dataset file corrupt, using fallback", "path", c.path, "err", err)
		ds = fallback
	case err != nil:
		c.log.Warn("dataset load failed, using fallback", "path", c.path, "err", err)
		ds = fallback
	case ds.IsEmpty():
		c.log.Info("dataset file empty, using fallback", "path", c.path)
		ds = fallback
	default:
		c.log.Info("dataset loaded", "path", c.path, "persons", len(ds.Persons))
	}

	c.mu.Lock()
	c.store.Reset(ds, roster)
	c.dirty = false
	persons := c.store.Len()
	names := len(c.store.Names())
	c.mu.Unlock()

	metrics.Persons.Set(float64(persons))
	c.log.Info("cache preloaded", "persons", persons, "names", names)
}

// DatasetOrFallback returns a snapshot of the held dataset, or fallback
// when nothing is held. The copy stays valid regardless of concurrent
// upserts after the call.
func (c *Cache) DatasetOrFallback(fallback timeline.Dataset) timeline.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store.Len() == 0 {
		return fallback
	}
	return c.store.Snapshot()
}

// Find looks up a person by exact name in the held dataset, falling back
// to the provided dataset when nothing is held. See timeline.Dataset.Find
// for the case-sensitivity contract.
func (c *Cache) Find(name string, fallback timeline.Dataset) (timeline.Person, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store.Len() == 0 {
		return fallback.Find(name)
	}
	return c.store.Dataset().Find(name)
}

// Names returns the current name index. Never nil.
func (c *Cache) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Names()
}

// Upsert stores the person (case-insensitive find-or-append) and marks
// the cache dirty. Empty names are silently ignored.
func (c *Cache) Upsert(p timeline.Person) {
	c.mu.Lock()
	mutated := c.store.Upsert(p)
	if mutated {
		c.dirty = true
	}
	persons := c.store.Len()
	c.mu.Unlock()

	if mutated {
		metrics.Upserts.Inc()
		metrics.Persons.Set(float64(persons))
	}
}

// Dirty reports whether in-memory state has mutations not yet on disk.
func (c *Cache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Len returns the number of persons held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Run drives the periodic flush loop until ctx is cancelled. Failures are
// logged and retried next cycle; the loop never terminates the process.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	c.log.Info("flush loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("flush loop stopped")
			return
		case <-ticker.C:
			c.flush()
		}
	}
}

// FlushNow performs one flush cycle immediately: if the cache is dirty, a
// snapshot is written through the gateway. Reports whether a write
// happened. Used by the flush loop, by shutdown, and by tests.
func (c *Cache) FlushNow() (bool, error) {
	return c.flush()
}

func (c *Cache) flush() (bool, error) {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		metrics.Flushes.WithLabelValues("skipped").Inc()
		return false, nil
	}
	snap := c.store.Snapshot()
	c.dirty = false
	c.mu.Unlock()

	// The lock is released before the disk write. A mutation arriving
	// during the write re-sets the flag and is captured next cycle;
	// writes are idempotent full-snapshot overwrites.
	if err := c.gw.SaveAtomic(c.path, snap); err != nil {
		// Re-arm the flag so a transient disk error is retried next
		// cycle instead of waiting for another mutation.
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
		metrics.Flushes.WithLabelValues("failed").Inc()
		c.log.Error("flush failed, will retry next cycle", "path", c.path, "err", err)
		return false, err
	}

	metrics.Flushes.WithLabelValues("written").Inc()
	c.log.Info("cache flushed", "path", c.path, "persons", len(snap.Persons))
	return true, nil
}
