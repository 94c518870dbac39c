// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// Default cache limits.
const (
	// DefaultBudgetMB is the default texture cache budget (256 MB).
	DefaultBudgetMB = 256

	// MinBudgetMB is the minimum allowed budget (16 MB).
	MinBudgetMB = 16
)

// UploadRecorder receives texture upload and memory telemetry.
// The performance profiler implements it; a nil recorder disables
// recording.
type UploadRecorder interface {
	RecordTextureUpload(bytes int, duration time.Duration, reused bool)
	UpdateGPUMemoryUsage(bytes uint64)
}

// CacheConfig holds configuration for creating a TextureCache.
type CacheConfig struct {
	// BudgetMB is the eviction budget in megabytes.
	// Defaults to DefaultBudgetMB if <= 0.
	BudgetMB int

	// Format is the pixel format for cached textures.
	// The per-entry cost is width*height*Format.BytesPerPixel().
	Format TextureFormat

	// Recorder, if non-nil, receives upload and memory telemetry.
	Recorder UploadRecorder
}

// CacheStats is a point-in-time read of cache state.
type CacheStats struct {
	// Count is the number of cached textures.
	Count int
	// SizeMB is the estimated total size of cached textures.
	SizeMB float64
	// MaxSizeMB is the eviction budget.
	MaxSizeMB float64
	// Hits and Misses count GetCached outcomes.
	Hits   uint64
	Misses uint64
	// Evictions counts textures removed by the budget sweep.
	Evictions uint64
}

// cacheKey is the full identity of a cached texture. The same logical
// key at different dimensions is a different entry; both may coexist
// until the older one ages out.
type cacheKey struct {
	key    string
	width  int
	height int
}

// cacheEntry tracks a cached texture with its LRU position.
type cacheEntry struct {
	key     cacheKey
	tex     *Texture
	element *list.Element
}

// TextureCache amortizes GPU buffer creation across frames by keeping a
// byte-budgeted pool keyed by logical identity plus dimensions.
//
// The cache is designed for single-context use by the pipeline executor;
// the mutex makes individual operations safe if a background task reads
// stats, but no two executions should drive the same cache concurrently.
type TextureCache struct {
	mu sync.Mutex

	backend  *Backend
	format   TextureFormat
	recorder UploadRecorder

	budgetBytes uint64
	usedBytes   uint64

	entries map[cacheKey]*cacheEntry
	lru     *list.List // front = most recently used

	hits      uint64
	misses    uint64
	evictions uint64

	disposed bool
}

// NewTextureCache creates a texture cache. A nil backend is allowed and
// produces logical textures.
func NewTextureCache(backend *Backend, config CacheConfig) *TextureCache {
	budget := config.BudgetMB
	if budget <= 0 {
		budget = DefaultBudgetMB
	}
	if budget < MinBudgetMB {
		budget = MinBudgetMB
	}

	return &TextureCache{
		backend:     backend,
		format:      config.Format,
		recorder:    config.Recorder,
		budgetBytes: uint64(budget) * 1024 * 1024,
		entries:     make(map[cacheKey]*cacheEntry),
		lru:         list.New(),
	}
}

// CreateTexture unconditionally allocates a new texture.
// The cache is not touched; the caller owns the result.
func (c *TextureCache) CreateTexture(width, height int) (*Texture, error) {
	if c.isDisposed() {
		return nil, ErrCacheDisposed
	}
	return CreateTexture(c.backend, TextureConfig{
		Width:  width,
		Height: height,
		Format: c.format,
		Usage:  DefaultTextureUsage,
	})
}

// CreateTextureFromPixels allocates a texture and uploads pixels in one
// step. The caller owns the result.
func (c *TextureCache) CreateTextureFromPixels(pix []byte, width, height int) (*Texture, error) {
	tex, err := c.CreateTexture(width, height)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateFromPixels(tex, pix); err != nil {
		tex.Close()
		return nil, err
	}
	return tex, nil
}

// GetCached returns the cached texture for (key, width, height),
// creating it on a miss. A hit promotes the entry to most recently used
// and returns the identical handle. A key present at other dimensions is
// a miss; the stale entry stays until the budget sweep removes it.
//
// After inserting a new entry the cache evicts least-recently-used
// entries until the estimated total size is back under budget. The entry
// just inserted is never evicted, even if it alone exceeds the budget
// (logged pass-through).
func (c *TextureCache) GetCached(key string, width, height int) (*Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return nil, ErrCacheDisposed
	}

	ck := cacheKey{key: key, width: width, height: height}
	if entry, ok := c.entries[ck]; ok {
		c.hits++
		c.lru.MoveToFront(entry.element)
		return entry.tex, nil
	}

	c.misses++
	tex, err := CreateTexture(c.backend, TextureConfig{
		Width:  width,
		Height: height,
		Format: c.format,
		Label:  key,
		Usage:  DefaultTextureUsage,
	})
	if err != nil {
		return nil, err
	}

	entry := &cacheEntry{key: ck, tex: tex}
	entry.element = c.lru.PushFront(entry)
	c.entries[ck] = entry
	c.usedBytes += tex.SizeBytes()

	c.evictOverBudget(entry)
	c.reportMemory()

	return tex, nil
}

// UpdateFromPixels replaces a texture's pixel contents in place.
// No allocation occurs and cache bookkeeping is unchanged.
func (c *TextureCache) UpdateFromPixels(tex *Texture, pix []byte) error {
	if tex == nil {
		return ErrNilPixels
	}
	start := time.Now()
	if err := tex.Upload(pix); err != nil {
		return err
	}
	if c.recorder != nil {
		c.recorder.RecordTextureUpload(len(pix), time.Since(start), true)
	}
	return nil
}

// CreateOrUpdate updates tex in place when it is non-nil and matches the
// requested dimensions, and creates a fresh texture otherwise. The
// returned handle equals tex in the update case.
func (c *TextureCache) CreateOrUpdate(tex *Texture, pix []byte, width, height int) (*Texture, error) {
	if tex != nil && !tex.IsReleased() && tex.Width() == width && tex.Height() == height {
		if err := c.UpdateFromPixels(tex, pix); err != nil {
			return nil, err
		}
		return tex, nil
	}

	created, err := c.CreateTexture(width, height)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := created.Upload(pix); err != nil {
		created.Close()
		return nil, err
	}
	if c.recorder != nil {
		c.recorder.RecordTextureUpload(len(pix), time.Since(start), false)
	}
	return created, nil
}

// Delete releases a texture. If the cache tracks it, the entry is
// removed from the LRU bookkeeping; caller-owned textures that were
// never cached are simply closed.
func (c *TextureCache) Delete(tex *Texture) {
	if tex == nil {
		return
	}

	c.mu.Lock()
	if !c.disposed {
		for ck, entry := range c.entries {
			if entry.tex == tex {
				c.removeLocked(ck, entry)
				break
			}
		}
		c.reportMemory()
	}
	c.mu.Unlock()

	tex.Close()
}

// Clear releases every cached texture but leaves the cache usable.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.clearLocked()
	c.reportMemory()
}

// Dispose releases every cached texture and permanently disables the
// cache. All subsequent operations fail with ErrCacheDisposed.
func (c *TextureCache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return
	}
	c.clearLocked()
	c.entries = nil
	c.lru = nil
	c.disposed = true
}

// Stats returns a snapshot of cache state.
func (c *TextureCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	const mb = 1024 * 1024
	return CacheStats{
		Count:     len(c.entries),
		SizeMB:    float64(c.usedBytes) / mb,
		MaxSizeMB: float64(c.budgetBytes) / mb,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *TextureCache) isDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// evictOverBudget removes least-recently-used entries until usedBytes is
// under budget. keep is the entry just inserted; it survives even if it
// alone exceeds the budget. Caller must hold c.mu.
func (c *TextureCache) evictOverBudget(keep *cacheEntry) {
	for c.usedBytes > c.budgetBytes {
		elem := c.lru.Back()
		if elem == nil {
			break
		}
		entry := elem.Value.(*cacheEntry)
		if entry == keep {
			slogger().Warn("texture exceeds cache budget, keeping anyway",
				"key", entry.key.key,
				"sizeBytes", entry.tex.SizeBytes(),
				"budgetBytes", c.budgetBytes)
			break
		}
		c.removeLocked(entry.key, entry)
		entry.tex.Close()
		c.evictions++
	}
}

// removeLocked unlinks an entry from both indexes. Caller must hold c.mu
// and is responsible for closing the texture when appropriate.
func (c *TextureCache) removeLocked(ck cacheKey, entry *cacheEntry) {
	c.lru.Remove(entry.element)
	delete(c.entries, ck)
	c.usedBytes -= entry.tex.SizeBytes()
}

func (c *TextureCache) clearLocked() {
	for ck, entry := range c.entries {
		c.lru.Remove(entry.element)
		delete(c.entries, ck)
		entry.tex.Close()
	}
	c.usedBytes = 0
}

func (c *TextureCache) reportMemory() {
	if c.recorder != nil {
		c.recorder.UpdateGPUMemoryUsage(c.usedBytes)
	}
}

// String returns a human-readable summary, useful in debug logs.
func (c *TextureCache) String() string {
	s := c.Stats()
	return fmt.Sprintf("TextureCache[%d textures, %.1f/%.0f MB, %d evictions]",
		s.Count, s.SizeMB, s.MaxSizeMB, s.Evictions)
}
