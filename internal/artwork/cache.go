// Package artwork provides the two-tier decoded-artwork object cache:
// capacity- and byte-budget-bounded pools for thumbnail and full-size
// bitmaps, negative-result memoization, and in-flight request
// deduplication over the store's fallback resolution chain.
package artwork

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/tonehaus/aria/internal/domain"
	"github.com/tonehaus/aria/internal/event"
)

const (
	// ThumbnailMaxSize is the largest logical size served from the
	// thumbnail pool; larger requests go to the full-size pool.
	ThumbnailMaxSize = 200

	// MinBudgetMB is the smallest total budget accepted; smaller
	// configured values are clamped, not rejected.
	MinBudgetMB = 100

	// Tier split of the total byte budget
	thumbBudgetShare = 0.40

	// Item-count limits per pool, independent of the byte budgets
	thumbMaxItems = 512
	fullMaxItems  = 128

	// Negative entries age out on their own even without invalidation
	negativeTTL = 12 * time.Hour

	defaultPreloadWorkers = 4
)

// Stats aggregates both pools and the negative set
type Stats struct {
	Thumbnails PoolStats
	FullSize   PoolStats
	Negatives  int
}

// Cache is the decoded-artwork object cache. All methods are safe for
// concurrent use; decode and store work never runs on the caller's
// latency-sensitive path beyond the call itself.
type Cache struct {
	resolver *Resolver
	albums   AlbumLookup
	logger   *slog.Logger

	thumbs *pool
	full   *pool

	negatives *gocache.Cache
	flight    singleflight.Group

	// persist, when set, records a new budget in configuration
	persist func(megabytes int) error

	mu          sync.Mutex
	totalBudget int64
}

// NewCache creates an artwork cache with the given total byte budget
// (clamped to MinBudgetMB). albums may be nil to disable the album
// shortcut; persist may be nil if budget changes need not be saved.
func NewCache(store domain.Store, albums AlbumLookup, budgetBytes int64, persist func(megabytes int) error, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cache{
		resolver:  NewResolver(store, albums),
		albums:    albums,
		logger:    logger,
		thumbs:    newPool(thumbMaxItems, 0),
		full:      newPool(fullMaxItems, 0),
		negatives: gocache.New(negativeTTL, negativeTTL/2),
		persist:   persist,
	}
	c.SetBudget(budgetBytes)
	return c
}

// Get returns the entity's artwork at the requested logical size, or
// (nil, nil) when the entity has no resolvable artwork. Concurrent
// requests for the same key share one resolution; a caller whose ctx
// is cancelled stops waiting without cancelling the shared work.
func (c *Cache) Get(ctx context.Context, entity domain.EntityType, id string, size int) (*Image, error) {
	key := cacheKey(entity, id, size)
	p := c.poolFor(size)

	if img, ok := p.get(key); ok {
		return img, nil
	}

	// Most tracks inherit album artwork: if the owning album is
	// already cached at this size, clone its entry under the track
	// key instead of resolving and decoding again.
	if entity == domain.EntityTrack && c.albums != nil {
		if albumID, ok := c.albums.TrackAlbumID(id); ok {
			if img, ok := p.get(cacheKey(domain.EntityAlbum, albumID, size)); ok {
				p.put(key, img)
				return img, nil
			}
		}
	}

	if _, found := c.negatives.Get(negativeKey(entity, id)); found {
		return nil, nil
	}

	// The shared load must outlive any single waiter.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		return c.load(loadCtx, entity, id, size)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		img, _ := res.Val.(*Image)
		return img, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetAlbum is Get for albums
func (c *Cache) GetAlbum(ctx context.Context, albumID string, size int) (*Image, error) {
	return c.Get(ctx, domain.EntityAlbum, albumID, size)
}

// GetArtist is Get for artists
func (c *Cache) GetArtist(ctx context.Context, artistID string, size int) (*Image, error) {
	return c.Get(ctx, domain.EntityArtist, artistID, size)
}

// Cached returns the entry for the exact key if present; it never
// resolves, decodes, or blocks.
func (c *Cache) Cached(entity domain.EntityType, id string, size int) *Image {
	img, _ := c.poolFor(size).get(cacheKey(entity, id, size))
	return img
}

// CachedAlbum is Cached for albums
func (c *Cache) CachedAlbum(albumID string, size int) *Image {
	return c.Cached(domain.EntityAlbum, albumID, size)
}

// CachedArtist is Cached for artists
func (c *Cache) CachedArtist(artistID string, size int) *Image {
	return c.Cached(domain.EntityArtist, artistID, size)
}

// Preload warms the cache for a batch of tracks with bounded
// concurrency. Individual failures are logged and skipped.
func (c *Cache) Preload(ctx context.Context, trackIDs []string, size int, maxConcurrent int) {
	c.preload(ctx, domain.EntityTrack, trackIDs, size, maxConcurrent)
}

// PreloadAlbums warms the cache for a batch of albums
func (c *Cache) PreloadAlbums(ctx context.Context, albumIDs []string, size int, maxConcurrent int) {
	c.preload(ctx, domain.EntityAlbum, albumIDs, size, maxConcurrent)
}

func (c *Cache) preload(ctx context.Context, entity domain.EntityType, ids []string, size int, maxConcurrent int) {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultPreloadWorkers
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := c.Get(ctx, entity, id, size); err != nil {
				c.logger.Debug("preload failed", "entity", entity.String(), "id", id, "error", err)
			}
		}(id)
	}
	wg.Wait()
}

// Invalidate removes every cached size of the entity from both pools
// and clears its negative entry, so the next request re-resolves from
// the store at any size.
func (c *Cache) Invalidate(entity domain.EntityType, id string) {
	prefix := entityPrefix(entity, id)
	removed := c.thumbs.deletePrefix(prefix) + c.full.deletePrefix(prefix)
	c.negatives.Delete(negativeKey(entity, id))
	if removed > 0 {
		c.logger.Debug("invalidated artwork", "entity", entity.String(), "id", id, "entries", removed)
	}
}

// InvalidateAlbum is Invalidate for albums
func (c *Cache) InvalidateAlbum(albumID string) {
	c.Invalidate(domain.EntityAlbum, albumID)
}

// InvalidateArtist is Invalidate for artists
func (c *Cache) InvalidateArtist(artistID string) {
	c.Invalidate(domain.EntityArtist, artistID)
}

// ClearAll drops both pools and all negative entries
func (c *Cache) ClearAll() {
	c.thumbs.clear()
	c.full.clear()
	c.negatives.Flush()
	c.logger.Debug("cleared artwork cache")
}

// SetBudget splits a total byte budget across the two pools. Values
// below the enforced minimum are clamped.
func (c *Cache) SetBudget(totalBytes int64) {
	min := int64(MinBudgetMB) << 20
	if totalBytes < min {
		totalBytes = min
	}

	c.mu.Lock()
	c.totalBudget = totalBytes
	c.mu.Unlock()

	thumbBytes := int64(float64(totalBytes) * thumbBudgetShare)
	c.thumbs.resize(thumbMaxItems, thumbBytes)
	c.full.resize(fullMaxItems, totalBytes-thumbBytes)
}

// UpdateCacheSize applies a user-configured size in megabytes, clamps
// it to the minimum, persists it when a persister is wired, and
// returns the effective value.
func (c *Cache) UpdateCacheSize(megabytes int) int {
	if megabytes < MinBudgetMB {
		megabytes = MinBudgetMB
	}
	c.SetBudget(int64(megabytes) << 20)

	if c.persist != nil {
		if err := c.persist(megabytes); err != nil {
			c.logger.Warn("failed to persist cache size", "error", err)
		}
	}
	return megabytes
}

// Budget returns the current total byte budget
func (c *Cache) Budget() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBudget
}

// Stats reports both pools and the negative set
func (c *Cache) Stats() Stats {
	return Stats{
		Thumbnails: c.thumbs.stats(),
		FullSize:   c.full.stats(),
		Negatives:  c.negatives.ItemCount(),
	}
}

// HandleEvent applies a library change notification
func (c *Cache) HandleEvent(e event.Event) {
	switch e.Type {
	case event.LibraryChanged:
		c.ClearAll()
	case event.ArtworkChanged:
		c.Invalidate(e.Entity, e.ID)
	}
}

// load resolves, decodes and caches one entity's artwork. It runs at
// most once per key at a time, shared by all concurrent waiters.
func (c *Cache) load(ctx context.Context, entity domain.EntityType, id string, size int) (*Image, error) {
	data, owner, err := c.resolver.Resolve(ctx, entity, id)
	if err != nil {
		// A transient store failure is not proof the entity has no
		// artwork; skip the negative entry so a later request retries.
		c.logger.Warn("artwork resolve failed", "entity", entity.String(), "id", id, "error", err)
		return nil, nil
	}
	if len(data) == 0 {
		c.negatives.SetDefault(negativeKey(entity, id), struct{}{})
		return nil, nil
	}

	img, err := Decode(data, size)
	if err != nil || img == nil {
		c.logger.Warn("artwork decode failed", "entity", entity.String(), "id", id, "error", err)
		c.negatives.SetDefault(negativeKey(entity, id), struct{}{})
		return nil, nil
	}

	p := c.poolFor(size)
	p.put(cacheKey(entity, id, size), img)

	// Bytes resolved through the chain belong to another entity
	// (a track served by its album): cache them under the owner's
	// key too, so a direct request for the owner is a hit.
	if owner.Type != entity || owner.ID != id {
		p.put(cacheKey(owner.Type, owner.ID, size), img)
	}
	return img, nil
}

func (c *Cache) poolFor(size int) *pool {
	if size <= ThumbnailMaxSize {
		return c.thumbs
	}
	return c.full
}

func cacheKey(entity domain.EntityType, id string, size int) string {
	return fmt.Sprintf("%s:%s:%d", entity, id, size)
}

func entityPrefix(entity domain.EntityType, id string) string {
	return entity.String() + ":" + id + ":"
}

func negativeKey(entity domain.EntityType, id string) string {
	return entity.String() + ":" + id
}
