// Package metadata provides the read-through cache for lightweight
// library records: folders, tracks, per-folder track lists and playlists.
package metadata

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/tonehaus/aria/internal/domain"
	"github.com/tonehaus/aria/internal/event"
)

// DefaultTTL is how long a cached collection is served before a
// non-forced read triggers a refresh.
const DefaultTTL = 5 * time.Minute

// Scope selects which sub-caches an invalidation clears
type Scope int

const (
	// ScopeAll clears every collection and the id index
	ScopeAll Scope = iota

	// ScopeFolders clears the folder list and per-folder track lists
	ScopeFolders

	// ScopePlaylists clears the playlist list only
	ScopePlaylists
)

// Stats is a snapshot of cache occupancy for diagnostics
type Stats struct {
	FolderCount      int
	TrackCount       int
	PlaylistCount    int
	FolderListCount  int
	IndexedTracks    int
	FoldersFetchedAt time.Time
	TracksFetchedAt  time.Time
	PlaylistsFetched time.Time
}

// Cache is a read-through, TTL-based cache over the library store.
// Collections are replaced wholesale under the write lock; readers see
// either the previous snapshot or the fully replaced one.
type Cache struct {
	store  domain.Store
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu           sync.RWMutex
	folders      []domain.Folder
	foldersAt    time.Time
	tracks       []domain.Track
	tracksAt     time.Time
	playlists    []domain.Playlist
	playlistsAt  time.Time
	folderTracks map[string][]domain.Track
	stats        *domain.LibraryStats
	statsAt      time.Time

	// id -> track point-lookup index, populated as a side effect of
	// collection reads; entries age out with the cache TTL
	byID *expirable.LRU[string, *domain.Track]

	flight singleflight.Group
}

// NewCache creates a metadata cache over the given store. A zero ttl
// selects DefaultTTL.
func NewCache(store domain.Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:        store,
		logger:       logger,
		ttl:          ttl,
		now:          time.Now,
		folderTracks: make(map[string][]domain.Track),
		byID:         expirable.NewLRU[string, *domain.Track](0, nil, ttl),
	}
}

// GetFolders returns the folder list, refreshing from the store when
// forced, never loaded, or stale.
func (c *Cache) GetFolders(ctx context.Context, force bool) ([]domain.Folder, error) {
	c.mu.RLock()
	snapshot, fetchedAt := c.folders, c.foldersAt
	c.mu.RUnlock()

	if !force && c.fresh(fetchedAt) {
		return snapshot, nil
	}

	v, err, _ := c.flight.Do("folders", func() (interface{}, error) {
		folders, err := c.store.ReadFolders(ctx)
		if err != nil {
			c.logger.Error("failed to read folders", "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.folders = folders
		c.foldersAt = c.now()
		c.mu.Unlock()
		c.logger.Debug("refreshed folders", "count", len(folders))
		return folders, nil
	})
	if err != nil {
		// Stale-but-available: keep serving the prior snapshot to
		// callers that ask again; this caller sees the error.
		return nil, err
	}
	return v.([]domain.Folder), nil
}

// GetAllTracks returns every track in the library, refreshing from the
// store when forced, never loaded, or stale.
func (c *Cache) GetAllTracks(ctx context.Context, force bool) ([]domain.Track, error) {
	c.mu.RLock()
	snapshot, fetchedAt := c.tracks, c.tracksAt
	c.mu.RUnlock()

	if !force && c.fresh(fetchedAt) {
		return snapshot, nil
	}

	v, err, _ := c.flight.Do("tracks", func() (interface{}, error) {
		tracks, err := c.store.ReadAllTracks(ctx)
		if err != nil {
			c.logger.Error("failed to read tracks", "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.tracks = tracks
		c.tracksAt = c.now()
		c.mu.Unlock()
		c.indexTracks(tracks)
		c.logger.Debug("refreshed tracks", "count", len(tracks))
		return tracks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Track), nil
}

// GetTracks returns the tracks for a folder. Virtual folders are always
// derived by filtering the all-tracks snapshot by path prefix; stored
// folders are cached per folder id until explicitly invalidated.
func (c *Cache) GetTracks(ctx context.Context, folder domain.Folder, force bool) ([]domain.Track, error) {
	if folder.IsVirtual() {
		all, err := c.GetAllTracks(ctx, force)
		if err != nil {
			return nil, err
		}
		var tracks []domain.Track
		for _, t := range all {
			if strings.HasPrefix(t.Path, folder.Path) {
				tracks = append(tracks, t)
			}
		}
		return tracks, nil
	}

	if !force {
		c.mu.RLock()
		cached, ok := c.folderTracks[folder.ID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	v, err, _ := c.flight.Do("folder:"+folder.ID, func() (interface{}, error) {
		tracks, err := c.store.ReadTracksForFolder(ctx, folder.ID)
		if err != nil {
			c.logger.Error("failed to read folder tracks", "error", err, "folderID", folder.ID)
			return nil, err
		}
		c.mu.Lock()
		c.folderTracks[folder.ID] = tracks
		c.mu.Unlock()
		c.indexTracks(tracks)
		c.logger.Debug("refreshed folder tracks", "folderID", folder.ID, "count", len(tracks))
		return tracks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Track), nil
}

// GetTrack returns a single track, consulting the id index first and
// falling back to a store point read.
func (c *Cache) GetTrack(ctx context.Context, id string, force bool) (*domain.Track, error) {
	if !force {
		if t, ok := c.byID.Get(id); ok {
			return t, nil
		}
	}

	track, err := c.store.ReadTrackByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.byID.Add(id, track)
	return track, nil
}

// Track is the non-suspending best-effort lookup: index hit or nil.
func (c *Cache) Track(id string) *domain.Track {
	if t, ok := c.byID.Get(id); ok {
		return t
	}
	return nil
}

// TrackAlbumID exposes the owning album of an indexed track. It is the
// narrow lookup capability the artwork cache uses for its album
// shortcut; a miss just means the shortcut is unavailable.
func (c *Cache) TrackAlbumID(trackID string) (string, bool) {
	t, ok := c.byID.Get(trackID)
	if !ok {
		return "", false
	}
	return t.AlbumID, t.AlbumID != ""
}

// GetAllPlaylists returns the playlist list, refreshing when forced,
// never loaded, or stale.
func (c *Cache) GetAllPlaylists(ctx context.Context, force bool) ([]domain.Playlist, error) {
	c.mu.RLock()
	snapshot, fetchedAt := c.playlists, c.playlistsAt
	c.mu.RUnlock()

	if !force && c.fresh(fetchedAt) {
		return snapshot, nil
	}

	v, err, _ := c.flight.Do("playlists", func() (interface{}, error) {
		playlists, err := c.store.ReadAllPlaylists(ctx)
		if err != nil {
			c.logger.Error("failed to read playlists", "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.playlists = playlists
		c.playlistsAt = c.now()
		c.mu.Unlock()
		c.logger.Debug("refreshed playlists", "count", len(playlists))
		return playlists, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Playlist), nil
}

// GetLibraryStats returns whole-library aggregates, cached with the
// same TTL as the collections.
func (c *Cache) GetLibraryStats(ctx context.Context, force bool) (*domain.LibraryStats, error) {
	c.mu.RLock()
	snapshot, fetchedAt := c.stats, c.statsAt
	c.mu.RUnlock()

	if !force && snapshot != nil && c.fresh(fetchedAt) {
		return snapshot, nil
	}

	v, err, _ := c.flight.Do("stats", func() (interface{}, error) {
		stats, err := c.store.ReadLibraryStats(ctx)
		if err != nil {
			c.logger.Error("failed to read library stats", "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.stats = stats
		c.statsAt = c.now()
		c.mu.Unlock()
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.LibraryStats), nil
}

// Invalidate clears the sub-caches covered by scope. A scoped
// invalidation leaves unrelated collections untouched.
func (c *Cache) Invalidate(scope Scope) {
	c.mu.Lock()
	switch scope {
	case ScopeAll:
		c.folders = nil
		c.foldersAt = time.Time{}
		c.tracks = nil
		c.tracksAt = time.Time{}
		c.playlists = nil
		c.playlistsAt = time.Time{}
		c.folderTracks = make(map[string][]domain.Track)
		c.stats = nil
		c.statsAt = time.Time{}
	case ScopeFolders:
		c.folders = nil
		c.foldersAt = time.Time{}
		c.folderTracks = make(map[string][]domain.Track)
	case ScopePlaylists:
		c.playlists = nil
		c.playlistsAt = time.Time{}
	}
	c.mu.Unlock()

	if scope == ScopeAll {
		c.byID.Purge()
	}
	c.logger.Debug("invalidated metadata cache", "scope", int(scope))
}

// InvalidateFolderTracks clears one folder's cached track list
func (c *Cache) InvalidateFolderTracks(folderID string) {
	c.mu.Lock()
	delete(c.folderTracks, folderID)
	c.mu.Unlock()
}

// InvalidateTrack removes a single track from the id index
func (c *Cache) InvalidateTrack(trackID string) {
	c.byID.Remove(trackID)
}

// RefreshAll drops every snapshot and re-reads the three collections
func (c *Cache) RefreshAll(ctx context.Context) error {
	c.Invalidate(ScopeAll)

	if _, err := c.GetFolders(ctx, true); err != nil {
		return err
	}
	if _, err := c.GetAllTracks(ctx, true); err != nil {
		return err
	}
	if _, err := c.GetAllPlaylists(ctx, true); err != nil {
		return err
	}
	return nil
}

// Clear drops all cached state without touching the store
func (c *Cache) Clear() {
	c.Invalidate(ScopeAll)
}

// Stats reports cache occupancy and refresh timestamps
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		FolderCount:      len(c.folders),
		TrackCount:       len(c.tracks),
		PlaylistCount:    len(c.playlists),
		FolderListCount:  len(c.folderTracks),
		IndexedTracks:    c.byID.Len(),
		FoldersFetchedAt: c.foldersAt,
		TracksFetchedAt:  c.tracksAt,
		PlaylistsFetched: c.playlistsAt,
	}
}

// HandleEvent applies a library change notification. Artwork events are
// not this cache's concern.
func (c *Cache) HandleEvent(e event.Event) {
	switch e.Type {
	case event.LibraryChanged:
		c.Invalidate(ScopeAll)
	case event.FoldersChanged:
		c.Invalidate(ScopeFolders)
	case event.PlaylistsChanged:
		c.Invalidate(ScopePlaylists)
	}
}

func (c *Cache) fresh(fetchedAt time.Time) bool {
	return !fetchedAt.IsZero() && c.now().Sub(fetchedAt) <= c.ttl
}

func (c *Cache) indexTracks(tracks []domain.Track) {
	for i := range tracks {
		t := tracks[i]
		c.byID.Add(t.ID, &t)
	}
}
