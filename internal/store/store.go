// Package store implements the persistent library store on BoltDB.
// Track, folder and playlist rows are JSON values in their own buckets;
// artwork blobs live in a separate bucket keyed by entity so collection
// reads never touch binary data.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/tonehaus/aria/internal/domain"
)

// Bucket names
var (
	bucketTracks    = []byte("tracks")
	bucketFolders   = []byte("folders")
	bucketPlaylists = []byte("playlists")
	bucketArtwork   = []byte("artwork")
)

// LibraryStore implements domain.Store using BoltDB.
type LibraryStore struct {
	db *bolt.DB
}

// Open opens (or creates) the library database at path. An empty path
// is not supported; callers decide the location via configuration.
func Open(path string) (*LibraryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketTracks, bucketFolders, bucketPlaylists, bucketArtwork} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &LibraryStore{db: db}, nil
}

func (s *LibraryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *LibraryStore) get(bucket []byte, key string, dest interface{}) (bool, error) {
	if s.db == nil {
		return false, domain.ErrStoreClosed
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (s *LibraryStore) set(bucket []byte, key string, value interface{}) error {
	if s.db == nil {
		return domain.ErrStoreClosed
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *LibraryStore) putRaw(bucket []byte, key string, value []byte) error {
	if s.db == nil {
		return domain.ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if len(value) == 0 {
			return b.Delete([]byte(key))
		}
		return b.Put([]byte(key), value)
	})
}

func (s *LibraryStore) getRaw(bucket []byte, key string) ([]byte, error) {
	if s.db == nil {
		return nil, domain.ErrStoreClosed
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	return data, err
}

func (s *LibraryStore) delete(bucket []byte, key string) error {
	if s.db == nil {
		return domain.ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

// === Reads (domain.Store) ===

func (s *LibraryStore) ReadFolders(ctx context.Context) ([]domain.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var folders []domain.Folder
	err := s.forEach(bucketFolders, func(v []byte) error {
		var f domain.Folder
		if err := json.Unmarshal(v, &f); err != nil {
			return err
		}
		folders = append(folders, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	return folders, nil
}

func (s *LibraryStore) ReadAllTracks(ctx context.Context) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tracks []domain.Track
	err := s.forEach(bucketTracks, func(v []byte) error {
		var t domain.Track
		if err := json.Unmarshal(v, &t); err != nil {
			return err
		}
		tracks = append(tracks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Path < tracks[j].Path })
	return tracks, nil
}

func (s *LibraryStore) ReadTracksForFolder(ctx context.Context, folderID string) ([]domain.Track, error) {
	all, err := s.ReadAllTracks(ctx)
	if err != nil {
		return nil, err
	}
	var tracks []domain.Track
	for _, t := range all {
		if t.FolderID == folderID {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

func (s *LibraryStore) ReadTrackByID(ctx context.Context, id string) (*domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Track
	ok, err := s.get(bucketTracks, id, &t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	return &t, nil
}

func (s *LibraryStore) ReadAllPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var playlists []domain.Playlist
	err := s.forEach(bucketPlaylists, func(v []byte) error {
		var p domain.Playlist
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		playlists = append(playlists, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(playlists, func(i, j int) bool { return playlists[i].Name < playlists[j].Name })
	return playlists, nil
}

// === Artwork point reads ===

func artworkKey(entity domain.EntityType, id string) string {
	return entity.String() + ":" + id
}

func (s *LibraryStore) ReadTrackArtwork(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.getRaw(bucketArtwork, artworkKey(domain.EntityTrack, id))
}

func (s *LibraryStore) ReadAlbumArtwork(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.getRaw(bucketArtwork, artworkKey(domain.EntityAlbum, id))
}

func (s *LibraryStore) ReadArtistArtwork(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.getRaw(bucketArtwork, artworkKey(domain.EntityArtist, id))
}

func (s *LibraryStore) ReadAlbumFirstTrackArtwork(ctx context.Context, albumID string) ([]byte, error) {
	all, err := s.ReadAllTracks(ctx)
	if err != nil {
		return nil, err
	}

	var members []domain.Track
	for _, t := range all {
		if t.AlbumID == albumID {
			members = append(members, t)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].TrackNumber < members[j].TrackNumber })

	for _, t := range members {
		data, err := s.getRaw(bucketArtwork, artworkKey(domain.EntityTrack, t.ID))
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			return data, nil
		}
	}
	return nil, nil
}

// === Aggregates ===

func (s *LibraryStore) ReadLibraryStats(ctx context.Context) (*domain.LibraryStats, error) {
	tracks, err := s.ReadAllTracks(ctx)
	if err != nil {
		return nil, err
	}
	folders, err := s.ReadFolders(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := s.ReadAllPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.LibraryStats{
		TrackCount:    len(tracks),
		FolderCount:   len(folders),
		PlaylistCount: len(playlists),
	}
	for _, t := range tracks {
		stats.TotalBytes += t.FileSize
		stats.TotalDuration += t.Duration
	}
	return stats, nil
}

// === Writes (import / rescan / playlist edit path) ===

func (s *LibraryStore) PutTrack(track domain.Track) error {
	return s.set(bucketTracks, track.ID, track)
}

func (s *LibraryStore) PutTracks(tracks []domain.Track) error {
	for _, t := range tracks {
		if err := s.PutTrack(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *LibraryStore) PutFolder(folder domain.Folder) error {
	return s.set(bucketFolders, folder.ID, folder)
}

func (s *LibraryStore) PutFolders(folders []domain.Folder) error {
	for _, f := range folders {
		if err := s.PutFolder(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *LibraryStore) PutPlaylist(playlist domain.Playlist) error {
	return s.set(bucketPlaylists, playlist.ID, playlist)
}

// PutArtwork stores an entity's artwork blob; empty data removes it
func (s *LibraryStore) PutArtwork(entity domain.EntityType, id string, data []byte) error {
	return s.putRaw(bucketArtwork, artworkKey(entity, id), data)
}

func (s *LibraryStore) DeleteTrack(id string) error {
	if err := s.delete(bucketTracks, id); err != nil {
		return err
	}
	return s.delete(bucketArtwork, artworkKey(domain.EntityTrack, id))
}

func (s *LibraryStore) DeletePlaylist(id string) error {
	return s.delete(bucketPlaylists, id)
}

// forEach iterates every value in a bucket
func (s *LibraryStore) forEach(bucket []byte, fn func(v []byte) error) error {
	if s.db == nil {
		return domain.ErrStoreClosed
	}
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			return fn(v)
		})
	})
}
