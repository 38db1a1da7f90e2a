package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tonehaus/aria/internal/domain"
)

func openTestStore(t *testing.T) *LibraryStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTracks(t *testing.T, s *LibraryStore) {
	t.Helper()
	err := s.PutTracks([]domain.Track{
		{ID: "t2", Title: "Two", AlbumID: "al1", FolderID: "f1", Path: "/music/b.mp3", TrackNumber: 2, FileSize: 200, Duration: 120},
		{ID: "t1", Title: "One", AlbumID: "al1", FolderID: "f1", Path: "/music/a.mp3", TrackNumber: 1, FileSize: 100, Duration: 180},
		{ID: "t3", Title: "Three", AlbumID: "al2", FolderID: "f2", Path: "/music/c.mp3", TrackNumber: 1, FileSize: 300, Duration: 240},
	})
	if err != nil {
		t.Fatalf("PutTracks failed: %v", err)
	}
}

func TestStore_TracksRoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedTracks(t, s)
	ctx := context.Background()

	tracks, err := s.ReadAllTracks(ctx)
	if err != nil {
		t.Fatalf("ReadAllTracks failed: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}
	// Sorted by path
	if tracks[0].ID != "t1" || tracks[1].ID != "t2" || tracks[2].ID != "t3" {
		t.Errorf("order = %s,%s,%s; want t1,t2,t3", tracks[0].ID, tracks[1].ID, tracks[2].ID)
	}

	track, err := s.ReadTrackByID(ctx, "t2")
	if err != nil {
		t.Fatalf("ReadTrackByID failed: %v", err)
	}
	if track.Title != "Two" || track.AlbumID != "al1" {
		t.Errorf("got %+v", track)
	}
}

func TestStore_ReadTrackByIDNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadTrackByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTrackNotFound) {
		t.Errorf("got %v, want ErrTrackNotFound", err)
	}
}

func TestStore_ReadTracksForFolder(t *testing.T) {
	s := openTestStore(t)
	seedTracks(t, s)

	tracks, err := s.ReadTracksForFolder(context.Background(), "f1")
	if err != nil {
		t.Fatalf("ReadTracksForFolder failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Errorf("got %d tracks, want 2", len(tracks))
	}
}

func TestStore_FoldersSortedByPath(t *testing.T) {
	s := openTestStore(t)
	err := s.PutFolders([]domain.Folder{
		{ID: "f2", Name: "Jazz", Path: "/music/jazz"},
		{ID: "f1", Name: "Ambient", Path: "/music/ambient"},
	})
	if err != nil {
		t.Fatalf("PutFolders failed: %v", err)
	}

	folders, err := s.ReadFolders(context.Background())
	if err != nil {
		t.Fatalf("ReadFolders failed: %v", err)
	}
	if len(folders) != 2 || folders[0].ID != "f1" {
		t.Errorf("got %+v, want ambient first", folders)
	}
}

func TestStore_PlaylistsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutPlaylist(domain.Playlist{ID: "p1", Name: "Morning", TrackIDs: []string{"t1", "t2"}}); err != nil {
		t.Fatal(err)
	}

	playlists, err := s.ReadAllPlaylists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(playlists) != 1 || playlists[0].TrackCount() != 2 {
		t.Errorf("got %+v", playlists)
	}

	if err := s.DeletePlaylist("p1"); err != nil {
		t.Fatal(err)
	}
	playlists, err = s.ReadAllPlaylists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(playlists) != 0 {
		t.Errorf("playlist survived deletion: %+v", playlists)
	}
}

func TestStore_ArtworkRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	blob := []byte{0x89, 0x50, 0x4e, 0x47, 1, 2, 3}
	if err := s.PutArtwork(domain.EntityAlbum, "al1", blob); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadAlbumArtwork(ctx, "al1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, blob) {
		t.Error("artwork bytes mismatch")
	}

	// Other entity types are separate keyspaces
	got, err = s.ReadTrackArtwork(ctx, "al1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("track artwork should not see the album blob")
	}

	// Empty data deletes
	if err := s.PutArtwork(domain.EntityAlbum, "al1", nil); err != nil {
		t.Fatal(err)
	}
	got, err = s.ReadAlbumArtwork(ctx, "al1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("artwork should be removed by an empty put")
	}
}

func TestStore_AlbumFirstTrackArtworkOrdering(t *testing.T) {
	s := openTestStore(t)
	seedTracks(t, s)
	ctx := context.Background()

	// Only track 2 of al1 carries embedded artwork
	blob := []byte("embedded-art")
	if err := s.PutArtwork(domain.EntityTrack, "t2", blob); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadAlbumFirstTrackArtwork(ctx, "al1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, blob) {
		t.Error("expected t2's blob after skipping artless t1")
	}

	got, err = s.ReadAlbumFirstTrackArtwork(ctx, "al2")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("al2 has no member with artwork")
	}
}

func TestStore_DeleteTrackRemovesArtwork(t *testing.T) {
	s := openTestStore(t)
	seedTracks(t, s)
	ctx := context.Background()

	if err := s.PutArtwork(domain.EntityTrack, "t1", []byte("art")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTrack("t1"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ReadTrackByID(ctx, "t1"); !errors.Is(err, domain.ErrTrackNotFound) {
		t.Errorf("got %v, want ErrTrackNotFound", err)
	}
	got, err := s.ReadTrackArtwork(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("artwork should be deleted with its track")
	}
}

func TestStore_LibraryStats(t *testing.T) {
	s := openTestStore(t)
	seedTracks(t, s)
	if err := s.PutFolder(domain.Folder{ID: "f1", Name: "Rock", Path: "/music"}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.ReadLibraryStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TrackCount != 3 || stats.FolderCount != 1 {
		t.Errorf("counts = %d tracks / %d folders, want 3/1", stats.TrackCount, stats.FolderCount)
	}
	if stats.TotalBytes != 600 {
		t.Errorf("total bytes = %d, want 600", stats.TotalBytes)
	}
	if stats.TotalDuration != 540 {
		t.Errorf("total duration = %v, want 540", stats.TotalDuration)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ReadAllTracks(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
