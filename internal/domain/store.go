package domain

import "context"

// Store provides read access to the persistent music library.
// Collection reads return lightweight row snapshots: artwork blobs are
// kept out of Track/Folder/Playlist values and fetched through the
// dedicated artwork point reads.
type Store interface {
	// ReadFolders returns all stored folders
	ReadFolders(ctx context.Context) ([]Folder, error)

	// ReadAllTracks returns every track in the library, without blobs
	ReadAllTracks(ctx context.Context) ([]Track, error)

	// ReadTracksForFolder returns the tracks directly under a folder
	ReadTracksForFolder(ctx context.Context, folderID string) ([]Track, error)

	// ReadTrackByID returns a single track, or ErrTrackNotFound
	ReadTrackByID(ctx context.Context, id string) (*Track, error)

	// ReadAllPlaylists returns all stored playlists
	ReadAllPlaylists(ctx context.Context) ([]Playlist, error)

	// ReadTrackArtwork returns the track's own artwork blob, nil if absent
	ReadTrackArtwork(ctx context.Context, id string) ([]byte, error)

	// ReadAlbumArtwork returns the album's artwork blob, nil if absent
	ReadAlbumArtwork(ctx context.Context, id string) ([]byte, error)

	// ReadArtistArtwork returns the artist's artwork blob, nil if absent
	ReadArtistArtwork(ctx context.Context, id string) ([]byte, error)

	// ReadAlbumFirstTrackArtwork returns the blob of the first track in
	// the album that has one, nil if no member track carries artwork
	ReadAlbumFirstTrackArtwork(ctx context.Context, albumID string) ([]byte, error)

	// ReadLibraryStats computes whole-library aggregates
	ReadLibraryStats(ctx context.Context) (*LibraryStats, error)
}
