package domain

import (
	"fmt"
	"time"
)

// EntityType identifies the kind of library entity that can own artwork
type EntityType int

const (
	EntityTrack EntityType = iota
	EntityAlbum
	EntityArtist
)

// String returns the stable identifier used in cache keys and logs
func (t EntityType) String() string {
	switch t {
	case EntityTrack:
		return "track"
	case EntityAlbum:
		return "album"
	case EntityArtist:
		return "artist"
	default:
		return "unknown"
	}
}

// EntityRef is a composite reference to a library entity
type EntityRef struct {
	Type EntityType
	ID   string
}

// Track represents a single audio file's metadata.
// It is a lightweight row snapshot: the artwork blob is never part of it.
type Track struct {
	ID          string        // Unique identifier
	Title       string        // Display title
	Artist      string        // Performing artist name
	Album       string        // Album title
	AlbumID     string        // Owning album ID (empty if untagged)
	ArtistID    string        // Performing artist ID (empty if untagged)
	FolderID    string        // Containing folder ID
	Path        string        // Absolute file path
	TrackNumber int           // Position within the album
	Year        int           // Release year
	Genre       string        // Genre tag
	Duration    time.Duration // Total playing time
	FileSize    int64         // File size in bytes
	HasArtwork  bool          // Whether the track row carries its own blob
	AddedAt     int64         // Unix timestamp when added to the library
}

// DisplayTitle returns the title, falling back to the file path
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Path
}

// FormattedDuration returns the duration in a human-readable format
func (t Track) FormattedDuration() string {
	mins := int(t.Duration.Minutes())
	secs := int(t.Duration.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormattedFileSize returns the file size in a human-readable format
func (t Track) FormattedFileSize() string {
	if t.FileSize <= 0 {
		return ""
	}
	const mb = 1024 * 1024
	if t.FileSize >= mb {
		return fmt.Sprintf("%.1f MB", float64(t.FileSize)/float64(mb))
	}
	return fmt.Sprintf("%d KB", t.FileSize/1024)
}

// Folder represents a directory in the music library
type Folder struct {
	ID         string // Unique identifier (empty for virtual folders)
	Name       string // Display name
	Path       string // Absolute directory path
	TrackCount int    // Number of tracks directly under this folder
}

// IsVirtual reports whether the folder has no stored row of its own.
// Virtual folders are derived by filtering the all-tracks snapshot by
// path prefix and are never cached per-folder.
func (f Folder) IsVirtual() bool {
	return f.ID == ""
}

// Playlist represents a user-created ordered list of tracks
type Playlist struct {
	ID        string   // Unique identifier
	Name      string   // Display name
	TrackIDs  []string // Ordered member track IDs
	CreatedAt int64    // Unix timestamp when created
}

// TrackCount returns the number of tracks in the playlist
func (p Playlist) TrackCount() int {
	return len(p.TrackIDs)
}

// LibraryStats aggregates whole-library figures computed by the store
type LibraryStats struct {
	TrackCount    int
	FolderCount   int
	PlaylistCount int
	TotalBytes    int64
	TotalDuration time.Duration
}

// FormattedTotalSize returns the library size in a human-readable format
func (s LibraryStats) FormattedTotalSize() string {
	const gb = 1024 * 1024 * 1024
	if s.TotalBytes >= gb {
		return fmt.Sprintf("%.1f GB", float64(s.TotalBytes)/float64(gb))
	}
	return fmt.Sprintf("%d MB", s.TotalBytes/(1024*1024))
}
