package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrTrackNotFound indicates the requested track does not exist
	ErrTrackNotFound = errors.New("track not found")

	// ErrFolderNotFound indicates the requested folder does not exist
	ErrFolderNotFound = errors.New("folder not found")

	// ErrPlaylistNotFound indicates the requested playlist does not exist
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrStoreClosed indicates the library store has been closed
	ErrStoreClosed = errors.New("library store is closed")
)
