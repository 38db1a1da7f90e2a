package tui

import (
	"github.com/tonehaus/aria/internal/artwork"
	"github.com/tonehaus/aria/internal/domain"
)

// foldersLoadedMsg carries a refreshed folder list
type foldersLoadedMsg struct {
	folders []domain.Folder
}

// tracksLoadedMsg carries the track list for one folder
type tracksLoadedMsg struct {
	folderID string
	tracks   []domain.Track
}

// artworkLoadedMsg carries the resolved artwork for the selected track
type artworkLoadedMsg struct {
	trackID string
	img     *artwork.Image
}

// preloadDoneMsg signals that a background warm-up batch finished
type preloadDoneMsg struct {
	count int
}

// statsMsg carries library aggregates for the status bar
type statsMsg struct {
	stats *domain.LibraryStats
}

// errMsg carries a background error; the UI degrades, never dialogs
type errMsg struct {
	err error
}
