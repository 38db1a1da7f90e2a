// Package event carries library change notifications between the write
// path and the caches. Events are typed so the full set of invalidation
// triggers is enumerable at compile time.
package event

import (
	"sync"

	"github.com/tonehaus/aria/internal/domain"
)

// Type identifies what part of the library changed
type Type int

const (
	// LibraryChanged means tracks were imported, rescanned or deleted;
	// every cached collection and all artwork state is affected
	LibraryChanged Type = iota

	// FoldersChanged means the folder tree changed; track and playlist
	// caches are unaffected
	FoldersChanged

	// PlaylistsChanged means playlists were created, edited or removed
	PlaylistsChanged

	// ArtworkChanged means a single entity's artwork blob was replaced
	ArtworkChanged
)

// String returns a readable name for logging
func (t Type) String() string {
	switch t {
	case LibraryChanged:
		return "library-changed"
	case FoldersChanged:
		return "folders-changed"
	case PlaylistsChanged:
		return "playlists-changed"
	case ArtworkChanged:
		return "artwork-changed"
	default:
		return "unknown"
	}
}

// Event is a single change notification. Entity and ID are only set for
// ArtworkChanged.
type Event struct {
	Type   Type
	Entity domain.EntityType
	ID     string
}

// Bus dispatches events synchronously to all subscribers. Handlers must
// only purge local state; they never read from the store.
type Bus struct {
	mu       sync.RWMutex
	handlers []func(Event)
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all events
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Publish delivers the event to every subscriber in registration order
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]func(Event), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}
