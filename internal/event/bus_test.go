package event

import (
	"sync"
	"testing"

	"github.com/tonehaus/aria/internal/domain"
)

func TestBus_DeliversToAllSubscribersInOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(func(e Event) { order = append(order, 1) })
	bus.Subscribe(func(e Event) { order = append(order, 2) })

	bus.Publish(Event{Type: LibraryChanged})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v, want [1 2]", order)
	}
}

func TestBus_CarriesEntityForArtworkEvents(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe(func(e Event) { got = e })

	bus.Publish(Event{Type: ArtworkChanged, Entity: domain.EntityAlbum, ID: "al1"})

	if got.Type != ArtworkChanged || got.Entity != domain.EntityAlbum || got.ID != "al1" {
		t.Errorf("got %+v", got)
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	NewBus().Publish(Event{Type: PlaylistsChanged})
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: FoldersChanged})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(func(Event) {})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("first subscriber saw %d events, want 10", count)
	}
}

func TestType_String(t *testing.T) {
	cases := map[Type]string{
		LibraryChanged:   "library-changed",
		FoldersChanged:   "folders-changed",
		PlaylistsChanged: "playlists-changed",
		ArtworkChanged:   "artwork-changed",
		Type(99):         "unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", int(typ), got, want)
		}
	}
}
