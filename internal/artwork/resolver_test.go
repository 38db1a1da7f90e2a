package artwork

import (
	"bytes"
	"context"
	"testing"

	"github.com/tonehaus/aria/internal/domain"
)

func TestResolver_TrackPrefersAlbumBlob(t *testing.T) {
	store := artTestStore(t)
	r := NewResolver(store, mapAlbums{"t1": "al1"})

	data, owner, err := r.Resolve(context.Background(), domain.EntityTrack, "t1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !bytes.Equal(data, store.albumArt["al1"]) {
		t.Error("expected the album's bytes")
	}
	want := domain.EntityRef{Type: domain.EntityAlbum, ID: "al1"}
	if owner != want {
		t.Errorf("owner = %+v, want %+v", owner, want)
	}
}

func TestResolver_TrackFallsBackToOwnBlob(t *testing.T) {
	store := artTestStore(t)
	r := NewResolver(store, mapAlbums{})

	data, owner, err := r.Resolve(context.Background(), domain.EntityTrack, "t-own")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !bytes.Equal(data, store.trackArt["t-own"]) {
		t.Error("expected the track's own bytes")
	}
	want := domain.EntityRef{Type: domain.EntityTrack, ID: "t-own"}
	if owner != want {
		t.Errorf("owner = %+v, want %+v", owner, want)
	}
}

func TestResolver_TrackWithoutArtwork(t *testing.T) {
	store := artTestStore(t)
	r := NewResolver(store, mapAlbums{})

	data, _, err := r.Resolve(context.Background(), domain.EntityTrack, "t-none")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if data != nil {
		t.Error("expected nil for a track with no artwork anywhere in its chain")
	}
}

func TestResolver_AlbumFallsBackToFirstTrack(t *testing.T) {
	store := artTestStore(t)
	// al2's only artwork lives embedded in its member track
	store.tracks["t-al2"] = domain.Track{ID: "t-al2", AlbumID: "al2"}
	store.trackArt["t-al2"] = encodePNG(t, 32, 32)

	r := NewResolver(store, nil)
	data, owner, err := r.Resolve(context.Background(), domain.EntityAlbum, "al2")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !bytes.Equal(data, store.trackArt["t-al2"]) {
		t.Error("expected the member track's bytes")
	}
	// Fallback bytes are still the album's visual identity
	want := domain.EntityRef{Type: domain.EntityAlbum, ID: "al2"}
	if owner != want {
		t.Errorf("owner = %+v, want %+v", owner, want)
	}
}

func TestResolver_EmptyBlobTreatedAsAbsent(t *testing.T) {
	store := artTestStore(t)
	store.albumArt["al-empty"] = []byte{}

	r := NewResolver(store, nil)
	data, _, err := r.Resolve(context.Background(), domain.EntityAlbum, "al-empty")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if data != nil {
		t.Error("a present-but-empty blob must resolve as absent")
	}
}

func TestResolver_ArtistHasNoFallback(t *testing.T) {
	store := artTestStore(t)
	r := NewResolver(store, nil)
	ctx := context.Background()

	data, owner, err := r.Resolve(ctx, domain.EntityArtist, "ar1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !bytes.Equal(data, store.artistArt["ar1"]) {
		t.Error("expected the artist's bytes")
	}
	if owner.Type != domain.EntityArtist {
		t.Errorf("owner type = %v, want artist", owner.Type)
	}

	data, _, err = r.Resolve(ctx, domain.EntityArtist, "ar-none")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if data != nil {
		t.Error("an artist without a blob resolves as absent, no further chain")
	}
}

func TestResolver_NilAlbumLookupUsesStore(t *testing.T) {
	store := artTestStore(t)
	r := NewResolver(store, nil)

	data, owner, err := r.Resolve(context.Background(), domain.EntityTrack, "t1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(data) == 0 || owner.Type != domain.EntityAlbum {
		t.Errorf("expected album bytes via a store point read, got owner %+v", owner)
	}
}
