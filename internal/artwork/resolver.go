package artwork

import (
	"context"
	"errors"

	"github.com/tonehaus/aria/internal/domain"
)

// AlbumLookup is the narrow, read-only capability the artwork layer
// borrows from the metadata cache: a best-effort track -> album id
// mapping. A miss only disables the shortcut, never fails a request.
type AlbumLookup interface {
	TrackAlbumID(trackID string) (string, bool)
}

// Resolver finds raw artwork bytes for an entity by walking its
// fallback chain of store point reads. A present-but-empty blob is
// treated the same as an absent one.
type Resolver struct {
	store  domain.Store
	albums AlbumLookup
}

// NewResolver creates a resolver. albums may be nil; the track chain
// then always falls back to a store point read for the album id.
func NewResolver(store domain.Store, albums AlbumLookup) *Resolver {
	return &Resolver{store: store, albums: albums}
}

// Resolve returns the first non-empty blob in the entity's chain along
// with the entity that actually owns the bytes. No artwork anywhere in
// the chain yields (nil, ref-to-requested-entity, nil).
func (r *Resolver) Resolve(ctx context.Context, entity domain.EntityType, id string) ([]byte, domain.EntityRef, error) {
	self := domain.EntityRef{Type: entity, ID: id}

	switch entity {
	case domain.EntityTrack:
		return r.resolveTrack(ctx, id)
	case domain.EntityAlbum:
		data, err := r.store.ReadAlbumArtwork(ctx, id)
		if err != nil {
			return nil, self, err
		}
		if len(data) > 0 {
			return data, self, nil
		}
		data, err = r.store.ReadAlbumFirstTrackArtwork(ctx, id)
		if err != nil {
			return nil, self, err
		}
		if len(data) > 0 {
			return data, self, nil
		}
		return nil, self, nil
	case domain.EntityArtist:
		data, err := r.store.ReadArtistArtwork(ctx, id)
		if err != nil {
			return nil, self, err
		}
		if len(data) > 0 {
			return data, self, nil
		}
		return nil, self, nil
	default:
		return nil, self, errors.New("artwork: unknown entity type")
	}
}

// resolveTrack prefers the owning album's blob over the track's own:
// albums are the dominant visual identity, and deferring to them keeps
// one decoded copy serving every member track.
func (r *Resolver) resolveTrack(ctx context.Context, id string) ([]byte, domain.EntityRef, error) {
	self := domain.EntityRef{Type: domain.EntityTrack, ID: id}

	albumID := r.trackAlbumID(ctx, id)
	if albumID != "" {
		data, err := r.store.ReadAlbumArtwork(ctx, albumID)
		if err != nil {
			return nil, self, err
		}
		if len(data) > 0 {
			return data, domain.EntityRef{Type: domain.EntityAlbum, ID: albumID}, nil
		}
	}

	data, err := r.store.ReadTrackArtwork(ctx, id)
	if err != nil {
		return nil, self, err
	}
	if len(data) > 0 {
		return data, self, nil
	}
	return nil, self, nil
}

func (r *Resolver) trackAlbumID(ctx context.Context, id string) string {
	if r.albums != nil {
		if albumID, ok := r.albums.TrackAlbumID(id); ok {
			return albumID
		}
	}
	track, err := r.store.ReadTrackByID(ctx, id)
	if err != nil {
		return ""
	}
	return track.AlbumID
}
