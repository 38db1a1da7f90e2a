package search

import (
	"context"
	"errors"
	"testing"

	"github.com/tonehaus/aria/internal/domain"
)

type fakeLibrary struct {
	tracks []domain.Track
	err    error
}

func (l *fakeLibrary) GetAllTracks(ctx context.Context, force bool) ([]domain.Track, error) {
	return l.tracks, l.err
}

func testLibrary() *fakeLibrary {
	return &fakeLibrary{tracks: []domain.Track{
		{ID: "t1", Title: "Paranoid Android", Artist: "Radiohead", Album: "OK Computer"},
		{ID: "t2", Title: "Karma Police", Artist: "Radiohead", Album: "OK Computer"},
		{ID: "t3", Title: "Halo", Artist: "Beyoncé", Album: "I Am"},
	}}
}

func rebuiltService(t *testing.T) *Service {
	t.Helper()
	s := NewService(testLibrary(), nil)
	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	return s
}

func TestService_FilterMatchesTitle(t *testing.T) {
	s := rebuiltService(t)

	results := s.Filter("karma")
	if len(results) == 0 {
		t.Fatal("expected a match for karma")
	}
	if results[0].Track.ID != "t2" {
		t.Errorf("top result = %s, want t2", results[0].Track.ID)
	}
	if len(results[0].MatchedIndexes) == 0 {
		t.Error("expected matched character positions for highlighting")
	}
}

func TestService_FilterMatchesArtistAndAlbum(t *testing.T) {
	s := rebuiltService(t)

	if results := s.Filter("radiohead"); len(results) != 2 {
		t.Errorf("artist query matched %d tracks, want 2", len(results))
	}
	if results := s.Filter("ok computer"); len(results) != 2 {
		t.Errorf("album query matched %d tracks, want 2", len(results))
	}
}

func TestService_FilterCaseInsensitive(t *testing.T) {
	s := rebuiltService(t)

	if results := s.Filter("PARANOID"); len(results) == 0 || results[0].Track.ID != "t1" {
		t.Errorf("case-folded query failed: %+v", results)
	}
}

func TestService_FilterNormalizedFallback(t *testing.T) {
	s := rebuiltService(t)

	// Plain-ASCII query against an accented title goes through the
	// normalized fallback matcher.
	results := s.Filter("beyonce")
	if len(results) == 0 {
		t.Fatal("expected the fallback to match the accented artist")
	}
	if results[0].Track.ID != "t3" {
		t.Errorf("top result = %s, want t3", results[0].Track.ID)
	}
}

func TestService_FilterEmptyQuery(t *testing.T) {
	s := rebuiltService(t)

	if results := s.Filter("   "); results != nil {
		t.Errorf("blank query returned %d results, want none", len(results))
	}
}

func TestService_FilterNoMatch(t *testing.T) {
	s := rebuiltService(t)

	if results := s.Filter("zzzzqqqq"); len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestService_FilterBeforeRebuild(t *testing.T) {
	s := NewService(testLibrary(), nil)

	if results := s.Filter("karma"); results != nil {
		t.Errorf("unbuilt index returned %d results", len(results))
	}
}

func TestService_RebuildPropagatesError(t *testing.T) {
	lib := &fakeLibrary{err: errors.New("store unavailable")}
	s := NewService(lib, nil)

	if err := s.Rebuild(context.Background()); err == nil {
		t.Error("expected the library error to surface")
	}
}
