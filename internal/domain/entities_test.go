package domain

import (
	"testing"
	"time"
)

func TestTrack_DisplayTitle(t *testing.T) {
	if got := (Track{Title: "Song", Path: "/a.mp3"}).DisplayTitle(); got != "Song" {
		t.Errorf("got %q, want Song", got)
	}
	if got := (Track{Path: "/a.mp3"}).DisplayTitle(); got != "/a.mp3" {
		t.Errorf("got %q, want the path fallback", got)
	}
}

func TestTrack_FormattedDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{65 * time.Second, "1:05"},
		{10 * time.Minute, "10:00"},
	}
	for _, c := range cases {
		if got := (Track{Duration: c.d}).FormattedDuration(); got != c.want {
			t.Errorf("FormattedDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestFolder_IsVirtual(t *testing.T) {
	if !(Folder{Path: "/music/rock"}).IsVirtual() {
		t.Error("a folder without an id is virtual")
	}
	if (Folder{ID: "f1"}).IsVirtual() {
		t.Error("a stored folder is not virtual")
	}
}

func TestEntityType_String(t *testing.T) {
	cases := map[EntityType]string{
		EntityTrack:    "track",
		EntityAlbum:    "album",
		EntityArtist:   "artist",
		EntityType(42): "unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("EntityType(%d).String() = %q, want %q", int(typ), got, want)
		}
	}
}
