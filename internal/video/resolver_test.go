package video

import (
	"strings"
	"testing"
)

func TestResolveThumbnail(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short host", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short host with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"shorts path", "https://www.youtube.com/shorts/zd9pu3bwlNY", "zd9pu3bwlNY"},
		{"embed path", "https://www.youtube.com/embed/kb36xGKwmQs/", "kb36xGKwmQs"},
		{"no id", "https://example.com/video", ""},
		{"empty", "", ""},
		{"id too long", "https://example.com/abcdefghijklm", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb, ok := ResolveThumbnail(tt.url)
			if tt.wantID == "" {
				if ok {
					t.Fatalf("ResolveThumbnail(%q) = %q, want none", tt.url, thumb)
				}
				return
			}
			if !ok {
				t.Fatalf("ResolveThumbnail(%q) found no id", tt.url)
			}
			if !strings.Contains(thumb, tt.wantID) {
				t.Errorf("thumbnail %q does not contain %q", thumb, tt.wantID)
			}
		})
	}
}

func TestLongFormWinsOverShortForm(t *testing.T) {
	// Both patterns could match; the long form is tried first.
	id, ok := ExtractID("https://youtu.be/AAAAAAAAAAA?v=BBBBBBBBBBB")
	if !ok {
		t.Fatal("expected a match")
	}
	if id != "AAAAAAAAAAA" {
		t.Errorf("id = %q", id)
	}
}

func TestResolveFallsBackToPlainLink(t *testing.T) {
	link := Resolve("https://example.com/video")
	if link.HasThumbnail() {
		t.Errorf("unexpected thumbnail %q", link.Thumbnail)
	}
	if link.URL != "https://example.com/video" {
		t.Errorf("URL = %q", link.URL)
	}

	links := ResolveAll([]string{"https://youtu.be/dQw4w9WgXcQ", "https://example.com/video"})
	if len(links) != 2 || !links[0].HasThumbnail() || links[1].HasThumbnail() {
		t.Errorf("ResolveAll = %+v", links)
	}
}
