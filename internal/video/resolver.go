// Package video derives thumbnail links for video URLs.
package video

import (
	"fmt"
	"regexp"
)

const thumbnailURL = "https://img.youtube.com/vi/%s/hqdefault.jpg"

// Tried in order; the first match wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:\?|&|/|$)`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
}

// Link is a video entry ready for rendering. Thumbnail is empty when no id was found.
type Link struct {
	URL       string `json:"url"`
	VideoID   string `json:"video_id,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// HasThumbnail reports whether the link can be shown as a thumbnail card.
func (l Link) HasThumbnail() bool {
	return l.Thumbnail != ""
}

// ExtractID returns the 11 character video id embedded in rawURL.
func ExtractID(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ResolveThumbnail returns the thumbnail URL for a video link, if one can be derived.
func ResolveThumbnail(rawURL string) (string, bool) {
	id, ok := ExtractID(rawURL)
	if !ok {
		return "", false
	}
	return fmt.Sprintf(thumbnailURL, id), true
}

func Resolve(rawURL string) Link {
	link := Link{URL: rawURL}
	if id, ok := ExtractID(rawURL); ok {
		link.VideoID = id
		link.Thumbnail = fmt.Sprintf(thumbnailURL, id)
	}
	return link
}

func ResolveAll(urls []string) []Link {
	out := make([]Link, 0, len(urls))
	for _, u := range urls {
		out = append(out, Resolve(u))
	}
	return out
}
