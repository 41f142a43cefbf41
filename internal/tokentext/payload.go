package tokentext

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Payload sub-formats are owned by the consuming features, never by the
// parser: a token with an unparsable payload is still a syntactically
// valid token, and consumers degrade to a no-op instead of failing.

// MapPayload is the decoded form of a MAP payload:
// "<lat>,<lon>" optionally followed by "|<label>".
type MapPayload struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"`
}

// String renders the wire form of the payload.
func (p MapPayload) String() string {
	s := fmt.Sprintf("%v,%v", p.Lat, p.Lon)
	if p.Label != "" {
		s += "|" + p.Label
	}
	return s
}

// ParseMapPayload decodes a MAP payload. The label may itself contain '|'
// characters; only the first separator is structural.
func ParseMapPayload(s string) (MapPayload, error) {
	coords, label, _ := strings.Cut(s, "|")
	latStr, lonStr, ok := strings.Cut(coords, ",")
	if !ok {
		return MapPayload{}, fmt.Errorf("map payload: missing comma in %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return MapPayload{}, fmt.Errorf("map payload: bad latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return MapPayload{}, fmt.Errorf("map payload: bad longitude %q", lonStr)
	}
	return MapPayload{Lat: lat, Lon: lon, Label: label}, nil
}

// MusicPayload is the decoded form of a MUS payload:
// "<videoId>|<url-encoded title>".
type MusicPayload struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// BuildMusicPayload encodes a video id and a human-readable title into the
// wire form. The title is URL-escaped so it can never contain ']' or '|'.
func BuildMusicPayload(videoID, title string) string {
	return videoID + "|" + url.QueryEscape(title)
}

// ParseMusicPayload decodes a MUS payload. A missing or undecodable title
// yields the video id with an empty title rather than an error; the id is
// the only part needed to act on the token.
func ParseMusicPayload(s string) (MusicPayload, error) {
	id, rawTitle, _ := strings.Cut(s, "|")
	if id == "" {
		return MusicPayload{}, fmt.Errorf("music payload: empty video id in %q", s)
	}
	title, err := url.QueryUnescape(rawTitle)
	if err != nil {
		title = ""
	}
	return MusicPayload{VideoID: id, Title: title}, nil
}
