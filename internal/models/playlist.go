package models

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// PlaylistItem is one track record returned by the audio API.
//
// Duration keeps the seconds text the server sent; see [PlaylistItem.Seconds].
type PlaylistItem struct {
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	URL      string `json:"url"`
}

// Complete reports whether every field is non-empty. Only complete items enter a [Playlist].
func (i PlaylistItem) Complete() bool {
	return i.Artist != "" && i.Title != "" && i.Duration != "" && i.URL != ""
}

// Seconds parses Duration, returning 0 when it is not a number.
func (i PlaylistItem) Seconds() int {
	n, err := strconv.Atoi(strings.TrimSpace(i.Duration))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Playlist is an ordered sequence of items in server order.
type Playlist []PlaylistItem

// TotalSeconds sums the durations of all items.
func (p Playlist) TotalSeconds() int {
	total := 0
	for _, item := range p {
		total += item.Seconds()
	}
	return total
}

// RequestKind names one of the playlist endpoints.
type RequestKind string

const (
	KindUser      RequestKind = "user"
	KindSuggested RequestKind = "suggested"
	KindPopular   RequestKind = "popular"
	KindSearch    RequestKind = "search"
)

// Kinds lists every [RequestKind] in menu order.
var Kinds = []RequestKind{KindUser, KindSuggested, KindPopular, KindSearch}

// ParseRequestKind maps a user supplied name onto a [RequestKind].
func ParseRequestKind(s string) (RequestKind, error) {
	switch s {
	case "user", "mine", "my":
		return KindUser, nil
	case "suggested", "recommendations":
		return KindSuggested, nil
	case "popular":
		return KindPopular, nil
	case "search":
		return KindSearch, nil
	default:
		return "", fmt.Errorf("unknown playlist kind %q", s)
	}
}

// Request describes which playlist to fetch.
//
// Genre is used by [KindPopular]; Query and ArtistOnly by [KindSearch].
type Request struct {
	Kind       RequestKind `json:"kind"`
	Genre      string      `json:"genre,omitempty"`
	Query      string      `json:"query,omitempty"`
	ArtistOnly bool        `json:"artist_only,omitempty"`
}

// Search arguments carry a prefix so that a text search for "artist:x" and an artist search for
// "x" never share a cache key.
const (
	searchPrefix = "q:"
	artistPrefix = "artist:"
)

// Argument returns the kind-specific part of the request, used as the cache key next to Kind.
func (r Request) Argument() string {
	switch r.Kind {
	case KindPopular:
		return r.Genre
	case KindSearch:
		if r.ArtistOnly {
			return artistPrefix + r.Query
		}
		return searchPrefix + r.Query
	default:
		return ""
	}
}

// RequestFor rebuilds the request whose [Request.Argument] is argument.
func RequestFor(kind RequestKind, argument string) Request {
	req := Request{Kind: kind}
	switch kind {
	case KindPopular:
		req.Genre = argument
	case KindSearch:
		if q, ok := strings.CutPrefix(argument, artistPrefix); ok {
			req.Query, req.ArtistOnly = q, true
		} else {
			req.Query = strings.TrimPrefix(argument, searchPrefix)
		}
	}
	return req
}

// ParseRequest parses a compact request reference: "mine", "suggested", "popular:<genre>",
// "search:<text>" or "artist:<text>".
func ParseRequest(ref string) (Request, error) {
	head, arg, _ := strings.Cut(strings.TrimSpace(ref), ":")
	arg = strings.TrimSpace(arg)

	if head == "artist" {
		if arg == "" {
			return Request{}, fmt.Errorf("artist search in %q needs text", ref)
		}
		return Request{Kind: KindSearch, Query: arg, ArtistOnly: true}, nil
	}

	kind, err := ParseRequestKind(strings.ToLower(head))
	if err != nil {
		return Request{}, err
	}

	req := Request{Kind: kind}
	switch kind {
	case KindPopular:
		if arg == "" {
			return Request{}, fmt.Errorf("popular playlist in %q needs a genre", ref)
		}
		req.Genre = arg
	case KindSearch:
		if arg == "" {
			return Request{}, fmt.Errorf("search in %q needs text", ref)
		}
		req.Query = arg
	}
	return req, nil
}

// Name returns a display name for the playlist the request produces.
func (r Request) Name() string {
	switch r.Kind {
	case KindUser:
		return "My audio"
	case KindSuggested:
		return "Suggested"
	case KindPopular:
		return "Popular: " + r.Genre
	case KindSearch:
		if r.ArtistOnly {
			return "Artist: " + r.Query
		}
		return "Search: " + r.Query
	default:
		return string(r.Kind)
	}
}

// PlaylistExport is a fetched playlist together with the request that produced it.
type PlaylistExport struct {
	Request   Request   `json:"request"`
	Name      string    `json:"name"`
	Items     Playlist  `json:"items"`
	Dropped   int       `json:"dropped,omitempty"` // incomplete entries left out of Items
	FetchedAt time.Time `json:"fetched_at"`
}

// ID returns a filesystem-friendly identifier for the export: the kind ("artist" for artist
// searches) followed by a slug of the genre or query.
func (e *PlaylistExport) ID() string {
	req := e.Request
	prefix, label := string(req.Kind), ""
	switch req.Kind {
	case KindPopular:
		label = req.Genre
	case KindSearch:
		label = req.Query
		if req.ArtistOnly {
			prefix = "artist"
		}
	}

	if label == "" {
		return prefix
	}
	s := slug(label)
	if s == "" {
		s = fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(label)))
	}
	return prefix + "_" + s
}

// slug lowercases letters and digits of any script and collapses everything else into single dashes.
func slug(s string) string {
	out := make([]rune, 0, len(s))
	dash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			out, dash = append(out, unicode.ToLower(r)), false
		default:
			if !dash && len(out) > 0 {
				out, dash = append(out, '-'), true
			}
		}
	}
	if dash {
		out = out[:len(out)-1]
	}
	return string(out)
}
