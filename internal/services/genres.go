package services

import (
	"fmt"
	"strings"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// Genre is a named genre filter for popular playlists.
type Genre struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// genres is fixed at startup and never mutated; order is display order.
var genres = []Genre{
	{"Rock", 1},
	{"Pop", 2},
	{"Rap & Hip-hop", 3},
	{"Easy Listening", 4},
	{"Dance & House", 5},
	{"Instrumental", 6},
	{"Metal", 7},
	{"Alternative", 21},
	{"Dubstep", 8},
	{"Jazz & Blues", 1001},
	{"Drum & Bass", 10},
	{"Trance", 11},
	{"Chanson", 12},
	{"Ethnic", 13},
	{"Acoustic & Vocal", 14},
	{"Reggae", 15},
	{"Classical", 16},
	{"Indie Pop", 17},
	{"Speech", 19},
	{"Electropop & Disco", 22},
	{"Other", 18},
}

// Genres returns a copy of the genre list in display order.
func Genres() []Genre {
	out := make([]Genre, len(genres))
	copy(out, genres)
	return out
}

// GenreMap returns the genre display name to id mapping.
func GenreMap() map[string]int {
	m := make(map[string]int, len(genres))
	for _, g := range genres {
		m[g.Name] = g.ID
	}
	return m
}

// LookupGenre finds a genre by display name, ignoring case and surrounding space.
func LookupGenre(name string) (Genre, error) {
	name = strings.TrimSpace(name)
	for _, g := range genres {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return Genre{}, fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidArgument, name)
}

// CanonicalRequest rewrites a popular request's genre to its display name so that differently
// cased references share a cache key. Other kinds pass through unchanged.
func CanonicalRequest(req models.Request) (models.Request, error) {
	if req.Kind != models.KindPopular {
		return req, nil
	}
	g, err := LookupGenre(req.Genre)
	if err != nil {
		return req, err
	}
	req.Genre = g.Name
	return req, nil
}

// ParseRequest parses a "kind:argument" reference and canonicalizes it.
func ParseRequest(ref string) (models.Request, error) {
	req, err := models.ParseRequest(ref)
	if err != nil {
		return req, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return CanonicalRequest(req)
}
