package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// DefaultBaseURL is the method endpoint of the VK API.
const DefaultBaseURL = "https://api.vk.com/method/"

const (
	methodUserAudio       = "audio.get.xml"
	methodRecommendations = "audio.getRecommendations.xml"
	methodPopular         = "audio.getPopular.xml"
	methodSearch          = "audio.search.xml"

	suggestedCount = 500
	popularCount   = 500
	searchCount    = 300
)

func methodURL(base, method string, tokens models.TokenSet, extra url.Values) string {
	params := url.Values{}
	params.Set("uid", tokens.UserID)
	params.Set("access_token", tokens.AccessToken)
	for k, v := range extra {
		params[k] = v
	}
	return strings.TrimSuffix(base, "/") + "/" + method + "?" + params.Encode()
}

// UserPlaylistURL builds the request for the authorized user's own audio list.
func UserPlaylistURL(base string, tokens models.TokenSet) string {
	return methodURL(base, methodUserAudio, tokens, nil)
}

// SuggestedPlaylistURL builds the recommendations request.
func SuggestedPlaylistURL(base string, tokens models.TokenSet) string {
	return methodURL(base, methodRecommendations, tokens, url.Values{
		"count": {strconv.Itoa(suggestedCount)},
	})
}

// PopularPlaylistURL builds the popular-by-genre request. The genre is looked up by display name.
func PopularPlaylistURL(base string, tokens models.TokenSet, genre string) (string, error) {
	g, err := LookupGenre(genre)
	if err != nil {
		return "", err
	}
	return methodURL(base, methodPopular, tokens, url.Values{
		"genre_id": {strconv.Itoa(g.ID)},
		"count":    {strconv.Itoa(popularCount)},
	}), nil
}

// SearchPlaylistURL builds the search request; artistOnly restricts matching to performers.
func SearchPlaylistURL(base string, tokens models.TokenSet, text string, artistOnly bool) string {
	performerOnly := "0"
	if artistOnly {
		performerOnly = "1"
	}
	return methodURL(base, methodSearch, tokens, url.Values{
		"performer_only": {performerOnly},
		"q":              {text},
		"count":          {strconv.Itoa(searchCount)},
	})
}

// RequestURL builds the URL for any [models.Request].
func RequestURL(base string, tokens models.TokenSet, req models.Request) (string, error) {
	switch req.Kind {
	case models.KindUser:
		return UserPlaylistURL(base, tokens), nil
	case models.KindSuggested:
		return SuggestedPlaylistURL(base, tokens), nil
	case models.KindPopular:
		return PopularPlaylistURL(base, tokens, req.Genre)
	case models.KindSearch:
		if strings.TrimSpace(req.Query) == "" {
			return "", fmt.Errorf("%w: search text is empty", shared.ErrMissingArgument)
		}
		return SearchPlaylistURL(base, tokens, req.Query, req.ArtistOnly), nil
	default:
		return "", fmt.Errorf("%w: unknown playlist kind %q", shared.ErrInvalidArgument, req.Kind)
	}
}
