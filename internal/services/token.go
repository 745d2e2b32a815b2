package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/shared"
)

// AuthError is the failure reported by an OAuth redirect.
type AuthError struct {
	Code        string // value of the "error" parameter, may be empty
	Description string // value of the "error_description" parameter
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%v: %s", shared.ErrAuthFailed, e.Description)
	}
	return fmt.Sprintf("%v: %s: %s", shared.ErrAuthFailed, e.Code, e.Description)
}

func (e *AuthError) Unwrap() error {
	return shared.ErrAuthFailed
}

// redirectParams merges the query and fragment parameters of a redirect URL.
//
// Fragment values win: the implicit flow delivers tokens there. Input that is only a
// parameter list (no scheme, no '?' or '#') is parsed as-is.
func redirectParams(raw string) url.Values {
	rest, fragment, hasFragment := strings.Cut(raw, "#")
	query := rest
	if _, q, ok := strings.Cut(rest, "?"); ok {
		query = q
	} else if strings.Contains(rest, "://") {
		query = ""
	}

	params, _ := url.ParseQuery(query)
	if params == nil {
		params = url.Values{}
	}
	if hasFragment {
		frag, _ := url.ParseQuery(fragment)
		for k, v := range frag {
			params[k] = v
		}
	}
	return params
}

// errorDescription returns the text that follows "error_description=" up to the next '&', decoded.
func errorDescription(raw string) string {
	_, desc, found := strings.Cut(raw, "error_description=")
	if !found {
		return ""
	}
	desc, _, _ = strings.Cut(desc, "&")
	if decoded, err := url.QueryUnescape(desc); err == nil {
		return decoded
	}
	return desc
}

// ParseRedirect extracts the [models.TokenSet] carried by an OAuth redirect URL.
//
// Parameters are read by name, so their order does not matter. Any redirect mentioning
// "error" yields an [*AuthError], even when it also carries a token; one without an access
// token yields [shared.ErrNotAuthenticated].
func ParseRedirect(raw string) (models.TokenSet, error) {
	params := redirectParams(raw)

	if strings.Contains(raw, "error") {
		return models.TokenSet{}, &AuthError{Code: params.Get("error"), Description: errorDescription(raw)}
	}

	if !strings.Contains(raw, "access_token") {
		return models.TokenSet{}, fmt.Errorf("%w: redirect carries no access token", shared.ErrNotAuthenticated)
	}

	tokens := models.TokenSet{
		AccessToken: params.Get("access_token"),
		ExpiresIn:   params.Get("expires_in"),
		UserID:      params.Get("user_id"),
	}
	if tokens.AccessToken == "" {
		return models.TokenSet{}, fmt.Errorf("%w: empty access_token", shared.ErrInvalidInput)
	}

	return tokens, nil
}
