package services

import (
	"fmt"

	"github.com/desertthunder/flow/internal/shared"
	"golang.org/x/oauth2"
)

const (
	vkAuthURL  = "https://oauth.vk.com/authorize"
	vkTokenURL = "https://oauth.vk.com/access_token"

	// BlankRedirectURI is the redirect target VK provides for standalone apps without a web server.
	BlankRedirectURI = "https://oauth.vk.com/blank.html"

	// placeholderClientID is the client_id shipped in config.example.toml.
	placeholderClientID = "your_vk_app_id"
)

// OAuth builds authorization URLs for the implicit grant, where tokens come back in the redirect fragment.
type OAuth struct {
	config  *oauth2.Config
	scope   string
	version string
}

// NewOAuth creates an [OAuth] from the VK section of the configuration.
func NewOAuth(cfg shared.VKConfig) (*OAuth, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: vk.client_id is not set", shared.ErrMissingCredentials)
	}
	if cfg.ClientID == placeholderClientID {
		return nil, fmt.Errorf("%w: vk.client_id still has the example value, edit your config.toml", shared.ErrMissingConfig)
	}

	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = BlankRedirectURI
	}

	return &OAuth{
		config: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: redirect,
			Endpoint: oauth2.Endpoint{
				AuthURL:  vkAuthURL,
				TokenURL: vkTokenURL,
			},
		},
		scope:   cfg.Scope,
		version: cfg.APIVersion,
	}, nil
}

// RedirectURL returns the redirect URI sent to the authorization server.
func (o *OAuth) RedirectURL() string {
	return o.config.RedirectURL
}

// AuthURL returns the page the user must visit to grant access.
//
// The scope is sent verbatim since VK expects a comma separated list rather than
// the space separated form [oauth2.Config] produces.
func (o *OAuth) AuthURL(state string) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("display", "page"),
		oauth2.SetAuthURLParam("revoke", "1"),
	}
	if o.scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", o.scope))
	}
	if o.version != "" {
		opts = append(opts, oauth2.SetAuthURLParam("v", o.version))
	}
	return o.config.AuthCodeURL(state, opts...)
}
