// package services defines interface Service for interacting with HTTP APIs
//
// VK audio (XML endpoints)
package services

import (
	"context"

	"github.com/desertthunder/flow/internal/models"
)

// Service defines the interface for music service providers that serve playlists to an authorized user.
type Service interface {
	// Authenticate installs the tokens obtained from an authorization flow.
	// Returns an error if the tokens are unusable.
	Authenticate(ctx context.Context, tokens models.TokenSet) error

	// Playlist fetches the playlist described by req. The result is rebuilt on every call.
	Playlist(ctx context.Context, req models.Request) (*models.PlaylistExport, error)

	// Genres returns the genres accepted by popular playlist requests, in display order.
	Genres() []Genre

	// Name returns the name of the service (e.g., "VK")
	Name() string
}
