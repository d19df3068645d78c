// package services defines interfaces for the external HTTP APIs riff consumes
//
// Spotify (listening history), generative roast endpoint
package services

import (
	"context"

	"github.com/desertthunder/riff/internal/models"
	"golang.org/x/oauth2"
)

// MusicSource defines the listening-history surface of a music streaming provider.
//
// Each method corresponds to one fetchable slice. Implementations must not
// retry internally; the fetch engine owns pacing and failure capture.
type MusicSource interface {
	// Authenticate prepares the source with a bearer credential.
	// Returns an error if the credential is empty or unusable.
	Authenticate(ctx context.Context, credential string) error

	// TopTracks retrieves the user's top tracks for one time window.
	TopTracks(ctx context.Context, window models.Window, limit int) ([]models.TrackRecord, error)

	// TopArtists retrieves the user's top artists for one time window.
	TopArtists(ctx context.Context, window models.Window, limit int) ([]models.ArtistRecord, error)

	// RecentlyPlayed retrieves the user's play history, most recent first.
	RecentlyPlayed(ctx context.Context, limit int) ([]models.RecentPlayEvent, error)

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}

// OAuthService extends MusicSource for providers using server-side OAuth flows.
type OAuthService interface {
	MusicSource

	// GetAuthURL returns the provider's authorization URL for the given state token.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying oauth2 configuration for callback exchange.
	GetOAuthConfig() *oauth2.Config
}

// RoastGenerator produces a persona-voiced roast from cached listening data.
type RoastGenerator interface {
	// Roast generates roast text for the given material.
	Roast(ctx context.Context, material *models.RoastingMaterial, persona, severity string) (string, error)
}
