// Spotify API implementation of [MusicSource]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// providerMaxLimit is the largest result limit Spotify accepts per request.
const providerMaxLimit = 50

type followers struct {
	Total int `json:"total"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Images     []SpotifyImage `json:"images"`
	Popularity int            `json:"popularity"`
	Followers  followers      `json:"followers"`
	URI        string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyPaginated represents the paginated wrapper around top tracks/artists responses.
type SpotifyPaginated[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type playContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// SpotifyPlayHistoryItem represents one entry in the recently-played response.
type SpotifyPlayHistoryItem struct {
	Track    SpotifyTrack `json:"track"`
	PlayedAt time.Time    `json:"played_at"`
	Context  *playContext `json:"context"`
}

type spotifyRecentlyPlayed struct {
	Items []SpotifyPlayHistoryItem `json:"items"`
}

// SpotifyService implements the [MusicSource] interface for Spotify API interactions.
// Uses [oauth2] for authentication.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-top-read",
			"user-read-recently-played",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

// Authenticate prepares the service with a bearer access token.
func (s *SpotifyService) Authenticate(ctx context.Context, credential string) error {
	if credential == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrMissingCredentials)
	}
	s.token = &oauth2.Token{AccessToken: credential}
	return nil
}

// Exchange trades an authorization code for a token and installs it on the service.
func (s *SpotifyService) Exchange(ctx context.Context, authCode string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.token = token
	return token, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the oauth2 configuration for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyService) SetBaseURL(url string) {
	s.baseURL = url
}

// SetHTTPClient overrides the HTTP client used for API requests.
func (s *SpotifyService) SetHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

// doRequest performs an authenticated GET against the Spotify API and decodes the response.
//
// HTTP failures map to the provider error taxonomy: 401 credential, 429 rate
// limit, transport/5xx unavailable, undecodable body malformed.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: status 401", shared.ErrCredentialInvalid)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429", shared.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopTracks retrieves the user's top tracks for one time window.
func (s *SpotifyService) TopTracks(ctx context.Context, window models.Window, limit int) ([]models.TrackRecord, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", window.Param(), limit)

	var response SpotifyPaginated[SpotifyTrack]
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.TrackRecord, 0, len(response.Items))
	for _, item := range response.Items {
		tracks = append(tracks, normalizeTrack(item))
	}
	return tracks, nil
}

// TopArtists retrieves the user's top artists for one time window.
func (s *SpotifyService) TopArtists(ctx context.Context, window models.Window, limit int) ([]models.ArtistRecord, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", window.Param(), limit)

	var response SpotifyPaginated[SpotifyArtist]
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	artists := make([]models.ArtistRecord, 0, len(response.Items))
	for _, item := range response.Items {
		artists = append(artists, normalizeArtist(item))
	}
	return artists, nil
}

// RecentlyPlayed retrieves the user's play history, most recent first.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]models.RecentPlayEvent, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", limit)

	var response spotifyRecentlyPlayed
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	events := make([]models.RecentPlayEvent, 0, len(response.Items))
	for _, item := range response.Items {
		event := models.RecentPlayEvent{
			TrackRecord: normalizeTrack(item.Track),
			PlayedAt:    item.PlayedAt,
		}
		if item.Context != nil {
			event.Context = item.Context.URI
		}
		events = append(events, event)
	}
	return events, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > providerMaxLimit {
		return providerMaxLimit
	}
	return limit
}

// normalizeTrack converts a Spotify wire track to a [models.TrackRecord].
func normalizeTrack(track SpotifyTrack) models.TrackRecord {
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}

	record := models.TrackRecord{
		ID:          track.ID,
		Name:        track.Name,
		ArtistNames: names,
		AlbumName:   track.Album.Name,
		Popularity:  track.Popularity,
		DurationMS:  track.DurationMS,
		Explicit:    track.Explicit,
	}
	if len(track.Album.Images) > 0 {
		record.ImageURL = track.Album.Images[0].URL
	}
	return record
}

// normalizeArtist converts a Spotify wire artist to a [models.ArtistRecord].
func normalizeArtist(artist SpotifyArtist) models.ArtistRecord {
	record := models.ArtistRecord{
		ID:            artist.ID,
		Name:          artist.Name,
		Genres:        append([]string(nil), artist.Genres...),
		Popularity:    artist.Popularity,
		FollowerCount: artist.Followers.Total,
	}
	if len(artist.Images) > 0 {
		record.ImageURL = artist.Images[0].URL
	}
	return record
}
