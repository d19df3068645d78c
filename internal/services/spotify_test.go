package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
)

func testCredentials() map[string]string {
	return map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
		"redirect_uri":  "http://localhost:8080/callback",
	}
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(testCredentials())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.SetBaseURL(server.URL)
	srv.SetHTTPClient(server.Client())
	if err := srv.Authenticate(context.Background(), "test_token"); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv, server
}

const topTracksFixture = `{
	"items": [
		{
			"id": "track1",
			"name": "First Track",
			"artists": [{"id": "artist1", "name": "First Artist"}, {"id": "artist2", "name": "Second Artist"}],
			"album": {"id": "album1", "name": "First Album", "images": [{"url": "https://img.example/a.jpg", "height": 640, "width": 640}]},
			"duration_ms": 215000,
			"explicit": true,
			"popularity": 82
		}
	],
	"total": 1,
	"limit": 20,
	"offset": 0
}`

const topArtistsFixture = `{
	"items": [
		{
			"id": "artist1",
			"name": "First Artist",
			"genres": ["indie rock", "shoegaze"],
			"images": [{"url": "https://img.example/artist.jpg", "height": 640, "width": 640}],
			"popularity": 74,
			"followers": {"total": 120345}
		}
	],
	"total": 1,
	"limit": 20,
	"offset": 0
}`

const recentlyPlayedFixture = `{
	"items": [
		{
			"track": {
				"id": "track1",
				"name": "First Track",
				"artists": [{"id": "artist1", "name": "First Artist"}],
				"album": {"id": "album1", "name": "First Album"},
				"duration_ms": 180000,
				"popularity": 55
			},
			"played_at": "2025-08-01T12:30:00Z",
			"context": {"type": "playlist", "uri": "spotify:playlist:abc123"}
		}
	]
}`

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatal(err)
		}

		if err := srv.Authenticate(context.Background(), ""); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials for empty token, got %v", err)
		}
		if err := srv.Authenticate(context.Background(), "token"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials())
		if err != nil {
			t.Fatal(err)
		}

		url := srv.GetAuthURL("state123")
		for _, want := range []string{"accounts.spotify.com/authorize", "state=state123", "user-top-read"} {
			if !strings.Contains(url, want) {
				t.Errorf("auth URL missing %q: %s", want, url)
			}
		}
	})

	t.Run("TopTracks", func(t *testing.T) {
		t.Run("Normalizes Wire Response", func(t *testing.T) {
			var gotPath string
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path + "?" + r.URL.RawQuery
				if r.Header.Get("Authorization") != "Bearer test_token" {
					t.Errorf("missing bearer header, got %q", r.Header.Get("Authorization"))
				}
				w.Write([]byte(topTracksFixture))
			})

			tracks, err := srv.TopTracks(context.Background(), models.ShortTerm, 10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !strings.Contains(gotPath, "time_range=short_term") || !strings.Contains(gotPath, "limit=10") {
				t.Errorf("unexpected request path: %s", gotPath)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected 1 track, got %d", len(tracks))
			}

			track := tracks[0]
			if track.ID != "track1" || track.Name != "First Track" {
				t.Errorf("unexpected track identity: %+v", track)
			}
			if len(track.ArtistNames) != 2 || track.ArtistNames[0] != "First Artist" {
				t.Errorf("artist names not flattened: %v", track.ArtistNames)
			}
			if track.AlbumName != "First Album" || track.ImageURL != "https://img.example/a.jpg" {
				t.Errorf("album fields not lifted: %+v", track)
			}
			if !track.Explicit || track.Popularity != 82 || track.DurationMS != 215000 {
				t.Errorf("scalar fields lost: %+v", track)
			}
		})

		t.Run("Clamps Oversized Limit", func(t *testing.T) {
			var gotQuery string
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				w.Write([]byte(topTracksFixture))
			})

			if _, err := srv.TopTracks(context.Background(), models.LongTerm, 200); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(gotQuery, "limit=50") {
				t.Errorf("limit not clamped: %s", gotQuery)
			}
		})

		t.Run("Requires Authentication", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials())
			if err != nil {
				t.Fatal(err)
			}
			if _, err := srv.TopTracks(context.Background(), models.ShortTerm, 10); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("TopArtists", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(topArtistsFixture))
		})

		artists, err := srv.TopArtists(context.Background(), models.MediumTerm, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(artists) != 1 {
			t.Fatalf("expected 1 artist, got %d", len(artists))
		}

		artist := artists[0]
		if artist.ID != "artist1" || artist.Name != "First Artist" {
			t.Errorf("unexpected artist identity: %+v", artist)
		}
		if len(artist.Genres) != 2 || artist.Genres[0] != "indie rock" {
			t.Errorf("genres not preserved: %v", artist.Genres)
		}
		if artist.FollowerCount != 120345 || artist.ImageURL != "https://img.example/artist.jpg" {
			t.Errorf("nested fields not lifted: %+v", artist)
		}
	})

	t.Run("RecentlyPlayed", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(recentlyPlayedFixture))
		})

		events, err := srv.RecentlyPlayed(context.Background(), 25)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		event := events[0]
		if event.ID != "track1" {
			t.Errorf("track not embedded: %+v", event)
		}
		if event.PlayedAt.IsZero() {
			t.Error("played_at not parsed")
		}
		if event.Context != "spotify:playlist:abc123" {
			t.Errorf("context uri not lifted: %q", event.Context)
		}
	})

	t.Run("Error Taxonomy", func(t *testing.T) {
		cases := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"Unauthorized", http.StatusUnauthorized, `{"error":{"status":401}}`, shared.ErrCredentialInvalid},
			{"RateLimited", http.StatusTooManyRequests, `{"error":{"status":429}}`, shared.ErrRateLimited},
			{"ServerError", http.StatusBadGateway, "bad gateway", shared.ErrProviderUnavailable},
			{"MalformedBody", http.StatusOK, "{not json", shared.ErrMalformedResponse},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(tc.body))
				})

				_, err := srv.TopTracks(context.Background(), models.ShortTerm, 10)
				if !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("UserProfile", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"id": "user1", "display_name": "Test User", "product": "premium"}`))
		})

		user, err := srv.UserProfile(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != "user1" || user.DisplayName != "Test User" {
			t.Errorf("unexpected profile: %+v", user)
		}
	})
}
