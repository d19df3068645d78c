// Package services implements clients for the external collaborators riff talks to.
//
// # Music Source
//
// [MusicSource] is the slice-level surface the fetch engine consumes: top
// tracks and artists per time window, plus recently played. [SpotifyService]
// implements it over the Spotify Web API.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends [MusicSource] for providers that use
// server-side OAuth flows. [SpotifyService] implements this for the CLI's
// auth command.
//
// # Roast Generator
//
// [RoasterService] sends a roasting projection of the cached listening data
// to a Gemini-style generateContent endpoint and returns the generated text.
// Callers are expected to tolerate failures with a fallback line.
//
// # Error Handling
//
// Provider failures map to typed errors from the shared package:
//   - [shared.ErrCredentialInvalid] : provider responded 401
//   - [shared.ErrRateLimited] : provider responded 429
//   - [shared.ErrProviderUnavailable] : transport failure or 5xx
//   - [shared.ErrMalformedResponse] : response body not parseable
//
// These are attached per slice by the fetch engine and never abort sibling
// requests.
//
// # API Mappings
//
// The Spotify wire structs are converted to normalized records:
//   - [SpotifyTrack] → [models.TrackRecord] (artist names order-preserved, first album image)
//   - [SpotifyArtist] → [models.ArtistRecord] (genres copied in provider order)
//   - played-history items → [models.RecentPlayEvent] with playedAt and context
package services
