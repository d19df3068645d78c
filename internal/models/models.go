// package models defines the data model for the riff taste profiler
package models

import (
	"time"
)

// SchemaVersion is the canonical version string written into every persisted [DataBundle].
const SchemaVersion = "2.0"

// Window identifies one of the three listening-history time ranges exposed by the provider.
type Window int

const (
	ShortTerm Window = iota
	MediumTerm
	LongTerm
)

// Param returns the provider's query-parameter value for the window.
func (w Window) Param() string {
	switch w {
	case ShortTerm:
		return "short_term"
	case MediumTerm:
		return "medium_term"
	case LongTerm:
		return "long_term"
	default:
		return ""
	}
}

func (w Window) String() string {
	return w.Param()
}

// TrackRecord is a normalized track. Immutable once built.
type TrackRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ArtistNames []string `json:"artistNames"`
	AlbumName   string   `json:"albumName"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Popularity  int      `json:"popularity"`
	DurationMS  int      `json:"durationMs"`
	Explicit    bool     `json:"explicit"`
}

// ArtistRecord is a normalized artist. Genres keep the provider's ordering.
type ArtistRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Genres        []string `json:"genres"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Popularity    int      `json:"popularity"`
	FollowerCount int      `json:"followerCount"`
}

// RecentPlayEvent is a track plus the moment it was played.
type RecentPlayEvent struct {
	TrackRecord
	PlayedAt time.Time `json:"playedAt"`
	Context  string    `json:"context,omitempty"`
}

// TimeWindowed holds one collection per provider time range.
type TimeWindowed[T any] struct {
	ShortTerm  []T `json:"shortTerm"`
	MediumTerm []T `json:"mediumTerm"`
	LongTerm   []T `json:"longTerm"`
}

// Windows returns the three collections in short, medium, long order.
func (c TimeWindowed[T]) Windows() [][]T {
	return [][]T{c.ShortTerm, c.MediumTerm, c.LongTerm}
}

// Total returns the item count across all three windows.
func (c TimeWindowed[T]) Total() int {
	return len(c.ShortTerm) + len(c.MediumTerm) + len(c.LongTerm)
}

// Roasting flag tags derived from insight thresholds.
const (
	FlagLowArtistDiversity = "low_artist_diversity"
	FlagNarrowGenreTaste   = "narrow_genre_taste"
	FlagExcessiveRepeats   = "excessive_repeats"
)

// RepeatListen records how many top-track windows a track id appears in.
type RepeatListen struct {
	TrackID string `json:"trackId"`
	Count   int    `json:"count"`
}

// InsightBundle contains statistics recomputed on every fetch cycle.
type InsightBundle struct {
	TopGenres            []string       `json:"topGenres"`
	ArtistDiversityCount int            `json:"artistDiversityCount"`
	TrackDiversityCount  int            `json:"trackDiversityCount"`
	RepeatListens        []RepeatListen `json:"repeatListenCounts"`
	ConsistencyScore     float64        `json:"consistencyScore"`
	MainstreamScore      float64        `json:"mainstreamScore"`
	RoastingFlags        []string       `json:"roastingFlags"`
}

// RepeatCount returns the appearance count recorded for a track id, or zero.
func (i InsightBundle) RepeatCount(trackID string) int {
	for _, r := range i.RepeatListens {
		if r.TrackID == trackID {
			return r.Count
		}
	}
	return 0
}

// HasFlag reports whether the given roasting flag was raised.
func (i InsightBundle) HasFlag(flag string) bool {
	for _, f := range i.RoastingFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// DataBundle is the unit persisted to the key-value store and handed to consumers.
//
// Writes replace the whole bundle atomically; FetchedAt never decreases across
// successive writes within a session.
type DataBundle struct {
	TopTracks      TimeWindowed[TrackRecord]  `json:"topTracks"`
	TopArtists     TimeWindowed[ArtistRecord] `json:"topArtists"`
	RecentlyPlayed []RecentPlayEvent          `json:"recentlyPlayed"`
	Insights       InsightBundle              `json:"insights"`
	FetchedAt      time.Time                  `json:"fetchedAt"`
	SchemaVersion  string                     `json:"schemaVersion"`
}

// Summary is the lightweight projection for headline display.
type Summary struct {
	TopTrack     string    `json:"topTrack"`
	TopArtist    string    `json:"topArtist"`
	TopGenres    []string  `json:"topGenres"`
	TotalTracks  int       `json:"totalTracks"`
	TotalArtists int       `json:"totalArtists"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// RoastingMaterial is the projection consumed by the roast generator.
type RoastingMaterial struct {
	TopTracks      []TrackRecord     `json:"topTracks"`
	TopArtists     []ArtistRecord    `json:"topArtists"`
	TopGenres      []string          `json:"topGenres"`
	RecentlyPlayed []RecentPlayEvent `json:"recentlyPlayed"`
	Insights       InsightBundle     `json:"insights"`
	RoastingFlags  []string          `json:"roastingFlags"`
}
