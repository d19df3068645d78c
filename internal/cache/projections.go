package cache

import "github.com/desertthunder/riff/internal/models"

// Projection caps. The roast generator gets the top ten tracks and artists
// but only eight genres and five recent plays; the summary keeps five genres.
const (
	maxRoastItems    = 10
	maxRoastGenres   = 8
	maxRoastRecent   = 5
	maxSummaryGenres = 5
)

// BuildSummary derives the headline projection from a full bundle.
//
// The top track and artist come from the medium-term window, falling back to
// short then long term when it is empty.
func BuildSummary(bundle *models.DataBundle) models.Summary {
	summary := models.Summary{
		TopGenres:    capGenres(bundle.Insights.TopGenres, maxSummaryGenres),
		TotalTracks:  bundle.TopTracks.Total(),
		TotalArtists: bundle.TopArtists.Total(),
		LastUpdated:  bundle.FetchedAt,
	}

	for _, window := range [][]models.TrackRecord{
		bundle.TopTracks.MediumTerm, bundle.TopTracks.ShortTerm, bundle.TopTracks.LongTerm,
	} {
		if len(window) > 0 {
			summary.TopTrack = window[0].Name
			break
		}
	}

	for _, window := range [][]models.ArtistRecord{
		bundle.TopArtists.MediumTerm, bundle.TopArtists.ShortTerm, bundle.TopArtists.LongTerm,
	} {
		if len(window) > 0 {
			summary.TopArtist = window[0].Name
			break
		}
	}

	return summary
}

// BuildRoastingMaterial derives the roast-generator projection from a full bundle.
func BuildRoastingMaterial(bundle *models.DataBundle) models.RoastingMaterial {
	return models.RoastingMaterial{
		TopTracks:      capTracks(preferredTracks(bundle), maxRoastItems),
		TopArtists:     capArtists(preferredArtists(bundle), maxRoastItems),
		TopGenres:      capGenres(bundle.Insights.TopGenres, maxRoastGenres),
		RecentlyPlayed: capRecent(bundle.RecentlyPlayed, maxRoastRecent),
		Insights:       bundle.Insights,
		RoastingFlags:  bundle.Insights.RoastingFlags,
	}
}

func preferredTracks(bundle *models.DataBundle) []models.TrackRecord {
	for _, window := range [][]models.TrackRecord{
		bundle.TopTracks.MediumTerm, bundle.TopTracks.ShortTerm, bundle.TopTracks.LongTerm,
	} {
		if len(window) > 0 {
			return window
		}
	}
	return nil
}

func preferredArtists(bundle *models.DataBundle) []models.ArtistRecord {
	for _, window := range [][]models.ArtistRecord{
		bundle.TopArtists.MediumTerm, bundle.TopArtists.ShortTerm, bundle.TopArtists.LongTerm,
	} {
		if len(window) > 0 {
			return window
		}
	}
	return nil
}

func capTracks(tracks []models.TrackRecord, n int) []models.TrackRecord {
	if len(tracks) > n {
		return tracks[:n]
	}
	return tracks
}

func capArtists(artists []models.ArtistRecord, n int) []models.ArtistRecord {
	if len(artists) > n {
		return artists[:n]
	}
	return artists
}

func capRecent(events []models.RecentPlayEvent, n int) []models.RecentPlayEvent {
	if len(events) > n {
		return events[:n]
	}
	return events
}

func capGenres(genres []string, n int) []string {
	if len(genres) > n {
		return genres[:n]
	}
	return genres
}

// reduceBundle returns a copy of the bundle with every list truncated, used
// for the retry after a storage quota failure.
func reduceBundle(bundle *models.DataBundle) *models.DataBundle {
	reduced := *bundle
	reduced.TopTracks.ShortTerm = capTracks(bundle.TopTracks.ShortTerm, maxRoastItems)
	reduced.TopTracks.MediumTerm = capTracks(bundle.TopTracks.MediumTerm, maxRoastItems)
	reduced.TopTracks.LongTerm = capTracks(bundle.TopTracks.LongTerm, maxRoastItems)
	reduced.TopArtists.ShortTerm = capArtists(bundle.TopArtists.ShortTerm, maxRoastItems)
	reduced.TopArtists.MediumTerm = capArtists(bundle.TopArtists.MediumTerm, maxRoastItems)
	reduced.TopArtists.LongTerm = capArtists(bundle.TopArtists.LongTerm, maxRoastItems)
	reduced.RecentlyPlayed = capRecent(bundle.RecentlyPlayed, maxRoastItems)
	return &reduced
}
