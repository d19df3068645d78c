package tasks

import (
	"math"
	"sort"

	"github.com/desertthunder/riff/internal/models"
)

// maxStoredGenres caps the genre list persisted with a bundle.
const maxStoredGenres = 15

// Roasting flag thresholds.
const (
	minDiverseArtists = 10
	minDistinctGenres = 3
	maxRepeatEntries  = 5
)

// BuildInsights computes the derived statistics for one fetched slice set.
//
// Pure function: empty or failed slices contribute nothing and yield neutral
// values, never an error.
func BuildInsights(set *SliceSet) models.InsightBundle {
	genres := collectGenres(set.Artists)

	insights := models.InsightBundle{
		TopGenres:            capGenres(genres, maxStoredGenres),
		ArtistDiversityCount: countDistinctArtists(set.Artists),
		TrackDiversityCount:  countDistinctTracks(set.Tracks),
		RepeatListens:        repeatListens(set.Tracks),
		ConsistencyScore:     consistencyScore(set.Artists),
		MainstreamScore:      mainstreamScore(set.Tracks.MediumTerm),
	}
	insights.RoastingFlags = roastingFlags(insights, len(genres), set.Artists.Total())
	return insights
}

// collectGenres unions genres across all artist windows, preserving first-seen order.
func collectGenres(artists models.TimeWindowed[models.ArtistRecord]) []string {
	seen := map[string]bool{}
	var ordered []string

	for _, window := range artists.Windows() {
		for _, artist := range window {
			for _, genre := range artist.Genres {
				if !seen[genre] {
					seen[genre] = true
					ordered = append(ordered, genre)
				}
			}
		}
	}
	return ordered
}

func capGenres(genres []string, n int) []string {
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres
}

func countDistinctArtists(artists models.TimeWindowed[models.ArtistRecord]) int {
	ids := map[string]bool{}
	for _, window := range artists.Windows() {
		for _, artist := range window {
			if artist.ID != "" {
				ids[artist.ID] = true
			}
		}
	}
	return len(ids)
}

func countDistinctTracks(tracks models.TimeWindowed[models.TrackRecord]) int {
	ids := map[string]bool{}
	for _, window := range tracks.Windows() {
		for _, track := range window {
			if track.ID != "" {
				ids[track.ID] = true
			}
		}
	}
	return len(ids)
}

// repeatListens builds the track frequency table across the three track
// windows, keeping only ids that appear more than once, sorted by descending
// count (ties broken by id for determinism).
func repeatListens(tracks models.TimeWindowed[models.TrackRecord]) []models.RepeatListen {
	frequency := map[string]int{}
	for _, window := range tracks.Windows() {
		for _, track := range window {
			if track.ID != "" {
				frequency[track.ID]++
			}
		}
	}

	var repeats []models.RepeatListen
	for id, count := range frequency {
		if count > 1 {
			repeats = append(repeats, models.RepeatListen{TrackID: id, Count: count})
		}
	}

	sort.Slice(repeats, func(i, j int) bool {
		if repeats[i].Count != repeats[j].Count {
			return repeats[i].Count > repeats[j].Count
		}
		return repeats[i].TrackID < repeats[j].TrackID
	})
	return repeats
}

// consistencyScore measures cross-window artist overlap on a 0-100 scale.
//
// overlap(short, medium) + overlap(medium, long) over the maximum possible
// overlap min(|S|,|M|) + min(|M|,|L|).
func consistencyScore(artists models.TimeWindowed[models.ArtistRecord]) float64 {
	short := artistIDSet(artists.ShortTerm)
	medium := artistIDSet(artists.MediumTerm)
	long := artistIDSet(artists.LongTerm)

	maxPossible := min(len(short), len(medium)) + min(len(medium), len(long))
	if maxPossible == 0 {
		return 0
	}

	overlap := intersectionSize(short, medium) + intersectionSize(medium, long)
	return 100 * float64(overlap) / float64(maxPossible)
}

func artistIDSet(artists []models.ArtistRecord) map[string]bool {
	ids := map[string]bool{}
	for _, artist := range artists {
		if artist.ID != "" {
			ids[artist.ID] = true
		}
	}
	return ids
}

func intersectionSize(a, b map[string]bool) int {
	count := 0
	for id := range a {
		if b[id] {
			count++
		}
	}
	return count
}

// mainstreamScore is the rounded mean popularity of medium-term tracks,
// ignoring tracks with zero popularity. Zero when none qualify.
func mainstreamScore(tracks []models.TrackRecord) float64 {
	sum, count := 0, 0
	for _, track := range tracks {
		if track.Popularity > 0 {
			sum += track.Popularity
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum) / float64(count))
}

// roastingFlags applies the taste-flag thresholds. The diversity and genre
// flags describe fetched listening habits, so they stay silent when no artist
// data came back at all.
func roastingFlags(insights models.InsightBundle, genreCount, artistTotal int) []string {
	var flags []string
	if artistTotal > 0 {
		if insights.ArtistDiversityCount < minDiverseArtists {
			flags = append(flags, models.FlagLowArtistDiversity)
		}
		if genreCount < minDistinctGenres {
			flags = append(flags, models.FlagNarrowGenreTaste)
		}
	}
	if len(insights.RepeatListens) > maxRepeatEntries {
		flags = append(flags, models.FlagExcessiveRepeats)
	}
	return flags
}
