package tasks

import (
	"slices"
	"testing"

	"github.com/desertthunder/riff/internal/models"
)

func track(id string, popularity int) models.TrackRecord {
	return models.TrackRecord{ID: id, Name: "Track " + id, Popularity: popularity}
}

func artist(id string, genres ...string) models.ArtistRecord {
	return models.ArtistRecord{ID: id, Name: "Artist " + id, Genres: genres}
}

func TestBuildInsights(t *testing.T) {
	t.Run("EmptyInputYieldsNeutralValues", func(t *testing.T) {
		insights := BuildInsights(&SliceSet{})

		if insights.ArtistDiversityCount != 0 || insights.TrackDiversityCount != 0 {
			t.Errorf("expected zero diversity counts, got %d artists / %d tracks",
				insights.ArtistDiversityCount, insights.TrackDiversityCount)
		}
		if insights.ConsistencyScore != 0 {
			t.Errorf("expected zero consistency score, got %f", insights.ConsistencyScore)
		}
		if insights.MainstreamScore != 0 {
			t.Errorf("expected zero mainstream score, got %f", insights.MainstreamScore)
		}
		if len(insights.RepeatListens) != 0 {
			t.Errorf("expected no repeat listens, got %v", insights.RepeatListens)
		}
		if len(insights.RoastingFlags) != 0 {
			t.Errorf("expected no flags for empty input, got %v", insights.RoastingFlags)
		}
	})

	t.Run("GenresPreserveFirstSeenOrder", func(t *testing.T) {
		set := &SliceSet{}
		set.Artists.ShortTerm = []models.ArtistRecord{
			artist("a1", "indie rock", "shoegaze"),
			artist("a2", "shoegaze", "dream pop"),
		}
		set.Artists.LongTerm = []models.ArtistRecord{
			artist("a3", "indie rock", "post punk"),
		}

		insights := BuildInsights(set)

		want := []string{"indie rock", "shoegaze", "dream pop", "post punk"}
		if !slices.Equal(insights.TopGenres, want) {
			t.Errorf("expected genres %v, got %v", want, insights.TopGenres)
		}
	})

	t.Run("GenreListCappedAtFifteen", func(t *testing.T) {
		genres := make([]string, 20)
		for i := range genres {
			genres[i] = "genre-" + string(rune('a'+i))
		}

		set := &SliceSet{}
		set.Artists.MediumTerm = []models.ArtistRecord{artist("a1", genres...)}

		insights := BuildInsights(set)
		if len(insights.TopGenres) != maxStoredGenres {
			t.Errorf("expected %d genres, got %d", maxStoredGenres, len(insights.TopGenres))
		}
		if insights.TopGenres[0] != "genre-a" {
			t.Errorf("cap should keep the earliest genres, got first %q", insights.TopGenres[0])
		}
	})

	t.Run("DiversityCountsDeduplicateAcrossWindows", func(t *testing.T) {
		set := &SliceSet{}
		set.Tracks.ShortTerm = []models.TrackRecord{track("t1", 50), track("t2", 50)}
		set.Tracks.MediumTerm = []models.TrackRecord{track("t1", 50), track("t3", 50)}
		set.Artists.ShortTerm = []models.ArtistRecord{artist("a1"), artist("a2")}
		set.Artists.LongTerm = []models.ArtistRecord{artist("a2")}

		insights := BuildInsights(set)

		if insights.TrackDiversityCount != 3 {
			t.Errorf("expected 3 distinct tracks, got %d", insights.TrackDiversityCount)
		}
		if insights.ArtistDiversityCount != 2 {
			t.Errorf("expected 2 distinct artists, got %d", insights.ArtistDiversityCount)
		}
	})

	t.Run("RepeatListensSortedByCountThenID", func(t *testing.T) {
		set := &SliceSet{}
		set.Tracks.ShortTerm = []models.TrackRecord{track("t1", 0), track("t2", 0), track("t3", 0)}
		set.Tracks.MediumTerm = []models.TrackRecord{track("t1", 0), track("t2", 0)}
		set.Tracks.LongTerm = []models.TrackRecord{track("t2", 0), track("t4", 0)}

		insights := BuildInsights(set)

		want := []models.RepeatListen{
			{TrackID: "t2", Count: 3},
			{TrackID: "t1", Count: 2},
		}
		if len(insights.RepeatListens) != len(want) {
			t.Fatalf("expected %d repeat entries, got %v", len(want), insights.RepeatListens)
		}
		for i, entry := range want {
			if insights.RepeatListens[i] != entry {
				t.Errorf("entry %d: expected %+v, got %+v", i, entry, insights.RepeatListens[i])
			}
		}
	})

	t.Run("ConsistencyScoreFromWindowOverlap", func(t *testing.T) {
		set := &SliceSet{}
		set.Artists.ShortTerm = []models.ArtistRecord{artist("a"), artist("b")}
		set.Artists.MediumTerm = []models.ArtistRecord{artist("b"), artist("c")}
		set.Artists.LongTerm = []models.ArtistRecord{artist("c"), artist("d")}

		insights := BuildInsights(set)

		// overlap 1+1 over min(2,2)+min(2,2)
		if insights.ConsistencyScore != 50 {
			t.Errorf("expected consistency 50, got %f", insights.ConsistencyScore)
		}
	})

	t.Run("MainstreamScoreIgnoresZeroPopularity", func(t *testing.T) {
		set := &SliceSet{}
		set.Tracks.MediumTerm = []models.TrackRecord{
			track("t1", 80),
			track("t2", 61),
			track("t3", 0),
		}

		insights := BuildInsights(set)

		// mean of 80 and 61 rounds to 71
		if insights.MainstreamScore != 71 {
			t.Errorf("expected mainstream 71, got %f", insights.MainstreamScore)
		}
	})

	t.Run("RoastingFlagsFromThresholds", func(t *testing.T) {
		set := &SliceSet{}
		set.Artists.ShortTerm = []models.ArtistRecord{
			artist("a1", "pop"), artist("a2", "pop"),
		}

		insights := BuildInsights(set)

		if !insights.HasFlag(models.FlagLowArtistDiversity) {
			t.Error("expected low_artist_diversity flag")
		}
		if !insights.HasFlag(models.FlagNarrowGenreTaste) {
			t.Error("expected narrow_genre_taste flag")
		}
		if insights.HasFlag(models.FlagExcessiveRepeats) {
			t.Error("did not expect excessive_repeats flag")
		}
	})

	t.Run("ExcessiveRepeatsFlag", func(t *testing.T) {
		set := &SliceSet{}
		for i := range 20 {
			set.Artists.ShortTerm = append(set.Artists.ShortTerm, artist("a"+string(rune('a'+i)), "g"+string(rune('a'+i))))
		}
		for i := range 6 {
			id := "t" + string(rune('a'+i))
			set.Tracks.ShortTerm = append(set.Tracks.ShortTerm, track(id, 0))
			set.Tracks.MediumTerm = append(set.Tracks.MediumTerm, track(id, 0))
		}

		insights := BuildInsights(set)

		if !insights.HasFlag(models.FlagExcessiveRepeats) {
			t.Error("expected excessive_repeats flag with 6 repeat entries")
		}
		if insights.HasFlag(models.FlagLowArtistDiversity) {
			t.Error("did not expect low_artist_diversity with 20 artists")
		}
	})
}
