package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"golang.org/x/time/rate"
)

// SliceKind identifies one of the seven independently-fetched listening-history slices.
type SliceKind int

const (
	SliceTracksShort SliceKind = iota
	SliceTracksMedium
	SliceTracksLong
	SliceArtistsShort
	SliceArtistsMedium
	SliceArtistsLong
	SliceRecent
)

// SliceCount is the number of slices in a full fetch cycle.
const SliceCount = 7

func (k SliceKind) String() string {
	switch k {
	case SliceTracksShort:
		return "short_term_tracks"
	case SliceTracksMedium:
		return "medium_term_tracks"
	case SliceTracksLong:
		return "long_term_tracks"
	case SliceArtistsShort:
		return "short_term_artists"
	case SliceArtistsMedium:
		return "medium_term_artists"
	case SliceArtistsLong:
		return "long_term_artists"
	case SliceRecent:
		return "recent_plays"
	default:
		return ""
	}
}

// FetchConfig holds per-slice result limits for one fetch cycle.
type FetchConfig struct {
	ShortTermTrackLimit  int
	MediumTermTrackLimit int
	LongTermTrackLimit   int

	ShortTermArtistLimit  int
	MediumTermArtistLimit int
	LongTermArtistLimit   int

	RecentPlayLimit int
}

// DefaultFetchConfig returns the limits used when the caller supplies none.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		ShortTermTrackLimit:   10,
		MediumTermTrackLimit:  20,
		LongTermTrackLimit:    15,
		ShortTermArtistLimit:  10,
		MediumTermArtistLimit: 20,
		LongTermArtistLimit:   15,
		RecentPlayLimit:       25,
	}
}

// providerMaxLimit is the largest per-request result limit the provider accepts.
const providerMaxLimit = 50

// Normalize fills zero limits from defaults and validates the rest.
func (c *FetchConfig) Normalize() error {
	defaults := DefaultFetchConfig()
	limits := []struct {
		value *int
		def   int
		name  string
	}{
		{&c.ShortTermTrackLimit, defaults.ShortTermTrackLimit, "short term track limit"},
		{&c.MediumTermTrackLimit, defaults.MediumTermTrackLimit, "medium term track limit"},
		{&c.LongTermTrackLimit, defaults.LongTermTrackLimit, "long term track limit"},
		{&c.ShortTermArtistLimit, defaults.ShortTermArtistLimit, "short term artist limit"},
		{&c.MediumTermArtistLimit, defaults.MediumTermArtistLimit, "medium term artist limit"},
		{&c.LongTermArtistLimit, defaults.LongTermArtistLimit, "long term artist limit"},
		{&c.RecentPlayLimit, defaults.RecentPlayLimit, "recent play limit"},
	}

	for _, l := range limits {
		if *l.value == 0 {
			*l.value = l.def
			continue
		}
		if *l.value < 0 || *l.value > providerMaxLimit {
			return fmt.Errorf("%w: %s must be 1-%d, got %d", shared.ErrInvalidInput, l.name, providerMaxLimit, *l.value)
		}
	}
	return nil
}

// SliceResult records the outcome of fetching a single slice.
type SliceResult struct {
	Kind    SliceKind
	Success bool
	Err     error
}

// SliceSet contains the normalized items and per-slice outcomes of one fetch cycle.
//
// Failed slices leave their collection empty; the failure reason lives in Results.
type SliceSet struct {
	Tracks  models.TimeWindowed[models.TrackRecord]
	Artists models.TimeWindowed[models.ArtistRecord]
	Recent  []models.RecentPlayEvent
	Results [SliceCount]SliceResult
}

// Failures returns the results of slices that failed.
func (s *SliceSet) Failures() []SliceResult {
	var failed []SliceResult
	for _, r := range s.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// AllFailed reports whether every slice in the cycle failed.
func (s *SliceSet) AllFailed() bool {
	return len(s.Failures()) == SliceCount
}

// FetchEngine retrieves all seven slices from a music source.
type FetchEngine struct {
	source  services.MusicSource
	limiter *rate.Limiter
}

// NewFetchEngine creates an engine over the given source, pacing requests at
// requestsPerSecond (default 5 when <= 0).
func NewFetchEngine(source services.MusicSource, requestsPerSecond float64) *FetchEngine {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}
	return &FetchEngine{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), SliceCount),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *FetchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Fetch retrieves all seven slices concurrently.
//
// Per-slice failures are captured in the returned SliceSet and never abort
// sibling requests. Fetch itself only errors when the source is missing or
// the config is invalid.
func (e *FetchEngine) Fetch(ctx context.Context, cfg FetchConfig, progress chan<- ProgressUpdate) (*SliceSet, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: music source not initialized", shared.ErrProviderUnavailable)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	set := &SliceSet{}

	trackSlices := []struct {
		kind   SliceKind
		window models.Window
		limit  int
		target *[]models.TrackRecord
	}{
		{SliceTracksShort, models.ShortTerm, cfg.ShortTermTrackLimit, &set.Tracks.ShortTerm},
		{SliceTracksMedium, models.MediumTerm, cfg.MediumTermTrackLimit, &set.Tracks.MediumTerm},
		{SliceTracksLong, models.LongTerm, cfg.LongTermTrackLimit, &set.Tracks.LongTerm},
	}

	artistSlices := []struct {
		kind   SliceKind
		window models.Window
		limit  int
		target *[]models.ArtistRecord
	}{
		{SliceArtistsShort, models.ShortTerm, cfg.ShortTermArtistLimit, &set.Artists.ShortTerm},
		{SliceArtistsMedium, models.MediumTerm, cfg.MediumTermArtistLimit, &set.Artists.MediumTerm},
		{SliceArtistsLong, models.LongTerm, cfg.LongTermArtistLimit, &set.Artists.LongTerm},
	}

	var wg sync.WaitGroup

	// Each goroutine writes only its own slot in set, so no mutex is needed
	// beyond waiting for the group.
	for _, s := range trackSlices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.sendProgress(progress, fetchSliceUpdate(s.kind))

			items, err := e.fetchTracks(ctx, s.window, s.limit)
			if err != nil {
				set.Results[s.kind] = SliceResult{Kind: s.kind, Err: err}
				e.sendProgress(progress, sliceFailedUpdate(s.kind, err))
				return
			}
			*s.target = items
			set.Results[s.kind] = SliceResult{Kind: s.kind, Success: true}
			e.sendProgress(progress, sliceDoneUpdate(s.kind, len(items)))
		}()
	}

	for _, s := range artistSlices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.sendProgress(progress, fetchSliceUpdate(s.kind))

			items, err := e.fetchArtists(ctx, s.window, s.limit)
			if err != nil {
				set.Results[s.kind] = SliceResult{Kind: s.kind, Err: err}
				e.sendProgress(progress, sliceFailedUpdate(s.kind, err))
				return
			}
			*s.target = items
			set.Results[s.kind] = SliceResult{Kind: s.kind, Success: true}
			e.sendProgress(progress, sliceDoneUpdate(s.kind, len(items)))
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.sendProgress(progress, fetchSliceUpdate(SliceRecent))

		items, err := e.fetchRecent(ctx, cfg.RecentPlayLimit)
		if err != nil {
			set.Results[SliceRecent] = SliceResult{Kind: SliceRecent, Err: err}
			e.sendProgress(progress, sliceFailedUpdate(SliceRecent, err))
			return
		}
		set.Recent = items
		set.Results[SliceRecent] = SliceResult{Kind: SliceRecent, Success: true}
		e.sendProgress(progress, sliceDoneUpdate(SliceRecent, len(items)))
	}()

	wg.Wait()
	return set, nil
}

func (e *FetchEngine) fetchTracks(ctx context.Context, window models.Window, limit int) ([]models.TrackRecord, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	return e.source.TopTracks(ctx, window, limit)
}

func (e *FetchEngine) fetchArtists(ctx context.Context, window models.Window, limit int) ([]models.ArtistRecord, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	return e.source.TopArtists(ctx, window, limit)
}

func (e *FetchEngine) fetchRecent(ctx context.Context, limit int) ([]models.RecentPlayEvent, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	return e.source.RecentlyPlayed(ctx, limit)
}
