package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/store"
	"github.com/desertthunder/riff/internal/tasks"
)

// Storage keys co-written on every successful refresh.
const (
	KeyMusicData   = "music_data"
	KeyLastUpdated = "data_last_updated"
	KeySummary     = "data_summary"

	// legacyKeyMusicData is the pre-2.0 bundle key, migrated on first read.
	legacyKeyMusicData = "spotify_music_data"
)

// Format selects the projection returned by [Manager.Read].
type Format string

const (
	FormatFull     Format = "full"
	FormatSummary  Format = "summary"
	FormatRoasting Format = "roasting"
)

// Options configures a [Manager].
type Options struct {
	AutoRefresh     bool
	RefreshInterval time.Duration
	MaxDataAge      time.Duration
	Limits          tasks.FetchConfig
}

// OptionsFromConfig maps the cache section of the app config onto manager options.
func OptionsFromConfig(cfg shared.CacheConfig) Options {
	return Options{
		AutoRefresh:     cfg.AutoRefresh,
		RefreshInterval: time.Duration(cfg.RefreshIntervalMS) * time.Millisecond,
		MaxDataAge:      time.Duration(cfg.MaxDataAgeMS) * time.Millisecond,
		Limits: tasks.FetchConfig{
			ShortTermTrackLimit:   cfg.Limits.ShortTermTracks,
			MediumTermTrackLimit:  cfg.Limits.MediumTermTracks,
			LongTermTrackLimit:    cfg.Limits.LongTermTracks,
			ShortTermArtistLimit:  cfg.Limits.ShortTermArtists,
			MediumTermArtistLimit: cfg.Limits.MediumTermArtists,
			LongTermArtistLimit:   cfg.Limits.LongTermArtists,
			RecentPlayLimit:       cfg.Limits.RecentPlays,
		},
	}
}

// Result is the outcome of one initialization or refresh cycle.
type Result struct {
	Success   bool
	Data      *models.DataBundle
	FromCache bool
	Err       error
}

// Status describes the current state of the cache without loading provider data.
type Status struct {
	HasData      bool      `json:"hasData"`
	AgeMS        int64     `json:"ageMs"`
	IsFresh      bool      `json:"isFresh"`
	TotalTracks  int       `json:"totalTracks"`
	TotalArtists int       `json:"totalArtists"`
	GenreCount   int       `json:"genreCount"`
	LastUpdated  time.Time `json:"lastUpdated,omitzero"`
}

// Manager coordinates fetch cycles, persistence, and reads of the cached bundle.
type Manager struct {
	kv     store.KV
	source services.MusicSource
	engine *tasks.FetchEngine
	opts   Options
	logger *log.Logger

	// now is swappable for freshness tests.
	now func() time.Time

	mu            sync.Mutex
	inflight      chan struct{}
	lastResult    *Result
	lastFetchedAt time.Time

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewManager creates a cache manager over the given store and music source.
func NewManager(kv store.KV, source services.MusicSource, opts Options, logger *log.Logger) *Manager {
	if opts.MaxDataAge <= 0 {
		opts.MaxDataAge = 2 * time.Hour
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Minute
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Manager{
		kv:      kv,
		source:  source,
		engine:  tasks.NewFetchEngine(source, 0),
		opts:    opts,
		logger:  shared.WithLogger(logger, "component", "cache"),
		now:     time.Now,
		stopped: make(chan struct{}),
	}
}

// SetEngine overrides the fetch engine, for tests.
func (m *Manager) SetEngine(engine *tasks.FetchEngine) {
	m.engine = engine
}

// Initialize authenticates the source and ensures usable data is available.
//
// Fresh cached data is served without touching the provider. Stale or absent
// data triggers a refresh cycle. When auto-refresh is enabled, a background
// ticker keeps the cache warm until [Manager.Close] is called.
func (m *Manager) Initialize(ctx context.Context, credential string) (*Result, error) {
	if err := m.source.Authenticate(ctx, credential); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	var result *Result
	if bundle, fresh := m.cachedBundle(); fresh {
		m.logger.Debug("serving fresh cached bundle", "fetched_at", bundle.FetchedAt)
		result = &Result{Success: true, Data: bundle, FromCache: true}
	} else {
		result = m.refresh(ctx, nil)
	}

	if m.opts.AutoRefresh {
		go m.autoRefreshLoop()
	}
	return result, nil
}

// Close stops the auto-refresh loop. Safe to call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

// ForceRefresh runs a refresh cycle regardless of freshness. Concurrent
// callers share the in-flight cycle's result.
func (m *Manager) ForceRefresh(ctx context.Context, progress chan<- tasks.ProgressUpdate) *Result {
	return m.refresh(ctx, progress)
}

// Read returns the requested projection of the cached bundle.
//
// Returns [shared.ErrNoData] when nothing usable is stored. Reads never
// trigger fetches.
func (m *Manager) Read(format Format) (any, error) {
	bundle := m.loadBundle()
	if bundle == nil {
		return nil, fmt.Errorf("%w: no cached listening data", shared.ErrNoData)
	}

	switch format {
	case FormatFull, "":
		return bundle, nil
	case FormatSummary:
		summary := BuildSummary(bundle)
		return &summary, nil
	case FormatRoasting:
		material := BuildRoastingMaterial(bundle)
		return &material, nil
	default:
		return nil, fmt.Errorf("%w: unknown read format %q", shared.ErrInvalidArgument, format)
	}
}

// Bundle returns the full cached bundle.
func (m *Manager) Bundle() (*models.DataBundle, error) {
	v, err := m.Read(FormatFull)
	if err != nil {
		return nil, err
	}
	return v.(*models.DataBundle), nil
}

// Summary returns the headline projection, preferring the stored summary and
// rebuilding it from the bundle when absent.
func (m *Manager) Summary() (*models.Summary, error) {
	if raw, err := m.kv.Get(KeySummary); err == nil && raw != nil {
		var summary models.Summary
		if err := json.Unmarshal(raw, &summary); err == nil {
			return &summary, nil
		}
		m.logger.Warn("stored summary is corrupt, rebuilding from bundle")
	}

	v, err := m.Read(FormatSummary)
	if err != nil {
		return nil, err
	}
	return v.(*models.Summary), nil
}

// RoastingMaterial returns the roast-generator projection.
func (m *Manager) RoastingMaterial() (*models.RoastingMaterial, error) {
	v, err := m.Read(FormatRoasting)
	if err != nil {
		return nil, err
	}
	return v.(*models.RoastingMaterial), nil
}

// Status reports cache state and headline counts.
func (m *Manager) Status() Status {
	bundle := m.loadBundle()
	if bundle == nil {
		return Status{}
	}

	lastUpdated := m.loadLastUpdated()
	if lastUpdated.IsZero() {
		lastUpdated = bundle.FetchedAt
	}

	age := m.now().Sub(lastUpdated)
	if age < 0 {
		age = 0
	}

	return Status{
		HasData:      true,
		AgeMS:        age.Milliseconds(),
		IsFresh:      age < m.opts.MaxDataAge,
		TotalTracks:  bundle.TopTracks.Total(),
		TotalArtists: bundle.TopArtists.Total(),
		GenreCount:   len(bundle.Insights.TopGenres),
		LastUpdated:  lastUpdated,
	}
}

// Clear removes all cached listening data, including any legacy keys.
func (m *Manager) Clear() error {
	return m.kv.Delete(KeyMusicData, KeyLastUpdated, KeySummary, legacyKeyMusicData)
}

// refresh runs or joins a refresh cycle. Non-reentrant: a second caller never
// starts a parallel fetch against the provider.
func (m *Manager) refresh(ctx context.Context, progress chan<- tasks.ProgressUpdate) *Result {
	m.mu.Lock()
	if m.inflight != nil {
		waitCh := m.inflight
		m.mu.Unlock()

		select {
		case <-waitCh:
		case <-ctx.Done():
			return &Result{Err: fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())}
		}

		m.mu.Lock()
		result := m.lastResult
		m.mu.Unlock()
		return result
	}

	done := make(chan struct{})
	m.inflight = done
	m.mu.Unlock()

	result := m.runCycle(ctx, progress)

	m.mu.Lock()
	m.lastResult = result
	m.inflight = nil
	m.mu.Unlock()
	close(done)

	return result
}

// runCycle performs one fetch, aggregate, persist sequence.
func (m *Manager) runCycle(ctx context.Context, progress chan<- tasks.ProgressUpdate) *Result {
	set, err := m.engine.Fetch(ctx, m.opts.Limits, progress)
	if err != nil {
		return &Result{Err: err}
	}

	if set.AllFailed() {
		err := set.Results[0].Err
		m.logger.Error("every slice failed, keeping existing cache", "err", err)
		return &Result{Err: fmt.Errorf("%w: all slices failed: %v", shared.ErrProviderUnavailable, err)}
	}

	for _, failure := range set.Failures() {
		m.logger.Warn("slice failed", "slice", failure.Kind, "err", failure.Err)
	}

	bundle := &models.DataBundle{
		TopTracks:      set.Tracks,
		TopArtists:     set.Artists,
		RecentlyPlayed: set.Recent,
		Insights:       tasks.BuildInsights(set),
		FetchedAt:      m.nextFetchedAt(),
		SchemaVersion:  models.SchemaVersion,
	}

	if err := m.persist(bundle); err != nil {
		return &Result{Data: bundle, Err: err}
	}

	return &Result{Success: true, Data: bundle}
}

// nextFetchedAt returns the current time, nudged forward if the clock reads
// at or before the previous bundle's timestamp.
func (m *Manager) nextFetchedAt() time.Time {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !now.After(m.lastFetchedAt) {
		now = m.lastFetchedAt.Add(time.Millisecond)
	}
	m.lastFetchedAt = now
	return now
}

// persist writes the bundle, its summary, and the timestamp atomically.
// A quota failure gets one retry with a reduced bundle.
func (m *Manager) persist(bundle *models.DataBundle) error {
	err := m.writeBundle(bundle)
	if errors.Is(err, shared.ErrQuotaExceeded) {
		m.logger.Warn("storage quota exceeded, retrying with reduced bundle")
		return m.writeBundle(reduceBundle(bundle))
	}
	return err
}

func (m *Manager) writeBundle(bundle *models.DataBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	summary := BuildSummary(bundle)
	summaryData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	return m.kv.SetMulti(map[string][]byte{
		KeyMusicData:   data,
		KeyLastUpdated: []byte(strconv.FormatInt(bundle.FetchedAt.UnixMilli(), 10)),
		KeySummary:     summaryData,
	})
}

// cachedBundle loads the stored bundle and reports whether it is still fresh.
func (m *Manager) cachedBundle() (*models.DataBundle, bool) {
	bundle := m.loadBundle()
	if bundle == nil {
		return nil, false
	}

	lastUpdated := m.loadLastUpdated()
	if lastUpdated.IsZero() {
		lastUpdated = bundle.FetchedAt
	}

	return bundle, m.now().Sub(lastUpdated) < m.opts.MaxDataAge
}

// loadBundle reads the stored bundle, migrating the legacy key when found.
// Corrupt payloads are treated as absent.
func (m *Manager) loadBundle() *models.DataBundle {
	raw, err := m.kv.Get(KeyMusicData)
	if err != nil {
		m.logger.Error("failed to read cached bundle", "err", err)
		return nil
	}

	if raw == nil {
		raw = m.migrateLegacyBundle()
		if raw == nil {
			return nil
		}
	}

	var bundle models.DataBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		m.logger.Warn("cached bundle is corrupt, treating as absent", "err", err)
		return nil
	}

	m.mu.Lock()
	if bundle.FetchedAt.After(m.lastFetchedAt) {
		m.lastFetchedAt = bundle.FetchedAt
	}
	m.mu.Unlock()

	return &bundle
}

// migrateLegacyBundle moves a pre-2.0 bundle under the current key and
// removes the old one. Returns the raw payload, or nil when none exists.
func (m *Manager) migrateLegacyBundle() []byte {
	raw, err := m.kv.Get(legacyKeyMusicData)
	if err != nil || raw == nil {
		return nil
	}

	var bundle models.DataBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		m.logger.Warn("legacy bundle is corrupt, discarding", "err", err)
		_ = m.kv.Delete(legacyKeyMusicData)
		return nil
	}

	m.logger.Info("migrating legacy cached bundle")
	if err := m.kv.Set(KeyMusicData, raw); err != nil {
		m.logger.Error("legacy migration write failed", "err", err)
		return raw
	}
	_ = m.kv.Delete(legacyKeyMusicData)
	return raw
}

func (m *Manager) loadLastUpdated() time.Time {
	raw, err := m.kv.Get(KeyLastUpdated)
	if err != nil || raw == nil {
		return time.Time{}
	}

	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		m.logger.Warn("stored timestamp is corrupt", "value", string(raw))
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// autoRefreshLoop refreshes on an interval until Close. Ticks that arrive
// while a cycle is in flight are skipped rather than queued.
func (m *Manager) autoRefreshLoop() {
	ticker := time.NewTicker(m.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopped:
			return
		case <-ticker.C:
			m.mu.Lock()
			busy := m.inflight != nil
			m.mu.Unlock()
			if busy {
				m.logger.Debug("refresh already in flight, skipping tick")
				continue
			}

			result := m.refresh(context.Background(), nil)
			if result.Err != nil {
				m.logger.Warn("scheduled refresh failed", "err", result.Err)
			}
		}
	}
}
