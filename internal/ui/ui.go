package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/riff/internal/cache"
	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	TracksView
	ArtistsView
	RecentView
	InsightsView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	manager *cache.Manager
	width   int
	height  int

	bundle     *models.DataBundle
	window     models.Window
	trackList  list.Model
	artistList list.Model
	recentList list.Model

	progressChan chan tasks.ProgressUpdate
	resultChan   chan *cache.Result
	progress     tasks.ProgressUpdate

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model over the cache manager.
func NewModel(ctx context.Context, manager *cache.Manager) *Model {
	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		manager: manager,
		window:  models.MediumTerm,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the cached bundle, falling back to a refresh when none exists.
func (m *Model) Init() tea.Cmd {
	return m.loadBundle()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case bundleLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, shared.ErrNoData) {
				return m, m.startRefresh()
			}
			m.err = msg.err
			return m, tea.Quit
		}
		m.setBundle(msg.bundle)
		m.view = TracksView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case refreshCompleteMsg:
		m.progressChan = nil
		if msg.result.Err != nil {
			m.err = msg.result.Err
			if m.bundle == nil {
				return m, tea.Quit
			}
			return m, nil
		}
		m.err = nil
		m.setBundle(msg.result.Data)
		m.view = TracksView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.bundle == nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case TracksView:
		return m.renderList(&m.trackList)
	case ArtistsView:
		return m.renderList(&m.artistList)
	case RecentView:
		return m.renderList(&m.recentList)
	case InsightsView:
		return m.renderInsights()
	default:
		return ""
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.view != LoadingView {
			m.view = m.nextView()
		}
		return m, nil
	case "1", "2", "3":
		if m.bundle != nil {
			m.window = models.Window(int(msg.String()[0] - '1'))
			m.rebuildLists()
		}
		return m, nil
	case "r":
		if m.view != LoadingView && m.progressChan == nil {
			m.view = LoadingView
			return m, m.startRefresh()
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) nextView() ViewState {
	switch m.view {
	case TracksView:
		return ArtistsView
	case ArtistsView:
		return RecentView
	case RecentView:
		return InsightsView
	default:
		return TracksView
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TracksView:
		m.trackList, cmd = m.trackList.Update(msg)
	case ArtistsView:
		m.artistList, cmd = m.artistList.Update(msg)
	case RecentView:
		m.recentList, cmd = m.recentList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setBundle(bundle *models.DataBundle) {
	m.bundle = bundle
	m.rebuildLists()
}

func (m *Model) rebuildLists() {
	if m.bundle == nil {
		return
	}

	tracks := m.bundle.TopTracks.Windows()[m.window]
	artists := m.bundle.TopArtists.Windows()[m.window]

	m.trackList = list.New(trackItems(tracks), list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("Top Tracks (%s)", windowTitle(m.window))

	m.artistList = list.New(artistItems(artists), list.NewDefaultDelegate(), 0, 0)
	m.artistList.Title = fmt.Sprintf("Top Artists (%s)", windowTitle(m.window))

	m.recentList = list.New(recentItems(m.bundle.RecentlyPlayed), list.NewDefaultDelegate(), 0, 0)
	m.recentList.Title = "Recently Played"

	m.resizeLists()
}

func (m *Model) resizeLists() {
	if m.width == 0 {
		return
	}
	m.trackList.SetSize(m.width-4, m.height-8)
	m.artistList.SetSize(m.width-4, m.height-8)
	m.recentList.SetSize(m.width-4, m.height-8)
}

func windowTitle(w models.Window) string {
	switch w {
	case models.ShortTerm:
		return "Last 4 Weeks"
	case models.MediumTerm:
		return "Last 6 Months"
	default:
		return "All Time"
	}
}

func (m *Model) loadBundle() tea.Cmd {
	return func() tea.Msg {
		bundle, err := m.manager.Bundle()
		return bundleLoadedMsg{bundle: bundle, err: err}
	}
}

func (m *Model) startRefresh() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, tasks.SliceCount*2)
	progressChan := m.progressChan

	resultChan := make(chan *cache.Result, 1)
	go func() {
		resultChan <- m.manager.ForceRefresh(m.ctx, progressChan)
		close(progressChan)
	}()
	m.resultChan = resultChan

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return refreshCompleteMsg{result: <-m.resultChan}
		}

		update, ok := <-m.progressChan
		if !ok {
			return refreshCompleteMsg{result: <-m.resultChan}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Refreshing Listening Data")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSlice:
		phase = fmt.Sprintf("Fetching %s...", m.progress.Slice)
	case tasks.SliceDone, tasks.SliceFailed:
		phase = m.progress.Message
	default:
		phase = "Contacting Spotify..."
	}

	return fmt.Sprintf("%s\n\n%s", title, phase)
}

func (m *Model) renderList(l *list.Model) string {
	helpView := m.help.ShortHelpView(m.keys.FullHelp()[1])
	return fmt.Sprintf("%s\n\n%s", l.View(), helpView)
}

func (m *Model) renderInsights() string {
	insights := m.bundle.Insights
	title := styles.title.Render("Taste Insights")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(insights.TopGenres, ", ")))
	b.WriteString(fmt.Sprintf("Distinct artists: %d | Distinct tracks: %d\n",
		insights.ArtistDiversityCount, insights.TrackDiversityCount))
	b.WriteString(fmt.Sprintf("Consistency: %.0f/100 | Mainstream: %.0f/100\n",
		insights.ConsistencyScore, insights.MainstreamScore))

	if len(insights.RepeatListens) > 0 {
		b.WriteString("\nOn repeat:\n")
		for _, repeat := range insights.RepeatListens {
			b.WriteString(fmt.Sprintf("  • %s (x%d)\n", repeat.TrackID, repeat.Count))
		}
	}

	if len(insights.RoastingFlags) > 0 {
		b.WriteString(fmt.Sprintf("\n%s\n", styles.warn.Render("Flags: "+strings.Join(insights.RoastingFlags, ", "))))
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}
