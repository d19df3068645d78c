package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
	_ list.Item = recentItem{}
)

// trackItem wraps [models.TrackRecord] to implement [list.Item].
type trackItem struct {
	track models.TrackRecord
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := strings.Join(i.track.ArtistNames, ", ")
	if i.track.AlbumName != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.AlbumName)
	}
	return fmt.Sprintf("%s • %s", desc, shared.FormatTrackDuration(i.track.DurationMS))
}

// artistItem wraps [models.ArtistRecord] to implement [list.Item].
type artistItem struct {
	artist models.ArtistRecord
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return "no genres listed"
	}
	return strings.Join(i.artist.Genres, ", ")
}

// recentItem wraps [models.RecentPlayEvent] to implement [list.Item].
type recentItem struct {
	event models.RecentPlayEvent
}

func (i recentItem) FilterValue() string { return i.event.Name }
func (i recentItem) Title() string       { return i.event.Name }
func (i recentItem) Description() string {
	return fmt.Sprintf("%s • %s", strings.Join(i.event.ArtistNames, ", "),
		i.event.PlayedAt.Format("Jan 2 15:04"))
}

func trackItems(tracks []models.TrackRecord) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{track: track}
	}
	return items
}

func artistItems(artists []models.ArtistRecord) []list.Item {
	items := make([]list.Item, len(artists))
	for i, artist := range artists {
		items[i] = artistItem{artist: artist}
	}
	return items
}

func recentItems(events []models.RecentPlayEvent) []list.Item {
	items := make([]list.Item, len(events))
	for i, event := range events {
		items[i] = recentItem{event: event}
	}
	return items
}
