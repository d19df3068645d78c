// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view browser over the cached listening bundle:
//  1. [LoadingView] : Refresh progress while slices are fetched
//  2. [TracksView] : Top tracks, switchable across the three time windows
//  3. [ArtistsView] : Top artists with genres
//  4. [RecentView] : Recently played history
//  5. [InsightsView] : Scores, repeat listens, and roasting flags
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Refresh progress flows through a channel from the cache manager, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, 1/2/3, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
