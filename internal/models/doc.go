// Package models defines the listening-history data model for riff.
//
// The package contains three categories of types:
//
// 1. Normalized records: immutable snapshots of provider data
//   - [TrackRecord] : track metadata with popularity and duration
//   - [ArtistRecord] : artist metadata with genres and follower count
//   - [RecentPlayEvent] : a track plus the timestamp it was played at
//
// 2. Aggregates: the persisted unit and its derived statistics
//   - [DataBundle] : everything fetched in one cycle plus metadata
//   - [InsightBundle] : genre, diversity, repeat, and score statistics
//   - [TimeWindowed] : generic short/medium/long-term collection
//
// 3. Projections: read-only views derived from a stored bundle
//   - [Summary] : single top track/artist plus headline counts
//   - [RoastingMaterial] : the slice of a bundle handed to the roast generator
package models
