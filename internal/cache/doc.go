// Package cache owns the lifecycle of persisted listening data.
//
// The [Manager] sits between the fetch engine and the key-value store. It
// decides when cached data is still usable, runs refresh cycles, and serves
// typed projections of the stored bundle.
//
// # Freshness
//
// A bundle is fresh while its age is strictly below the configured maximum.
// Initialization serves a fresh bundle straight from the store without
// touching the provider; a stale or absent bundle triggers a refresh.
//
// # Refresh Coalescing
//
// Only one refresh cycle runs at a time. Callers that request a refresh while
// one is in flight wait for that cycle and share its result rather than
// starting their own. Auto-refresh ticks that land during an active cycle are
// dropped.
//
// # Persistence
//
// The bundle, its summary projection, and the last-updated timestamp are
// written together in one atomic multi-key write. A storage quota failure
// triggers a single retry with a reduced bundle. Corrupt stored payloads are
// treated as absent data, never as errors.
package cache
