// package store provides string-keyed persistent storage for cached listening data.
//
// The KV interface mirrors what the cache layer needs from a browser-style
// key-value store: whole-value reads and writes, an atomic multi-key write for
// co-written keys, and deletion. The sqlite implementation is the production
// backend; the memory implementation backs tests.
package store

// KV defines the key-value storage operations used by the cache manager.
//
// Get returns (nil, nil) for an absent key. SetMulti must apply all writes
// atomically so that concurrent readers never observe a partial update.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	SetMulti(values map[string][]byte) error
	Delete(keys ...string) error
	Keys() ([]string, error)
}
