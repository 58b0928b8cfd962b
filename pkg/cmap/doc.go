// Package cmap provides a generic concurrent map sharded by key hash.
//
// Keys are distributed across shards with maphash, and every operation
// locks only the shard that owns the key, which keeps contention low
// when many goroutines touch disjoint keys. The conditional operations
// (Update, Pop, SetIfAbsent, GetOrSet) run their check-then-act under
// the shard lock, so they are atomic with respect to other writers of
// the same key.
//
// Usage:
//
//	m := cmap.New[string, *Record]()
//	m.Set("BRTRKFsL", rec)
//	val, ok := m.Get("BRTRKFsL")
//
// Range iterates shard by shard under read locks; the view across
// shards is not a consistent snapshot.
package cmap
