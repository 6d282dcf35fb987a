// Package memtable implements an in-memory storage.Storage backend built from
// two levels of concurrent hash maps.
//
// Key Components:
//
//   - Memtable: The public backend type. It owns a power-of-two array of
//     shards and implements storage.Storage and storage.InfoProvider.
//
//   - Shard (internal): A partition of the table namespace. Each shard maps
//     table names to tables using an xsync.MapOf. A table name is assigned to a
//     shard by masking its xxhash with (number of shards - 1).
//
//   - Table (internal): The key -> storage.Value mapping of one table, again an
//     xsync.MapOf. xsync partitions its buckets internally, so readers never
//     lock and writers only lock the bucket of the key they modify.
//
// Table Creation:
//
// Tables are created implicitly the first time they are accessed by any
// operation. The lookup first tries a lock-free Load on the shard and, on a
// miss, falls back to LoadOrCompute. LoadOrCompute runs the constructor at
// most once per name while holding the bucket lock, so concurrent first
// accesses to the same unseen table all end up with the same instance and no
// write is lost into a discarded copy.
//
// Per-key Operations:
//
// Get, Set, Contains and Delete map directly to Load, LoadAndStore, Load and
// LoadAndDelete of the table's map. No additional locks are taken: writers to
// distinct keys never block each other and readers never block at all.
// Writers to the same key serialize on the bucket lock, the last writer wins.
//
// Snapshots:
//
// GetAll copies the table into a new slice. GetIter takes the same kind of
// copy when it is called and returns an iter.Seq over it, so the sequence is
// finite, may be ranged over repeatedly and is unaffected by later writes.
// The copy is not a consistent cut of the table: writes that race with the
// copy may or may not be included.
//
// Error Behavior:
//
// The memtable has no failure modes (no I/O, no capacity limits). All methods
// return a nil error.
package memtable
