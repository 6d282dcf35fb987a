package internal

import (
	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/cespare/xxhash/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Table Type (inner level: key -> value)
// --------------------------------------------------------------------------

// Table is a named namespace of key/value pairs. All methods are safe for
// concurrent use; operations on distinct keys never block each other.
type Table struct {
	Name string
	Data *xsync.MapOf[string, storage.Value]
}

// NewTable creates an empty table
func NewTable(name string) *Table {
	return &Table{
		Name: name,
		Data: xsync.NewMapOf[string, storage.Value](),
	}
}

// Snapshot copies all pairs of the table into a new slice. The copy is not a
// consistent cut: writes that happen while the copy is taken may or may not
// be included.
func (t *Table) Snapshot() []storage.Kvpair {
	pairs := make([]storage.Kvpair, 0, t.Data.Size())
	t.Data.Range(func(key string, value storage.Value) bool {
		pairs = append(pairs, storage.NewKvpair(key, value))
		return true
	})
	return pairs
}

// --------------------------------------------------------------------------
// Shard Type (outer level: table name -> table)
// --------------------------------------------------------------------------

// Shard is a partition of the table namespace
type Shard struct {
	Tables *xsync.MapOf[string, *Table]
}

// NewShard creates an empty shard
func NewShard() *Shard {
	return &Shard{
		Tables: xsync.NewMapOf[string, *Table](),
	}
}

// GetOrCreate returns the table with the given name, creating it if it does
// not exist yet. Under concurrent first access exactly one table is created
// and every caller receives that same instance.
func (s *Shard) GetOrCreate(name string) *Table {
	// fast path: lock-free read
	if t, ok := s.Tables.Load(name); ok {
		return t
	}
	t, _ := s.Tables.LoadOrCompute(name, func() *Table {
		return NewTable(name)
	})
	return t
}

// --------------------------------------------------------------------------
// Shard selection
// --------------------------------------------------------------------------

// GetShard returns the shard responsible for the given table name.
// The number of shards must be a power of two.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard(name string, shards []*Shard) *Shard {
	mask := uint64(len(shards) - 1)
	return shards[xxhash.Sum64String(name)&mask]
}

// NextPowerOfTwo rounds n up to the next power of two (minimum 1)
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
