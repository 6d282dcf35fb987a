package memtable

import (
	"iter"
	"runtime"
	"sort"
	"sync"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/lib/storage/memtable/internal"
	"github.com/ValentinKolb/hKV/lib/storage/util"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("memtable")

// --------------------------------------------------------------------------
// Core Memtable structure
// --------------------------------------------------------------------------

// Memtable is an in-memory storage.Storage backend. Table names are spread
// over a power-of-two number of shards, every table is a concurrent map of its
// own. None of the methods ever return an error.
type Memtable struct {
	shards []*internal.Shard
}

// Options configures the Memtable during initialization
type Options struct {
	NumShards int // Number of shards, rounded up to the next power of two (0 = auto)
}

// DefaultOptions returns the default Memtable options
func DefaultOptions() *Options {
	return &Options{
		NumShards: internal.NextPowerOfTwo(runtime.NumCPU()),
	}
}

// NewMemtable creates a new Memtable with the specified options (optional)
func NewMemtable(opts *Options) *Memtable {
	if opts == nil {
		opts = DefaultOptions()
	}

	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = runtime.NumCPU()
	}
	numShards = internal.NextPowerOfTwo(numShards)

	shards := make([]*internal.Shard, numShards)
	for i := range shards {
		shards[i] = internal.NewShard()
	}

	log.Debugf("created memtable with %d shards", numShards)

	return &Memtable{shards: shards}
}

// NewFactory returns a storage.Factory creating Memtables with the given options
func NewFactory(opts *Options) storage.Factory {
	return func() storage.Storage {
		return NewMemtable(opts)
	}
}

// table returns the named table, creating it on first access
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *Memtable) table(name string) *internal.Table {
	return internal.GetShard(name, m.shards).GetOrCreate(name)
}

// --------------------------------------------------------------------------
// Storage Interface Methods
// --------------------------------------------------------------------------

// Get returns the value stored under key in table
func (m *Memtable) Get(table, key string) (storage.Value, bool, error) {
	v, ok := m.table(table).Data.Load(key)
	return v, ok, nil
}

// Set stores value under key and returns the replaced value, if any.
// Concurrent writers of the same key are serialized, the last one wins.
func (m *Memtable) Set(table, key string, value storage.Value) (storage.Value, bool, error) {
	prev, replaced := m.table(table).Data.LoadAndStore(key, value)
	if !replaced {
		// LoadAndStore returns the new value if nothing was loaded
		prev = storage.Value{}
	}
	return prev, replaced, nil
}

// Contains reports whether key exists in table
func (m *Memtable) Contains(table, key string) (bool, error) {
	_, ok := m.table(table).Data.Load(key)
	return ok, nil
}

// Delete removes key from table and returns the removed value, if any
func (m *Memtable) Delete(table, key string) (storage.Value, bool, error) {
	prev, found := m.table(table).Data.LoadAndDelete(key)
	return prev, found, nil
}

// GetAll returns a snapshot of all pairs in table. Later mutations do not
// affect the returned slice.
func (m *Memtable) GetAll(table string) ([]storage.Kvpair, error) {
	return m.table(table).Snapshot(), nil
}

// GetIter returns a sequence over a snapshot of the table taken at call time.
// The sequence can be ranged over repeatedly and always yields the same pairs.
func (m *Memtable) GetIter(table string) (iter.Seq[storage.Kvpair], error) {
	pairs := m.table(table).Snapshot()
	return func(yield func(storage.Kvpair) bool) {
		for _, p := range pairs {
			if !yield(p) {
				return
			}
		}
	}, nil
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

// Tables returns the sorted names of all tables that have been accessed so far
func (m *Memtable) Tables() []string {
	var names []string
	for _, shard := range m.shards {
		shard.Tables.Range(func(name string, _ *internal.Table) bool {
			names = append(names, name)
			return true
		})
	}
	sort.Strings(names)
	return names
}

// GetInfo returns estimated statistics about the memtable
func (m *Memtable) GetInfo() storage.Info {
	const samplesPerTable = 100

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		histogram  = util.NewSizeHistogram()
		shardSizes = make([]float64, len(m.shards))
		tables     int
		keys       int
	)

	// concurrently collect samples from all shards
	wg.Add(len(m.shards))
	for i, shard := range m.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			shardTables, shardKeys := 0, 0
			s.Tables.Range(func(_ string, t *internal.Table) bool {
				shardTables++
				shardKeys += t.Data.Size()

				sampled := 0
				t.Data.Range(func(key string, value storage.Value) bool {
					histogram.AddSample(len(key) + value.Size())
					sampled++
					return sampled < samplesPerTable
				})
				return true
			})

			mu.Lock()
			defer mu.Unlock()
			tables += shardTables
			keys += shardKeys
			shardSizes[i] = float64(shardKeys)
		}(i, shard)
	}
	wg.Wait()

	// value header: kind + 8 bytes payload word + string header
	const entryOverhead = 32
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead

	// weighted estimate (60% median, 40% average)
	sizeBytes := keys * ((medianSize*60 + avgSize*40) / 100)

	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(m.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		Info:              "SizeBytes is an estimate based on a sample of each table.",
	}

	return storage.Info{
		Backend:   "memtable",
		Tables:    tables,
		Keys:      keys,
		SizeBytes: sizeBytes,
		Metadata:  meta,
	}
}
