package testing

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/hKV/lib/storage"
)

const benchTable = "bench"

// RunStorageBenchmarks runs all benchmarks for a Storage implementation
func RunStorageBenchmarks(b *testing.B, name string, factory storage.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory())
		})

		b.Run("SetExisting", func(b *testing.B) {
			benchmarkSetExisting(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Get(miss)", func(b *testing.B) {
			benchmarkGetMiss(b, factory())
		})

		b.Run("Delete", func(b *testing.B) {
			benchmarkDelete(b, factory())
		})

		b.Run("Contains", func(b *testing.B) {
			benchmarkContains(b, factory())
		})

		b.Run("GetAll", func(b *testing.B) {
			benchmarkGetAll(b, factory())
		})

		b.Run("ManyTables", func(b *testing.B) {
			benchmarkManyTables(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// prefill writes n keys into the benchmark table and returns them
func prefill(b *testing.B, s storage.Storage, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("test-key-%d", i)
		if _, _, err := s.Set(benchTable, keys[i], storage.StringValue(fmt.Sprintf("test-value-%d", i))); err != nil {
			b.Fatalf("prefill failed: %v", err)
		}
	}
	return keys
}

func benchmarkSet(b *testing.B, s storage.Storage) {
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			_, _, _ = s.Set(benchTable, fmt.Sprintf("test-key-%d", i), storage.IntegerValue(i))
		}
	})
}

func benchmarkSetExisting(b *testing.B, s storage.Storage) {
	keys := prefill(b, s, 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = s.Set(benchTable, keys[counter%len(keys)], storage.IntegerValue(int64(counter)))
			counter++
		}
	})
}

func benchmarkGet(b *testing.B, s storage.Storage) {
	keys := prefill(b, s, 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = s.Get(benchTable, keys[counter%len(keys)])
			counter++
		}
	})
}

func benchmarkGetMiss(b *testing.B, s storage.Storage) {
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = s.Get(benchTable, "missing")
		}
	})
}

func benchmarkDelete(b *testing.B, s storage.Storage) {
	numKeys := min(b.N, 100000)
	keys := prefill(b, s, numKeys)

	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := int(counter.Add(1)-1) % numKeys
			_, _, _ = s.Delete(benchTable, keys[idx])
		}
	})
}

func benchmarkContains(b *testing.B, s storage.Storage) {
	keys := prefill(b, s, 10000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _ = s.Contains(benchTable, keys[counter%len(keys)])
			counter++
		}
	})
}

func benchmarkGetAll(b *testing.B, s storage.Storage) {
	prefill(b, s, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.GetAll(benchTable)
	}
}

// Every operation touches a different table, stressing table creation
func benchmarkManyTables(b *testing.B, s storage.Storage) {
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			_, _, _ = s.Set(fmt.Sprintf("table-%d", i%4096), "key", storage.IntegerValue(i))
		}
	})
}

func benchmarkMixedUsage(b *testing.B, s storage.Storage) {
	numKeys := min(b.N, 100000)
	keys := prefill(b, s, numKeys)

	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		local := 0
		for pb.Next() {
			idx := int(counter.Add(1)-1) % numKeys

			// every 10th operation uses a new key
			key := keys[idx]
			if local%10 == 0 {
				key = fmt.Sprintf("new-key-%d", local)
			}

			switch local % 4 {
			case 0:
				_, _, _ = s.Get(benchTable, key)
			case 1:
				_, _, _ = s.Set(benchTable, key, storage.IntegerValue(int64(local)))
			case 2:
				_, _, _ = s.Delete(benchTable, key)
			case 3:
				_, _ = s.Contains(benchTable, key)
			}
			local++
		}
	})
}
