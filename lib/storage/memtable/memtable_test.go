package memtable

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/lib/storage/memtable/internal"
	storagetesting "github.com/ValentinKolb/hKV/lib/storage/testing"
)

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "Memtable", NewFactory(nil))
	storagetesting.RunStorageTests(t, "Memtable(1 shard)", NewFactory(&Options{NumShards: 1}))
}

func Benchmark(b *testing.B) {
	storagetesting.RunStorageBenchmarks(b, "Memtable", NewFactory(nil))
}

func TestShardCount(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{16, 16},
		{17, 32},
	}

	for _, tt := range tests {
		m := NewMemtable(&Options{NumShards: tt.requested})
		if len(m.shards) != tt.want {
			t.Errorf("NumShards=%d: expected %d shards, got %d", tt.requested, tt.want, len(m.shards))
		}
	}

	if n := len(NewMemtable(nil).shards); n&(n-1) != 0 {
		t.Errorf("Expected default shard count to be a power of two, got %d", n)
	}
}

func TestTableCreatedOnce(t *testing.T) {
	m := NewMemtable(&Options{NumShards: 4})

	const workers = 64
	tables := make([]*internal.Table, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			tables[i] = m.table("fresh")
		}(i)
	}
	close(start)
	wg.Wait()

	for i, tbl := range tables {
		if tbl != tables[0] {
			t.Fatalf("Worker %d observed a different table instance", i)
		}
	}
}

func TestTables(t *testing.T) {
	m := NewMemtable(nil)

	// reads create tables as well
	_, _, _ = m.Get("b", "k")
	_, _, _ = m.Set("a", "k", storage.IntegerValue(1))
	_, _ = m.Contains("c", "k")

	got := m.Tables()
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Expected tables %v, got %v", want, got)
	}
}

func TestGetInfo(t *testing.T) {
	m := NewMemtable(&Options{NumShards: 2})

	for i := 0; i < 10; i++ {
		_, _, _ = m.Set("t1", fmt.Sprintf("k%d", i), storage.StringValue("0123456789"))
	}
	_, _, _ = m.Set("t2", "k", storage.BoolValue(true))

	info := m.GetInfo()
	if info.Backend != "memtable" {
		t.Errorf("Unexpected backend %q", info.Backend)
	}
	if info.Tables != 2 {
		t.Errorf("Expected 2 tables, got %d", info.Tables)
	}
	if info.Keys != 11 {
		t.Errorf("Expected 11 keys, got %d", info.Keys)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected positive size estimate, got %d", info.SizeBytes)
	}

	var _ storage.InfoProvider = m
}
