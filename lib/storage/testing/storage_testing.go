package testing

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/hKV/lib/storage"
)

// RunStorageTests runs the conformance test suite for a Storage implementation.
// Every subtest gets a fresh backend from the factory.
func RunStorageTests(t *testing.T, name string, factory storage.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("MissIsNotError", func(t *testing.T) {
			testMissIsNotError(t, factory())
		})

		t.Run("Contains", func(t *testing.T) {
			testContains(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("ValueKinds", func(t *testing.T) {
			testValueKinds(t, factory())
		})

		t.Run("GetAll", func(t *testing.T) {
			testGetAll(t, factory())
		})

		t.Run("GetIter", func(t *testing.T) {
			testGetIter(t, factory())
		})

		t.Run("CrossTableIsolation", func(t *testing.T) {
			testCrossTableIsolation(t, factory())
		})

		t.Run("ConcurrentTableCreation", func(t *testing.T) {
			testConcurrentTableCreation(t, factory())
		})

		t.Run("ConcurrentSameKeyWrites", func(t *testing.T) {
			testConcurrentSameKeyWrites(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustGet(t testing.TB, s storage.Storage, table, key string) (storage.Value, bool) {
	t.Helper()
	v, ok, err := s.Get(table, key)
	if err != nil {
		t.Fatalf("Get(%q, %q) failed: %v", table, key, err)
	}
	return v, ok
}

func mustSet(t testing.TB, s storage.Storage, table, key string, value storage.Value) (storage.Value, bool) {
	t.Helper()
	prev, replaced, err := s.Set(table, key, value)
	if err != nil {
		t.Fatalf("Set(%q, %q) failed: %v", table, key, err)
	}
	return prev, replaced
}

func mustContain(t testing.TB, s storage.Storage, table, key string) bool {
	t.Helper()
	ok, err := s.Contains(table, key)
	if err != nil {
		t.Fatalf("Contains(%q, %q) failed: %v", table, key, err)
	}
	return ok
}

func mustGetAll(t testing.TB, s storage.Storage, table string) []storage.Kvpair {
	t.Helper()
	pairs, err := s.GetAll(table)
	if err != nil {
		t.Fatalf("GetAll(%q) failed: %v", table, err)
	}
	storage.SortKvpairs(pairs)
	return pairs
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s storage.Storage) {
	v1 := storage.StringValue("value-1")
	v2 := storage.StringValue("value-2")

	prev, replaced := mustSet(t, s, "table", "key", v1)
	if replaced || !prev.IsEmpty() {
		t.Errorf("Expected no previous value on first set, got %v (replaced=%v)", prev, replaced)
	}

	prev, replaced = mustSet(t, s, "table", "key", v2)
	if !replaced || !prev.Equal(v1) {
		t.Errorf("Expected previous value %v, got %v (replaced=%v)", v1, prev, replaced)
	}

	got, ok := mustGet(t, s, "table", "key")
	if !ok || !got.Equal(v2) {
		t.Errorf("Expected %v after second set, got %v (found=%v)", v2, got, ok)
	}

	// overwriting with a different kind is allowed
	prev, _ = mustSet(t, s, "table", "key", storage.IntegerValue(7))
	if !prev.Equal(v2) {
		t.Errorf("Expected previous value %v, got %v", v2, prev)
	}
	got, _ = mustGet(t, s, "table", "key")
	if !got.Equal(storage.IntegerValue(7)) {
		t.Errorf("Expected integer(7), got %v", got)
	}
}

func testMissIsNotError(t *testing.T, s storage.Storage) {
	v, ok := mustGet(t, s, "never-touched", "never-set")
	if ok || !v.IsEmpty() {
		t.Errorf("Expected miss on untouched table, got %v (found=%v)", v, ok)
	}

	mustSet(t, s, "touched", "other", storage.BoolValue(true))
	v, ok = mustGet(t, s, "touched", "never-set")
	if ok || !v.IsEmpty() {
		t.Errorf("Expected miss on untouched key, got %v (found=%v)", v, ok)
	}

	prev, found, err := s.Delete("never-touched-2", "key")
	if err != nil || found || !prev.IsEmpty() {
		t.Errorf("Expected delete on untouched table to be a no-op, got %v, %v, %v", prev, found, err)
	}

	pairs := mustGetAll(t, s, "never-touched-3")
	if len(pairs) != 0 {
		t.Errorf("Expected empty table, got %v", pairs)
	}
}

func testContains(t *testing.T, s storage.Storage) {
	if mustContain(t, s, "table", "key") {
		t.Error("Expected Contains to be false before set")
	}

	mustSet(t, s, "table", "key", storage.FloatValue(1.5))
	if !mustContain(t, s, "table", "key") {
		t.Error("Expected Contains to be true after set")
	}

	// a key holding the empty value still exists
	mustSet(t, s, "table", "empty", storage.Value{})
	if !mustContain(t, s, "table", "empty") {
		t.Error("Expected Contains to be true for a key holding the empty value")
	}
}

func testDelete(t *testing.T, s storage.Storage) {
	v := storage.StringValue("to-delete")
	mustSet(t, s, "table", "key", v)

	prev, found, err := s.Delete("table", "key")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !found || !prev.Equal(v) {
		t.Errorf("Expected removed value %v, got %v (found=%v)", v, prev, found)
	}

	if mustContain(t, s, "table", "key") {
		t.Error("Expected key to be gone after delete")
	}

	prev, found, err = s.Delete("table", "key")
	if err != nil || found || !prev.IsEmpty() {
		t.Errorf("Expected second delete to find nothing, got %v, %v, %v", prev, found, err)
	}

	// set after delete is a fresh insert
	_, replaced := mustSet(t, s, "table", "key", v)
	if replaced {
		t.Error("Expected set after delete to not replace anything")
	}
}

func testValueKinds(t *testing.T, s storage.Storage) {
	values := map[string]storage.Value{
		"string":       storage.StringValue("hello"),
		"empty-string": storage.StringValue(""),
		"binary":       storage.BinaryValue([]byte{0x00, 0xff, 0x10}),
		"integer":      storage.IntegerValue(-42),
		"float":        storage.FloatValue(3.25),
		"bool":         storage.BoolValue(false),
		"none":         {},
	}

	for key, v := range values {
		mustSet(t, s, "kinds", key, v)
	}

	for key, want := range values {
		got, ok := mustGet(t, s, "kinds", key)
		if !ok {
			t.Errorf("Expected key %q to exist", key)
			continue
		}
		if !got.Equal(want) || got.Kind() != want.Kind() {
			t.Errorf("Key %q: expected %v, got %v", key, want, got)
		}
	}

	// mutating the input slice must not affect the stored value
	raw := []byte("abc")
	mustSet(t, s, "kinds", "binary-copy", storage.BinaryValue(raw))
	raw[0] = 'X'
	got, _ := mustGet(t, s, "kinds", "binary-copy")
	if b, _ := got.AsBinary(); string(b) != "abc" {
		t.Errorf("Expected stored binary to be a copy, got %q", b)
	}
}

func testGetAll(t *testing.T, s storage.Storage) {
	mustSet(t, s, "score", "u1", storage.IntegerValue(10))
	mustSet(t, s, "score", "u2", storage.IntegerValue(20))

	want := []storage.Kvpair{
		storage.NewKvpair("u1", storage.IntegerValue(10)),
		storage.NewKvpair("u2", storage.IntegerValue(20)),
	}

	pairs := mustGetAll(t, s, "score")
	if !storage.EqualKvpairs(pairs, want) {
		t.Fatalf("Expected %v, got %v", want, pairs)
	}

	// the snapshot is not affected by later writes
	mustSet(t, s, "score", "u3", storage.IntegerValue(30))
	mustSet(t, s, "score", "u1", storage.IntegerValue(11))
	if !storage.EqualKvpairs(pairs, want) {
		t.Errorf("Expected snapshot to stay %v, got %v", want, pairs)
	}

	if n := len(mustGetAll(t, s, "score")); n != 3 {
		t.Errorf("Expected 3 pairs after more writes, got %d", n)
	}
}

func testGetIter(t *testing.T, s storage.Storage) {
	for i := 0; i < 10; i++ {
		mustSet(t, s, "iter", fmt.Sprintf("k%02d", i), storage.IntegerValue(int64(i)))
	}

	seq, err := s.GetIter("iter")
	if err != nil {
		t.Fatalf("GetIter failed: %v", err)
	}

	collect := func() []storage.Kvpair {
		var pairs []storage.Kvpair
		for p := range seq {
			pairs = append(pairs, p)
		}
		storage.SortKvpairs(pairs)
		return pairs
	}

	first := collect()
	if len(first) != 10 {
		t.Fatalf("Expected 10 pairs, got %d", len(first))
	}
	for i, p := range first {
		if p.Key != fmt.Sprintf("k%02d", i) || !p.ValueOrEmpty().Equal(storage.IntegerValue(int64(i))) {
			t.Errorf("Unexpected pair at %d: %v", i, p)
		}
	}

	// writes after the call are not visible to the sequence
	mustSet(t, s, "iter", "late", storage.BoolValue(true))
	second := collect()
	if !storage.EqualKvpairs(first, second) {
		t.Errorf("Expected the sequence to be restartable and stable, got %v then %v", first, second)
	}

	// stopping early
	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("Expected to stop after 3 pairs, got %d", count)
	}

	// a new call sees the new state
	seq, err = s.GetIter("iter")
	if err != nil {
		t.Fatalf("GetIter failed: %v", err)
	}
	if n := len(collect()); n != 11 {
		t.Errorf("Expected 11 pairs in a new sequence, got %d", n)
	}

	empty, err := s.GetIter("iter-untouched")
	if err != nil {
		t.Fatalf("GetIter on untouched table failed: %v", err)
	}
	for p := range empty {
		t.Errorf("Expected no pairs from untouched table, got %v", p)
	}
}

func testCrossTableIsolation(t *testing.T, s storage.Storage) {
	mustSet(t, s, "A", "K", storage.StringValue("in-a"))

	if mustContain(t, s, "B", "K") {
		t.Error("Expected key K to not exist in table B")
	}
	if _, ok := mustGet(t, s, "B", "K"); ok {
		t.Error("Expected Get on table B to miss")
	}

	mustSet(t, s, "B", "K", storage.StringValue("in-b"))
	if _, _, err := s.Delete("B", "K"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, ok := mustGet(t, s, "A", "K")
	if !ok || !got.Equal(storage.StringValue("in-a")) {
		t.Errorf("Expected table A to be unaffected, got %v (found=%v)", got, ok)
	}
}

func testConcurrentTableCreation(t *testing.T, s storage.Storage) {
	const writers = 64

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if _, _, err := s.Set("brand-new", fmt.Sprintf("key-%d", i), storage.IntegerValue(int64(i))); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	pairs := mustGetAll(t, s, "brand-new")
	if len(pairs) != writers {
		t.Fatalf("Expected %d pairs, got %d", writers, len(pairs))
	}
}

func testConcurrentSameKeyWrites(t *testing.T, s storage.Storage) {
	const writers = 32
	const rounds = 20

	written := make(map[string]bool, writers)
	for i := 0; i < writers; i++ {
		written[fmt.Sprintf("writer-%d-%s", i, "payload")] = true
	}

	for r := 0; r < rounds; r++ {
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				v := storage.StringValue(fmt.Sprintf("writer-%d-%s", i, "payload"))
				if _, _, err := s.Set("contended", "key", v); err != nil {
					t.Errorf("Set failed: %v", err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		got, ok := mustGet(t, s, "contended", "key")
		str, isStr := got.AsString()
		if !ok || !isStr || !written[str] {
			t.Fatalf("Round %d: expected one of the written values, got %v", r, got)
		}
	}
}

func testRealisticUsage(t *testing.T, s storage.Storage) {
	const users = 50

	// concurrent sessions writing, reading and deleting their own keys
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", u)
			for i := 0; i < 20; i++ {
				key := fmt.Sprintf("%s-item-%d", user, i)
				if _, _, err := s.Set("sessions", key, storage.IntegerValue(int64(i))); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if v, ok, err := s.Get("sessions", key); err != nil || !ok || !v.Equal(storage.IntegerValue(int64(i))) {
					t.Errorf("Expected to read back %s=%d, got %v (found=%v, err=%v)", key, i, v, ok, err)
					return
				}
				if i%2 == 1 {
					if _, found, err := s.Delete("sessions", key); err != nil || !found {
						t.Errorf("Expected to delete %s, found=%v err=%v", key, found, err)
						return
					}
				}
			}
		}(u)
	}
	wg.Wait()

	pairs := mustGetAll(t, s, "sessions")
	if len(pairs) != users*10 {
		t.Errorf("Expected %d remaining pairs, got %d", users*10, len(pairs))
	}
	for _, p := range pairs {
		i, ok := p.ValueOrEmpty().AsInteger()
		if !ok || i%2 != 0 {
			t.Errorf("Unexpected remaining pair %v", p)
		}
	}
}
