package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/ValentinKolb/hKV/lib/storage/memtable"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Test backends
// --------------------------------------------------------------------------

// faultyStorage fails every call with err, or panics if panicMsg is set
type faultyStorage struct {
	err      error
	panicMsg string
}

func (f *faultyStorage) fail() error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.err
}

func (f *faultyStorage) Get(string, string) (storage.Value, bool, error) {
	return storage.Value{}, false, f.fail()
}

func (f *faultyStorage) Set(string, string, storage.Value) (storage.Value, bool, error) {
	return storage.Value{}, false, f.fail()
}

func (f *faultyStorage) Contains(string, string) (bool, error) {
	return false, f.fail()
}

func (f *faultyStorage) Delete(string, string) (storage.Value, bool, error) {
	return storage.Value{}, false, f.fail()
}

func (f *faultyStorage) GetAll(string) ([]storage.Kvpair, error) {
	return nil, f.fail()
}

func (f *faultyStorage) GetIter(string) (iter.Seq[storage.Kvpair], error) {
	return nil, f.fail()
}

// unknownCommand is a RequestData that Dispatch does not know
type unknownCommand struct {
	*Hget
}

func (*unknownCommand) CommandName() string { return "unknown" }

func newStore() storage.Storage {
	return memtable.NewMemtable(nil)
}

// --------------------------------------------------------------------------
// Dispatch
// --------------------------------------------------------------------------

func TestDispatchVariants(t *testing.T) {
	store := newStore()
	_, _, _ = store.Set("t", "a", storage.IntegerValue(1))
	_, _, _ = store.Set("t", "b", storage.StringValue("two"))

	tests := []struct {
		name       string
		req        *CommandRequest
		wantStatus uint32
		wantValues []storage.Value
	}{
		{"hget hit", NewHget("t", "a"), StatusOK, []storage.Value{storage.IntegerValue(1)}},
		{"hget miss", NewHget("t", "zzz"), StatusNotFound, nil},
		{"hmget", NewHmget("t", "a", "missing", "b"), StatusOK, []storage.Value{
			storage.IntegerValue(1), {}, storage.StringValue("two"),
		}},
		{"hmget no keys", NewHmget("t"), StatusOK, nil},
		{"hexist", NewHexist("t", "a"), StatusOK, []storage.Value{storage.BoolValue(true)}},
		{"hexist miss", NewHexist("t", "zzz"), StatusOK, []storage.Value{storage.BoolValue(false)}},
		{"hmexist", NewHmexist("t", "a", "zzz"), StatusOK, []storage.Value{
			storage.BoolValue(true), storage.BoolValue(false),
		}},
		{"hset new", NewHset("t", "c", storage.FloatValue(3)), StatusOK, []storage.Value{{}}},
		{"hset existing", NewHset("t", "c", storage.FloatValue(4)), StatusOK, []storage.Value{storage.FloatValue(3)}},
		{"hmset", NewHmset("t",
			storage.NewKvpair("c", storage.FloatValue(5)),
			storage.NewKvpair("d", storage.BoolValue(true)),
		), StatusOK, []storage.Value{storage.FloatValue(4), {}}},
		{"hdel", NewHdel("t", "d"), StatusOK, []storage.Value{storage.BoolValue(true)}},
		{"hdel miss", NewHdel("t", "d"), StatusOK, []storage.Value{{}}},
		{"hmdel", NewHmdel("t", "c", "nope"), StatusOK, []storage.Value{storage.FloatValue(5), {}}},
		{"missing table", NewHget("", "a"), StatusBadRequest, nil},
		{"missing table hmset", NewHmset(""), StatusBadRequest, nil},
		{"nil request", nil, StatusBadRequest, nil},
		{"no variant", &CommandRequest{}, StatusBadRequest, nil},
		{"nil variant pointer", NewRequest((*Hget)(nil)), StatusBadRequest, nil},
		{"unknown variant", NewRequest(&unknownCommand{&Hget{Table: "t", Key: "a"}}), StatusInternalError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Dispatch(tt.req, store)
			if resp.Status != tt.wantStatus {
				t.Fatalf("Expected status %d, got %s", tt.wantStatus, resp)
			}
			if !storage.EqualValues(resp.Values, tt.wantValues) {
				t.Errorf("Expected values %v, got %v", tt.wantValues, resp.Values)
			}
			if len(resp.Pairs) != 0 {
				t.Errorf("Expected no pairs, got %v", resp.Pairs)
			}
			if resp.Status != StatusOK && resp.Message == "" {
				t.Error("Expected a message on failure")
			}
		})
	}
}

func TestHgetAbsentKey(t *testing.T) {
	resp := Dispatch(NewHget("never", "set"), newStore())

	if resp.Status != StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Status)
	}
	if !strings.Contains(strings.ToLower(resp.Message), "not found") {
		t.Errorf("Expected message to mention not found, got %q", resp.Message)
	}
	if resp.Message != "Not found for table: never, key: set" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if len(resp.Values) != 0 || len(resp.Pairs) != 0 {
		t.Errorf("Expected no values and no pairs, got %s", resp)
	}
}

func TestHsetWithoutPair(t *testing.T) {
	store := newStore()
	resp := Dispatch(NewRequest(&Hset{Table: "t"}), store)

	if resp.Status != StatusOK {
		t.Fatalf("Expected status 200, got %s", resp)
	}
	if len(resp.Values) != 1 || !resp.Values[0].IsEmpty() {
		t.Errorf("Expected a single empty value, got %v", resp.Values)
	}

	pairs, _ := store.GetAll("t")
	if len(pairs) != 0 {
		t.Errorf("Expected no mutation, got %v", pairs)
	}
}

func TestHsetPairWithoutValue(t *testing.T) {
	store := newStore()
	resp := Dispatch(NewRequest(&Hset{Table: "t", Pair: &storage.Kvpair{Key: "k"}}), store)
	if !resp.Ok() {
		t.Fatalf("Expected success, got %s", resp)
	}

	v, found, _ := store.Get("t", "k")
	if !found || !v.IsEmpty() {
		t.Errorf("Expected the empty value to be stored, got %v (found=%v)", v, found)
	}
}

func TestHgetallCompleteness(t *testing.T) {
	store := newStore()
	svc := NewService(store)

	svc.Execute(NewHset("score", "u1", storage.IntegerValue(10)))
	svc.Execute(NewHset("score", "u2", storage.IntegerValue(20)))

	resp := svc.Execute(NewHgetall("score"))
	if resp.Status != StatusOK {
		t.Fatalf("Expected status 200, got %s", resp)
	}
	if len(resp.Values) != 0 {
		t.Errorf("Expected no values, got %v", resp.Values)
	}

	storage.SortKvpairs(resp.Pairs)
	want := []storage.Kvpair{
		storage.NewKvpair("u1", storage.IntegerValue(10)),
		storage.NewKvpair("u2", storage.IntegerValue(20)),
	}
	if !storage.EqualKvpairs(resp.Pairs, want) {
		t.Errorf("Expected %v, got %v", want, resp.Pairs)
	}
}

func TestBackendErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  uint32
		wantMessage string
	}{
		{"storage error", storage.NewStorageError("disk full"), StatusInternalError, "Storage error: disk full"},
		{"wrapped storage error", fmt.Errorf("write: %w", storage.NewStorageError("disk full")), StatusInternalError, "Storage error: disk full"},
		{"not found", storage.NewNotFoundError("t", "k"), StatusNotFound, "Not found for table: t, key: k"},
		{"plain error", errors.New("boom"), StatusInternalError, "Internal error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &faultyStorage{err: tt.err}
			for _, name := range CommandNames() {
				data, _ := NewRequestData(name)
				resp := Dispatch(sampleRequest(data), store)
				if resp.Status != tt.wantStatus || resp.Message != tt.wantMessage {
					t.Errorf("%s: expected %d %q, got %s", name, tt.wantStatus, tt.wantMessage, resp)
				}
			}
		})
	}
}

// sampleRequest fills a variant with a table and a single key or pair
func sampleRequest(data RequestData) *CommandRequest {
	switch c := data.(type) {
	case *Hget:
		c.Table, c.Key = "t", "k"
	case *Hgetall:
		c.Table = "t"
	case *Hmget:
		c.Table, c.Keys = "t", []string{"k"}
	case *Hset:
		pair := storage.NewKvpair("k", storage.IntegerValue(1))
		c.Table, c.Pair = "t", &pair
	case *Hmset:
		c.Table, c.Pairs = "t", []storage.Kvpair{storage.NewKvpair("k", storage.IntegerValue(1))}
	case *Hdel:
		c.Table, c.Key = "t", "k"
	case *Hmdel:
		c.Table, c.Keys = "t", []string{"k"}
	case *Hexist:
		c.Table, c.Key = "t", "k"
	case *Hmexist:
		c.Table, c.Keys = "t", []string{"k"}
	}
	return NewRequest(data)
}

// --------------------------------------------------------------------------
// Service
// --------------------------------------------------------------------------

func TestServiceRecoversPanics(t *testing.T) {
	svc := NewService(&faultyStorage{panicMsg: "backend exploded"})

	resp := svc.Execute(NewHget("t", "k"))
	if resp.Status != StatusInternalError {
		t.Fatalf("Expected status 500, got %s", resp)
	}
	if !strings.Contains(resp.Message, "backend exploded") {
		t.Errorf("Expected panic message in response, got %q", resp.Message)
	}
}

func TestServiceWithoutStorage(t *testing.T) {
	var svc Service
	if resp := svc.Execute(NewHget("t", "k")); resp.Status != StatusInternalError {
		t.Errorf("Expected status 500 for zero Service, got %s", resp)
	}
}

func TestServiceClonesShareStorage(t *testing.T) {
	svc := NewService(newStore())
	clone := svc.Clone()
	assigned := svc

	if svc.Storage() != clone.Storage() || svc.Storage() != assigned.Storage() {
		t.Fatal("Expected clones to share the storage")
	}

	clone.Execute(NewHset("t", "k", storage.StringValue("from clone")))
	resp := assigned.Execute(NewHget("t", "k"))
	if !resp.Ok() || !resp.Values[0].Equal(storage.StringValue("from clone")) {
		t.Errorf("Expected write through clone to be visible, got %s", resp)
	}
}

func TestServiceConcurrentClones(t *testing.T) {
	svc := NewService(newStore())

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(clone Service, i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("w%d-%d", i, j)
				if resp := clone.Execute(NewHset("shared", key, storage.IntegerValue(int64(j)))); !resp.Ok() {
					t.Errorf("Hset failed: %s", resp)
				}
			}
		}(svc.Clone(), i)
	}
	wg.Wait()

	resp := svc.Execute(NewHgetall("shared"))
	if len(resp.Pairs) != workers*50 {
		t.Errorf("Expected %d pairs, got %d", workers*50, len(resp.Pairs))
	}
}

func TestServiceRecordsMetrics(t *testing.T) {
	svc := NewService(newStore())
	counter := metrics.GetOrCreateCounter(`hkv_commands_total{command="hexist",status="200"}`)
	before := counter.Get()

	svc.Execute(NewHexist("t", "k"))
	svc.Execute(NewHexist("t", "k"))

	if got := counter.Get() - before; got != 2 {
		t.Errorf("Expected counter to increase by 2, got %d", got)
	}
}

func TestRegisterStorageMetrics(t *testing.T) {
	if RegisterStorageMetrics(&faultyStorage{}) {
		t.Error("Expected backend without info to be skipped")
	}
	if !RegisterStorageMetrics(newStore()) {
		t.Error("Expected memtable to register storage metrics")
	}
}

// --------------------------------------------------------------------------
// Request / Response helpers
// --------------------------------------------------------------------------

func TestResponseErr(t *testing.T) {
	errs := []*storage.Error{
		storage.NewNotFoundError("t", "k"),
		storage.NewInvalidCommandError("missing table name"),
		storage.NewInternalError("boom"),
		storage.NewStorageError("disk full"),
	}

	for _, want := range errs {
		err := NewErrorResponse(want).Err()
		var got *storage.Error
		if !errors.As(err, &got) {
			t.Fatalf("Expected *storage.Error, got %T", err)
		}
		if *got != *want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	}

	if err := NewValuesResponse().Err(); err != nil {
		t.Errorf("Expected nil error for success, got %v", err)
	}
}

func TestRequestJSON(t *testing.T) {
	tests := []struct {
		req  *CommandRequest
		json string
	}{
		{NewHget("t", "k"), `{"hget":{"table":"t","key":"k"}}`},
		{NewHgetall("t"), `{"hgetall":{"table":"t"}}`},
		{NewHset("t", "k", storage.IntegerValue(10)), `{"hset":{"table":"t","pair":{"key":"k","value":{"integer":10}}}}`},
		{NewHmexist("t", "a", "b"), `{"hmexist":{"table":"t","keys":["a","b"]}}`},
		{&CommandRequest{}, `{}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.req)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != tt.json {
			t.Errorf("Expected %s, got %s", tt.json, data)
		}

		var got CommandRequest
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", data, err)
		}
		if got.CommandName() != tt.req.CommandName() {
			t.Errorf("Expected command %s, got %s", tt.req.CommandName(), got.CommandName())
		}
	}

	var req CommandRequest
	for _, bad := range []string{`{"hdrop":{}}`, `{"hget":{},"hset":{}}`, `{"hget":{"table":1}}`} {
		if err := json.Unmarshal([]byte(bad), &req); err == nil {
			t.Errorf("Expected error for %s", bad)
		}
	}
}

func TestNewRequestData(t *testing.T) {
	for _, name := range CommandNames() {
		data, err := NewRequestData(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("NewRequestData(%s) failed: %v", name, err)
		}
		if data.CommandName() != name {
			t.Errorf("Expected %s, got %s", name, data.CommandName())
		}
	}

	_, err := NewRequestData("hdrop")
	if storage.CodeOf(err) != storage.RetCInvalidCommand {
		t.Errorf("Expected invalid command error, got %v", err)
	}
}
