// Package storage provides the storage abstraction of hKV. It defines the
// Storage interface that every backend must satisfy, the typed Value that is
// stored under a key and the error taxonomy shared by backends and the command
// layer.
//
// Key Components:
//
//   - Storage Interface: The capability contract of all backends. Data is
//     organized in named tables of key/value pairs. Tables are created
//     implicitly on first access, so operating on a table that has never been
//     touched behaves exactly like operating on an existing but empty table.
//     The interface only offers single-key point operations (Get, Set,
//     Contains, Delete) and two ways of reading a whole table (GetAll returns
//     a snapshot slice, GetIter returns a lazy iter.Seq).
//
//   - Value: A tagged scalar union (string, binary, integer, float, bool).
//     The zero Value is the empty Value, it carries no variant and is used by
//     the command layer as the "no previous value" marker. Values are
//     immutable and comparable with ==. They can be encoded in a compact binary
//     format (one kind byte followed by the payload) and as JSON
//     ({"integer":10}).
//
//   - Kvpair: A key with an optional Value. A nil Value models an absent entry,
//     which is different from a key holding the empty Value.
//
//   - Error: The error type returned by backends and used by the command layer
//     to build responses. Every Error carries a RetCode (NotFound,
//     InvalidCommand, InternalError, StorageError).
//
//   - Info: Optional statistics a backend may report via the InfoProvider
//     interface. All numbers are estimates.
//
// Related Packages:
//
// The memtable package (github.com/ValentinKolb/hKV/lib/storage/memtable)
// provides the in-memory backend built from two levels of sharded concurrent
// hash maps.
//
// The testing package (github.com/ValentinKolb/hKV/lib/storage/testing)
// provides a standardized test suite and benchmarks for any Storage
// implementation:
//   - RunStorageTests: Validates an implementation against the contract
//   - RunStorageBenchmarks: Performance benchmarks for comparing implementations
package storage
