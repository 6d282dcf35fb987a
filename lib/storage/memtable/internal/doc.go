// Package internal contains the building blocks of the memtable backend: the
// Shard (table name -> Table) and the Table (key -> Value), both backed by
// xsync.MapOf, and the xxhash based shard selection.
package internal
