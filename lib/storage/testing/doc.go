// Package testing provides standardised tests and benchmarks for
// backends that satisfy the storage.Storage interface.
//
// The package contains:
//   - storage_testing: A test suite validating conformance to the Storage contract
//     (lazy tables, set-returns-previous, snapshots, concurrency guarantees)
//   - storage_benchmarks: Performance tests for the common operations
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() storage.Storage {
//		return NewMyBackend()
//	}
//
//	// Running the standard test suite
//	storagetesting.RunStorageTests(t, "MyBackend", factory)
//
//	// Running performance benchmarks
//	storagetesting.RunStorageBenchmarks(b, "MyBackend", factory)
package testing
