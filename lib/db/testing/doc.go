// Package testing provides a shared conformance suite for engines that
// satisfy the db.KVDB interface.
//
// Example usage:
//
//	dbtesting.RunKVDBTests(t, "MemoryDB", func(now func() time.Time) db.KVDB {
//		return memory.NewMemoryDB(&memory.DBOptions{Now: now})
//	})
//
//	dbtesting.RunKVDBBenchmarks(b, "MemoryDB", factory)
package testing
