// Package memory implements an in-memory db.KVDB engine for session storage.
//
// Entries live in an xsync.MapOf and carry an absolute expiration time.
// Expired entries are invisible to Get and Has immediately; a background
// garbage collector removes them every GCInterval. The collector is started
// by NewMemoryDB and stopped by Close, which also drops all data.
//
// Usage Example:
//
//	database := memory.NewMemoryDB(nil)
//	defer database.Close()
//
//	_ = database.SetE("session/42/itemNavTree", []byte(`["a","b"]`), 30*time.Minute)
//	value, ok, _ := database.Get("session/42/itemNavTree")
package memory
