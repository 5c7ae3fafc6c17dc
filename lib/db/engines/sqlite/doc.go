// Package sqlite implements a durable db.KVDB engine on a single SQLite
// table using the pure Go modernc.org/sqlite driver.
//
// Expired rows are filtered on read, removed lazily when read and purged
// whenever the database is opened. File databases use WAL journaling and a
// busy timeout so that the CLI and a concurrently running shell session can
// share one profile directory.
package sqlite
