// Package sstore implements store.IStore on top of a db.KVDB, scoped to one
// browser session.
//
// All sessions share one engine. Keys are namespaced as
// "session/<id>/<key>" and every write refreshes the entry TTL, so a session
// that stops writing disappears once the TTL passes.
package sstore
