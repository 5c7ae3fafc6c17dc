// Package store provides the persistent key-value store used to carry small
// values (the navigation state of a browser) across page loads.
//
// Key Components:
//
//   - IStore Interface: Get, Set and Remove of values that are either plain
//     text or JSON structured data. The type of a value is not tracked, it is
//     inferred from the persisted form: a payload starting with '{' is parsed
//     as a JSON object, every other payload is returned as text.
//
//   - Codec: Encode and Decode implement the persisted form. GetString,
//     GetInt and GetJSON decode typed values on top of IStore.
//
//   - Error System: *Error values carry a RetCode so callers can tell a
//     malformed payload (RetCMalformedValue) from an engine failure
//     (RetCInternalError).
//
// Implementations:
//
//	- Session Store (sstore): values live in a db.KVDB, namespaced by a
//	  session id and refreshed with a TTL on every write.
//	  Available in the "github.com/delving/itemnav/lib/store/sstore" package.
//
//	- Cookie Store (cstore): values live in cookies of a Document, which is
//	  either an HTTP request/response pair or a cookie file.
//	  Available in the "github.com/delving/itemnav/lib/store/cstore" package.
//
// Exactly one implementation is active per process, it is chosen once by
// the "github.com/delving/itemnav/lib/store/selector" package.
package store
