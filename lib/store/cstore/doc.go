// Package cstore implements store.IStore on cookies.
//
// Values are written as session cookies with Path=/ and SameSite=Lax, names
// and values percent-encoded. Removal overwrites a cookie with an empty value
// that expired on 1 Jan 1970. Falsy values (nil, "", 0, false) are never
// written.
//
// The cookies live in a Document: HTTPDocument serves one HTTP request,
// FileDocument keeps them in a file between CLI invocations.
package cstore
