// Package selector chooses the store backend once at initialization:
// session storage when a capable db.KVDB is available, cookies otherwise.
package selector
