// Package db provides the engine interface behind itemnav's session storage.
// It defines a KVDB interface that allows for consistent interaction with
// different storage engines while abstracting implementation details.
//
// Key Components:
//
//   - KVDB Interface: The core interface that all engines must satisfy.
//     It provides plain writes (Set), writes with a time to live (SetE),
//     reads (Get, Has), removals (Delete, DeletePrefix) and metadata (GetInfo).
//
//   - Feature Flags: The Feature type defines capability flags that engines
//     advertise through SupportsFeature. The store selector uses them to
//     decide once, at startup, whether session storage is available.
//
// Implementations:
//
//   - memory ("github.com/delving/itemnav/lib/db/engines/memory"): a
//     concurrent in-memory map with a background garbage collector. Data
//     is lost on restart.
//
//   - sqlite ("github.com/delving/itemnav/lib/db/engines/sqlite"): a
//     single-table SQLite database (modernc.org/sqlite, no cgo) that
//     survives restarts and is used by the CLI profile directory.
//
// Both engines are verified by the shared suite in lib/db/testing.
package db
