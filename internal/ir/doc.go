// Package ir provides the shared data types for semmeta.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Items are snapshots owned by the item graph; nothing here mutates them
//   - Metadata equality is structural (UID, value, full configuration)
//   - Canonical JSON (RFC 8785) is the only serialization used for hashes,
//     journal rows and golden traces
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
