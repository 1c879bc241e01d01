// Package core provides the session service behind the HTTP surface.
//
// The service owns a registry of editing sessions keyed by id. Each session
// is a session.Session guarded by its own mutex, so requests against
// different sessions proceed in parallel while requests against one session
// are applied one at a time, in arrival order.
//
// # Lifecycle
//
//  1. [Service.CreateFromCSV] parses an upload (bounded by a [ParseLimiter])
//     and registers a new session. [Service.CreateFromTable] skips parsing.
//  2. [Service.Do] runs one command against a session and returns a
//     [Summary] of the resulting state.
//  3. [Service.Close] drops a session; [Service.StartSweeper] drops sessions
//     that have been idle longer than the configured timeout.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - COL001-COL003: Column errors (not found, duplicate, invalid name)
//   - SPL001-SPL003: Split parameter errors (delimiter, widths, mode)
//   - REN001, CMT001, HIS001: Rename, commit and undo errors
//   - SES001-SES004: Session errors (no preview, not found, limits)
//   - FILE001-FILE005: File errors (size, format, encoding)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
package core
