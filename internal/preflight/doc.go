// Package preflight provides readiness checks for the filesystem paths and
// hosted API endpoints festive depends on.
//
// The CLI runs RunAll from `festive status` and before `festive run` writes
// anything, so a missing output directory or an unreachable API is reported
// before an upload starts.
package preflight
