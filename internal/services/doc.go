// Package services defines shared utilities consumed by the job controller,
// the hosted API client, and the command surfaces.
//
// Key responsibilities:
//   - Context helpers that stamp job identifiers, workflow stages, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     its taxonomy (upload, submit, job, timeout, download) through errors.Is.
//
// Use these helpers when wiring new operations so error reporting and
// observability stay uniform across the CLI and the web surface.
package services
