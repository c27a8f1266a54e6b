// Package history keeps a SQLite ledger of jobs run from this machine.
//
// Each CLI run creates one Record and a Recorder listener mirrors controller
// transitions into it, so `festive history` can show what was uploaded, which
// remote job handled it, and where the result landed. The controller never
// reads the ledger back; it is an audit trail, not workflow state.
//
// The schema lives in schema.sql and is versioned by schemaVersion. A database
// created by a different version is rejected with ErrSchemaMismatch.
package history
