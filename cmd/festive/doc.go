// Command festive applies a hosted festive effect to photos.
//
// The CLI wraps the media job controller: `festive run` uploads an image,
// waits for the remote job and saves the result, recording each run in the
// local history ledger. The individual steps (upload, submit, poll, download)
// are exposed as their own commands for scripting, and `festive serve` runs
// the local web surface. Commands load configuration lazily through
// commandContext; those annotated with skipConfigLoad run without it.
package main
