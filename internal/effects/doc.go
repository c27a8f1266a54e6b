// Package effects is the HTTP client for the hosted image-effects API.
//
// The API is a black box with five calls: a signed upload URL request, the
// PUT of the file bytes to that URL, job submission, job status, and the
// download proxy. Client exposes one method per call plus a direct fetch used
// when the proxy is unavailable. Transport failures and non-2xx answers are
// returned as plain errors (StatusError for the latter); callers attach the
// workflow marker.
package effects
