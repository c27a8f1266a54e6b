// Package mediajob implements the controller that drives one image job through
// upload, submission, polling, and download against the hosted effects API.
//
// A Controller owns a single asset slot: the CDN URL of the most recent upload,
// replaced by the result URL once a job completes so that effects can be
// chained. Only one job runs per controller at a time; a second request while
// one is in flight fails with ErrBusy. Every state transition is announced to
// registered Listeners along with the status label a presentation layer shows.
package mediajob
