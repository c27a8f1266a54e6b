// Package webui exposes the media job controller over HTTP for a browser
// front end.
//
// The server owns one controller. Upload and download requests run inline;
// generation runs on the server's lifetime context so a browser can follow
// progress through GET /api/state or the GET /api/events stream instead of
// holding a request open for the whole poll loop. Every request carries a
// correlation id (chi's request id) into the controller's log context.
package webui
