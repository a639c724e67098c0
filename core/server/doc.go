// Package server holds the HTTP server configuration.
//
// The serve command starts a Fiber application exposing the schedule
// reconciliation over HTTP; this package only defines its settings
// (listen port and the optional API key).
package server
