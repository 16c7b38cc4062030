// Package logtail reads the end of whisker's own log file for the in-app
// log view.
//
// Read returns the last N lines using a ring buffer, so the cost is bounded
// by N rather than the file size, and a missing file is simply empty. Tail
// additionally parses each zerolog JSON line into an Entry with its time,
// level, component, message, error and remaining fields. Lines that are not
// JSON are kept as plain messages.
package logtail
