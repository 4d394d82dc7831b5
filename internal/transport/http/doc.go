// Package http contains the HTTP transport layer: chi handlers projecting
// the current MetricsSnapshot into JSON responses. Handlers hold a read-only
// reference to whatever snapshot is published and never mutate it; state
// changes only through the explicit reload endpoint, which swaps the whole
// snapshot.
package http
