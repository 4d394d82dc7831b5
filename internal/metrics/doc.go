// Package metrics turns the normalized source tables into the immutable
// MetricsSnapshot served by the API. Every computation here is a pure
// function of its inputs; the aggregator owns the snapshot it builds and the
// service layer publishes it by pointer swap.
//
// A single malformed or unjoinable entity never fails a build. The only
// fatal condition is an entirely absent required table, which the loader
// reports before this package runs.
package metrics
